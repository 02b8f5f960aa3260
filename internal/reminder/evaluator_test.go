package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/medisafe/internal/model"
)

// Monday 2024-03-11
var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

func at(hh, mm, ss int) time.Time {
	return monday.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second)
}

func daily(clock string) model.Reminder {
	return model.Reminder{ID: 1, UserID: 1, ReminderTime: clock, DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6}, IsActive: true}
}

func TestEvaluate_Boundaries(t *testing.T) {
	e := Evaluator{}
	r := daily("08:00")
	cases := []struct {
		now  time.Time
		want State
		late int
	}{
		{at(7, 59, 59), Upcoming, -1},
		{at(8, 0, 0), Due, 0},
		{at(8, 5, 59), Due, 5},
		{at(8, 6, 0), Overdue, 6},
		{at(9, 0, 0), Overdue, 60},
		{at(9, 1, 0), VeryOverdue, 61},
		{at(23, 59, 0), VeryOverdue, 959},
	}
	for _, tc := range cases {
		ev := e.Evaluate(r, tc.now)
		assert.Equal(t, tc.want, ev.State, tc.now.Format("15:04:05"))
		assert.Equal(t, tc.late, ev.LateMinutes, tc.now.Format("15:04:05"))
		assert.Equal(t, at(8, 0, 0), ev.Scheduled)
	}
}

func TestEvaluate_Idle(t *testing.T) {
	e := Evaluator{}
	now := at(8, 10, 0)

	inactive := daily("08:00")
	inactive.IsActive = false
	assert.Equal(t, Idle, e.Evaluate(inactive, now).State)

	weekend := daily("08:00")
	weekend.DaysOfWeek = []int{0, 6}
	assert.Equal(t, Idle, e.Evaluate(weekend, now).State)

	taken := daily("08:00")
	ts := at(8, 1, 0)
	taken.LastTakenAt = &ts
	ev := e.Evaluate(taken, now)
	assert.Equal(t, Idle, ev.State)
	assert.True(t, ev.Taken)

	yesterday := daily("08:00")
	ys := at(8, 1, 0).AddDate(0, 0, -1)
	yesterday.LastTakenAt = &ys
	assert.Equal(t, Overdue, e.Evaluate(yesterday, now).State)

	snoozed := daily("08:00")
	until := at(8, 15, 0)
	snoozed.SnoozedUntil = &until
	assert.Equal(t, Idle, e.Evaluate(snoozed, now).State)
	assert.Equal(t, Overdue, e.Evaluate(snoozed, at(8, 15, 0)).State)

	assert.Equal(t, Idle, e.Evaluate(daily("8am"), now).State)
}

func TestEvaluate_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	e := Evaluator{Location: tokyo}
	// 23:00 UTC Sunday is 08:00 Monday in Tokyo
	r := daily("08:00")
	r.DaysOfWeek = []int{1}
	ev := e.Evaluate(r, monday.Add(-time.Hour))
	assert.Equal(t, Due, ev.State)
	assert.Equal(t, 0, ev.LateMinutes)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "upcoming", Upcoming.String())
	assert.Equal(t, "due", Due.String())
	assert.Equal(t, "overdue", Overdue.String())
	assert.Equal(t, "very_overdue", VeryOverdue.String())
	assert.False(t, Upcoming.Notifies())
	assert.True(t, VeryOverdue.Notifies())
}

func TestSummarise(t *testing.T) {
	e := Evaluator{}
	now := at(12, 0, 0)
	taken := at(8, 2, 0)

	morning := daily("08:00")
	morning.LastTakenAt = &taken
	noonLate := daily("11:00")
	evening := daily("20:00")
	inactive := daily("09:00")
	inactive.IsActive = false
	notToday := daily("09:00")
	notToday.DaysOfWeek = []int{3}

	st := e.Summarise([]model.Reminder{morning, noonLate, evening, inactive, notToday}, now)
	assert.Equal(t, Stats{Total: 3, Taken: 1, Overdue: 1, Compliance: 33}, st)

	assert.Equal(t, Stats{}, e.Summarise(nil, now))

	two := daily("07:00")
	two.LastTakenAt = &taken
	st = e.Summarise([]model.Reminder{morning, two, evening}, now)
	assert.Equal(t, 67, st.Compliance)
}

func TestNewNotification(t *testing.T) {
	r := daily("08:00")
	r.MedicationName, r.MedicationDose = "Paracetamol", "500mg"

	n := NewNotification(r, Evaluation{State: Due}, at(8, 0, 0))
	assert.Equal(t, "due", n.State)
	assert.Equal(t, "It is time to take Paracetamol (500mg)", n.Message)

	n = NewNotification(r, Evaluation{State: Overdue, LateMinutes: 20}, at(8, 20, 0))
	assert.Equal(t, "You are 20 minutes late for Paracetamol (500mg)", n.Message)

	n = NewNotification(r, Evaluation{State: VeryOverdue, LateMinutes: 90}, at(9, 30, 0))
	assert.Equal(t, "Medication very overdue", n.Title)
	assert.Equal(t, int64(1), n.ReminderID)
}
