// Package reminder decides which reminders need attention and notifies on
// them from a periodic poll.
package reminder

import (
	"time"

	"github.com/iliyamo/medisafe/internal/model"
)

// State is where a reminder stands relative to its slot today.
type State int

const (
	Idle State = iota
	Upcoming
	Due
	Overdue
	VeryOverdue
)

// Lateness thresholds in whole minutes after the scheduled time.
const (
	DueWindow     = 5
	OverdueWindow = 60
)

func (s State) String() string {
	switch s {
	case Upcoming:
		return "upcoming"
	case Due:
		return "due"
	case Overdue:
		return "overdue"
	case VeryOverdue:
		return "very_overdue"
	default:
		return "idle"
	}
}

// Notifies reports whether the state produces a notification.
func (s State) Notifies() bool {
	return s == Due || s == Overdue || s == VeryOverdue
}

// Evaluation is the outcome for one reminder at one instant.
type Evaluation struct {
	State       State
	Scheduled   time.Time // today's slot, zero when not scheduled today
	LateMinutes int
	Taken       bool // a dose was recorded today
}

// Evaluator computes reminder states in a fixed timezone.  Weekday and
// "today" are taken in that zone.
type Evaluator struct {
	Location *time.Location
}

func (e Evaluator) loc() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

// Evaluate classifies r at now.  Lateness is counted in whole minutes of
// the wall clock, so 08:05:59 is still Due for an 08:00 slot.
func (e Evaluator) Evaluate(r model.Reminder, now time.Time) Evaluation {
	now = now.In(e.loc())
	if !r.IsActive || !r.ScheduledOn(now.Weekday()) {
		return Evaluation{State: Idle}
	}
	mins, ok := r.ClockMinutes()
	if !ok {
		return Evaluation{State: Idle}
	}

	y, m, d := now.Date()
	ev := Evaluation{
		Scheduled:   time.Date(y, m, d, mins/60, mins%60, 0, 0, e.loc()),
		LateMinutes: now.Hour()*60 + now.Minute() - mins,
		Taken:       e.TakenToday(r, now),
	}
	switch {
	case ev.Taken:
		ev.State = Idle
	case r.SnoozedUntil != nil && now.Before(*r.SnoozedUntil):
		ev.State = Idle
	case ev.LateMinutes < 0:
		ev.State = Upcoming
	case ev.LateMinutes <= DueWindow:
		ev.State = Due
	case ev.LateMinutes <= OverdueWindow:
		ev.State = Overdue
	default:
		ev.State = VeryOverdue
	}
	return ev
}

// TakenToday reports whether the last recorded dose falls on now's calendar
// day.
func (e Evaluator) TakenToday(r model.Reminder, now time.Time) bool {
	if r.LastTakenAt == nil {
		return false
	}
	ty, tm, td := r.LastTakenAt.In(e.loc()).Date()
	ny, nm, nd := now.In(e.loc()).Date()
	return ty == ny && tm == nm && td == nd
}

// Stats summarises a user's reminders for the day containing now.
type Stats struct {
	Total      int `json:"total"`
	Taken      int `json:"taken"`
	Overdue    int `json:"overdue"`
	Compliance int `json:"compliance"` // percent of today's reminders taken
}

// Summarise counts today's scheduled reminders, how many were taken and how
// many are past their slot without a dose.
func (e Evaluator) Summarise(rs []model.Reminder, now time.Time) Stats {
	var st Stats
	now = now.In(e.loc())
	for _, r := range rs {
		if !r.IsActive || !r.ScheduledOn(now.Weekday()) {
			continue
		}
		st.Total++
		ev := e.Evaluate(r, now)
		if ev.Taken {
			st.Taken++
			continue
		}
		if ev.LateMinutes > 0 {
			st.Overdue++
		}
	}
	if st.Total > 0 {
		st.Compliance = (st.Taken*100 + st.Total/2) / st.Total
	}
	return st
}
