package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/medisafe/internal/model"
	"github.com/iliyamo/medisafe/internal/service"
	"github.com/iliyamo/medisafe/internal/validation"
)

func paracetamol() service.MedicationInput {
	return service.MedicationInput{Name: " Paracetamol ", Dose: "500mg", Frequency: "daily", Time: "08:00"}
}

func TestMedications_CRUDAndOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	in := paracetamol()
	in.ExpiryDate = strp("2026-01-31")
	in.Notes = strp("")
	m, err := e.medications.Create(ctx, alice, in)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", m.Name)
	assert.Nil(t, m.Notes)
	require.NotNil(t, m.ExpiryDate)

	list, err := e.medications.List(ctx, bob)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = e.medications.Get(ctx, bob, m.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = e.medications.Update(ctx, bob, m.ID, paracetamol())
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, e.medications.Delete(ctx, bob, m.ID), service.ErrNotFound)

	e.clock.Advance(time.Hour)
	up := paracetamol()
	up.Dose = "1g"
	got, err := e.medications.Update(ctx, alice, m.ID, up)
	require.NoError(t, err)
	assert.Equal(t, "1g", got.Dose)
	assert.Nil(t, got.ExpiryDate)
	assert.True(t, start.Equal(got.CreatedAt))
	assert.True(t, start.Add(time.Hour).Equal(got.UpdatedAt))

	require.NoError(t, e.medications.Delete(ctx, alice, m.ID))
	_, err = e.medications.Get(ctx, alice, m.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestMedications_Validation(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")

	in := paracetamol()
	in.Name = "   "
	in.ExpiryDate = strp("tomorrow")
	_, err := e.medications.Create(context.Background(), alice, in)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestMedications_StoreUnavailable(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Close())

	_, err := e.medications.List(context.Background(), 1)
	assert.ErrorIs(t, err, service.ErrStoreUnavailable)
}

func TestGoals_CompletedAt(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")

	g, err := e.goals.Create(ctx, alice, service.GoalInput{Title: "Walk 10k steps"})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, g.Priority)
	assert.Nil(t, g.CompletedAt)

	e.clock.Advance(time.Hour)
	g, err = e.goals.Update(ctx, alice, g.ID, service.GoalInput{Title: "Walk 10k steps", Priority: "HIGH", IsCompleted: true})
	require.NoError(t, err)
	assert.Equal(t, "high", g.Priority)
	require.NotNil(t, g.CompletedAt)
	assert.True(t, start.Add(time.Hour).Equal(*g.CompletedAt))

	e.clock.Advance(time.Hour)
	g, err = e.goals.Update(ctx, alice, g.ID, service.GoalInput{Title: "Walk 12k steps", IsCompleted: true})
	require.NoError(t, err)
	require.NotNil(t, g.CompletedAt)
	assert.True(t, start.Add(time.Hour).Equal(*g.CompletedAt))

	g, err = e.goals.Update(ctx, alice, g.ID, service.GoalInput{Title: "Walk 12k steps"})
	require.NoError(t, err)
	assert.Nil(t, g.CompletedAt)

	done, err := e.goals.Create(ctx, alice, service.GoalInput{Title: "Done already", IsCompleted: true})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, done.CreatedAt, *done.CompletedAt)

	_, err = e.goals.Create(ctx, alice, service.GoalInput{Title: "x", Priority: "urgent"})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)

	list, err := e.goals.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, done.ID, list[0].ID)

	bob := e.register(t, "bob")
	_, err = e.goals.Get(ctx, bob, done.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	require.NoError(t, e.goals.Delete(ctx, alice, done.ID))
}

func TestReminders_MedicationMustBeOwned(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	bobsMed, err := e.medications.Create(ctx, bob, paracetamol())
	require.NoError(t, err)

	_, err = e.reminders.Create(ctx, alice, service.ReminderInput{
		MedicationID: bobsMed.ID, ReminderTime: "08:00", DaysOfWeek: []int{1},
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "medication_id", verr.Fields[0].Field)

	_, err = e.reminders.Create(ctx, alice, service.ReminderInput{
		MedicationID: bobsMed.ID, ReminderTime: "8:00", DaysOfWeek: []int{9},
	})
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestReminders_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	med, err := e.medications.Create(ctx, alice, paracetamol())
	require.NoError(t, err)

	r, err := e.reminders.Create(ctx, alice, service.ReminderInput{
		MedicationID: med.ID, ReminderTime: "08:00", DaysOfWeek: []int{1, 3, 5},
	})
	require.NoError(t, err)
	assert.True(t, r.IsActive)
	assert.Equal(t, "Paracetamol", r.MedicationName)

	// default snooze
	r, err = e.reminders.Snooze(ctx, alice, r.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, r.SnoozedUntil)
	assert.True(t, start.Add(10*time.Minute).Equal(*r.SnoozedUntil))

	r, err = e.reminders.Snooze(ctx, alice, r.ID, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, start.Add(30*time.Minute).Equal(*r.SnoozedUntil))

	e.clock.Advance(2 * time.Minute)
	r, err = e.reminders.MarkTaken(ctx, alice, r.ID)
	require.NoError(t, err)
	require.NotNil(t, r.LastTakenAt)
	assert.True(t, start.Add(2*time.Minute).Equal(*r.LastTakenAt))
	assert.Nil(t, r.SnoozedUntil)

	off := false
	r, err = e.reminders.Update(ctx, alice, r.ID, service.ReminderInput{
		MedicationID: med.ID, ReminderTime: "09:30", DaysOfWeek: []int{1}, IsActive: &off,
	})
	require.NoError(t, err)
	assert.False(t, r.IsActive)
	assert.Equal(t, "09:30", r.ReminderTime)
	require.NotNil(t, r.LastTakenAt)

	_, err = e.reminders.MarkTaken(ctx, alice+100, r.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, e.reminders.Delete(ctx, alice, r.ID))
	_, err = e.reminders.Get(ctx, alice, r.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestReminders_Stats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	med, err := e.medications.Create(ctx, alice, paracetamol())
	require.NoError(t, err)

	mk := func(clock string) model.Reminder {
		r, err := e.reminders.Create(ctx, alice, service.ReminderInput{
			MedicationID: med.ID, ReminderTime: clock, DaysOfWeek: []int{1},
		})
		require.NoError(t, err)
		return r
	}
	early := mk("07:00")
	mk("07:30")
	mk("20:00")

	e.clock.Advance(time.Hour) // 09:00 Monday
	_, err = e.reminders.MarkTaken(ctx, alice, early.ID)
	require.NoError(t, err)

	st, err := e.reminders.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Taken)
	assert.Equal(t, 1, st.Overdue)
	assert.Equal(t, 33, st.Compliance)
}
