package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/medisafe/internal/model"
	"github.com/iliyamo/medisafe/internal/repository"
	"github.com/iliyamo/medisafe/internal/testutil"
)

var t0 = time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)

type stores struct {
	users     *repository.UserRepo
	meds      *repository.MedicationRepo
	reminders *repository.ReminderRepo
	goals     *repository.GoalRepo
}

func setup(t *testing.T) stores {
	t.Helper()
	db := testutil.OpenDB(t)
	return stores{
		users:     repository.NewUserRepo(db),
		meds:      repository.NewMedicationRepo(db),
		reminders: repository.NewReminderRepo(db),
		goals:     repository.NewGoalRepo(db),
	}
}

func addUser(t *testing.T, s stores, name string) int64 {
	t.Helper()
	id, err := s.users.Create(context.Background(), &model.User{
		Username: name, PasswordHash: "hash", CreatedAt: t0, UpdatedAt: t0,
	})
	require.NoError(t, err)
	return id
}

func addMed(t *testing.T, s stores, userID int64, name string, at time.Time) model.Medication {
	t.Helper()
	m := model.Medication{UserID: userID, Name: name, Dose: "500mg", Frequency: "daily", Time: "08:00", CreatedAt: at, UpdatedAt: at}
	require.NoError(t, s.meds.Create(context.Background(), &m))
	return m
}

func sameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestUserRepo(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	email := "alice@example.com"

	u := model.User{Username: "alice", PasswordHash: "h1", Email: &email, CreatedAt: t0, UpdatedAt: t0}
	id, err := s.users.Create(ctx, &u)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = s.users.Create(ctx, &model.User{Username: "alice", PasswordHash: "h2", CreatedAt: t0, UpdatedAt: t0})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := s.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
	require.NotNil(t, got.Email)
	assert.Equal(t, email, *got.Email)
	sameTime(t, t0, got.CreatedAt)

	later := t0.Add(time.Hour)
	require.NoError(t, s.users.TouchUpdatedAt(ctx, id, later))
	require.NoError(t, s.users.UpdatePasswordHash(ctx, id, "h3", later))
	got, err = s.users.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)
	sameTime(t, later, got.UpdatedAt)

	_, err = s.users.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.users.TouchUpdatedAt(ctx, 999, later), repository.ErrNotFound)

	list, err := s.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMedicationRepo_OwnershipAndOrder(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := addUser(t, s, "alice")
	bob := addUser(t, s, "bob")

	first := addMed(t, s, alice, "Paracetamol", t0)
	second := addMed(t, s, alice, "Ibuprofen", t0.Add(time.Minute))
	addMed(t, s, bob, "Aspirin", t0)

	list, err := s.meds.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = s.meds.GetByIDAndUser(ctx, first.ID, bob)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	notes := "with food"
	first.Notes = &notes
	first.Dose = "1g"
	first.UpdatedAt = t0.Add(time.Hour)
	require.NoError(t, s.meds.Update(ctx, &first))
	got, err := s.meds.GetByIDAndUser(ctx, first.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "1g", got.Dose)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	assert.Nil(t, got.ExpiryDate)
	sameTime(t, t0, got.CreatedAt)

	first.UserID = bob
	assert.ErrorIs(t, s.meds.Update(ctx, &first), repository.ErrNotFound)
	assert.ErrorIs(t, s.meds.Delete(ctx, first.ID, bob), repository.ErrNotFound)
	require.NoError(t, s.meds.Delete(ctx, first.ID, alice))
	assert.ErrorIs(t, s.meds.Delete(ctx, first.ID, alice), repository.ErrNotFound)
}

func TestReminderRepo(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := addUser(t, s, "alice")
	med := addMed(t, s, alice, "Paracetamol", t0)

	rem := model.Reminder{
		UserID: alice, MedicationID: med.ID, ReminderTime: "08:00",
		DaysOfWeek: []int{5, 1, 3, 1}, IsActive: true, CreatedAt: t0, UpdatedAt: t0,
	}
	require.NoError(t, s.reminders.Create(ctx, &rem))

	got, err := s.reminders.GetByIDAndUser(ctx, rem.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, got.DaysOfWeek)
	assert.Equal(t, "Paracetamol", got.MedicationName)
	assert.Equal(t, "500mg", got.MedicationDose)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastTakenAt)

	until := t0.Add(10 * time.Minute)
	require.NoError(t, s.reminders.Snooze(ctx, rem.ID, alice, until, t0))
	got, err = s.reminders.GetByIDAndUser(ctx, rem.ID, alice)
	require.NoError(t, err)
	require.NotNil(t, got.SnoozedUntil)
	sameTime(t, until, *got.SnoozedUntil)

	require.NoError(t, s.reminders.MarkTaken(ctx, rem.ID, alice, t0.Add(time.Minute)))
	got, err = s.reminders.GetByIDAndUser(ctx, rem.ID, alice)
	require.NoError(t, err)
	require.NotNil(t, got.LastTakenAt)
	sameTime(t, t0.Add(time.Minute), *got.LastTakenAt)
	assert.Nil(t, got.SnoozedUntil)

	got.IsActive = false
	got.UpdatedAt = t0.Add(time.Hour)
	require.NoError(t, s.reminders.Update(ctx, &got))
	active, err := s.reminders.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := s.reminders.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// deleting the medication cascades to its reminders
	require.NoError(t, s.meds.Delete(ctx, med.ID, alice))
	_, err = s.reminders.GetByIDAndUser(ctx, rem.ID, alice)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGoalRepo_CompletedAtTransitions(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := addUser(t, s, "alice")

	g := model.Goal{UserID: alice, Title: "Walk", Priority: model.PriorityMedium, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, s.goals.Create(ctx, &g))

	done := t0.Add(time.Hour)
	g.IsCompleted, g.UpdatedAt = true, done
	require.NoError(t, s.goals.Update(ctx, &g))
	got, err := s.goals.GetByIDAndUser(ctx, g.ID, alice)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	sameTime(t, done, *got.CompletedAt)

	// still completed: the first stamp is kept
	g.Title, g.UpdatedAt = "Walk daily", t0.Add(2*time.Hour)
	require.NoError(t, s.goals.Update(ctx, &g))
	got, err = s.goals.GetByIDAndUser(ctx, g.ID, alice)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	sameTime(t, done, *got.CompletedAt)

	g.IsCompleted, g.UpdatedAt = false, t0.Add(3*time.Hour)
	require.NoError(t, s.goals.Update(ctx, &g))
	got, err = s.goals.GetByIDAndUser(ctx, g.ID, alice)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)
}

func TestUserRepo_UsernamesAreCaseSensitive(t *testing.T) {
	s := setup(t)
	upper := addUser(t, s, "Alice")
	lower := addUser(t, s, "alice")
	assert.NotEqual(t, upper, lower)

	u, err := s.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, lower, u.ID)
}

func TestUserRepo_DeleteCascades(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := addUser(t, s, "alice")
	addMed(t, s, alice, "Paracetamol", t0)
	g := model.Goal{UserID: alice, Title: "Walk", Priority: model.PriorityLow, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, s.goals.Create(ctx, &g))

	require.NoError(t, s.users.Delete(ctx, alice))

	meds, err := s.meds.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, meds)
	goals, err := s.goals.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, goals)
}
