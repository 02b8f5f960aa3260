package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/medisafe/internal/database"
	"github.com/iliyamo/medisafe/internal/model"
)

// ReminderRepo persists reminders.  Reads join the medication so callers get
// its name and dose without a second query.
type ReminderRepo struct{ DB *database.DB }

func NewReminderRepo(db *database.DB) *ReminderRepo { return &ReminderRepo{DB: db} }

const reminderSelect = `SELECT r.id, r.user_id, r.medication_id, m.name, m.dose, r.reminder_time,
       r.days_of_week, r.is_active, r.last_taken_at, r.snoozed_until, r.created_at, r.updated_at
  FROM reminders r
  JOIN medications m ON m.id = r.medication_id`

// ListByUser returns the user's reminders, newest first.
func (r *ReminderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Reminder, error) {
	return r.query(ctx, reminderSelect+" WHERE r.user_id=? ORDER BY r.created_at DESC, r.id DESC", userID)
}

// ListActive returns every active reminder across all users.  The poller
// evaluates this set on each tick.
func (r *ReminderRepo) ListActive(ctx context.Context) ([]model.Reminder, error) {
	return r.query(ctx, reminderSelect+" WHERE r.is_active=? ORDER BY r.id", true)
}

// GetByIDAndUser returns the reminder if it exists and belongs to userID.
func (r *ReminderRepo) GetByIDAndUser(ctx context.Context, id, userID int64) (model.Reminder, error) {
	row := r.DB.QueryRowContext(ctx, r.DB.Rebind(reminderSelect+" WHERE r.id=? AND r.user_id=?"), id, userID)
	return scanReminder(row)
}

// Create inserts rem and sets rem.ID.  The medication join fields are not
// written.
func (r *ReminderRepo) Create(ctx context.Context, rem *model.Reminder) error {
	id, err := r.DB.InsertID(ctx,
		"INSERT INTO reminders (user_id, medication_id, reminder_time, days_of_week, is_active, last_taken_at, snoozed_until, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		rem.UserID, rem.MedicationID, rem.ReminderTime, model.FormatDays(rem.DaysOfWeek), rem.IsActive,
		nullTime(rem.LastTakenAt), nullTime(rem.SnoozedUntil), rem.CreatedAt.UTC(), rem.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	rem.ID = id
	return nil
}

// Update overwrites the schedule fields of rem.  Taken and snooze state are
// owned by MarkTaken and Snooze.
func (r *ReminderRepo) Update(ctx context.Context, rem *model.Reminder) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(
		"UPDATE reminders SET medication_id=?, reminder_time=?, days_of_week=?, is_active=?, updated_at=? WHERE id=? AND user_id=?"),
		rem.MedicationID, rem.ReminderTime, model.FormatDays(rem.DaysOfWeek), rem.IsActive,
		rem.UpdatedAt.UTC(), rem.ID, rem.UserID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// MarkTaken records a dose at `at` and clears any pending snooze.
func (r *ReminderRepo) MarkTaken(ctx context.Context, id, userID int64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(
		"UPDATE reminders SET last_taken_at=?, snoozed_until=NULL, updated_at=? WHERE id=? AND user_id=?"),
		at.UTC(), at.UTC(), id, userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Snooze silences the reminder until `until`.
func (r *ReminderRepo) Snooze(ctx context.Context, id, userID int64, until, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(
		"UPDATE reminders SET snoozed_until=?, updated_at=? WHERE id=? AND user_id=?"),
		until.UTC(), at.UTC(), id, userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes the reminder.
func (r *ReminderRepo) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM reminders WHERE id=? AND user_id=?"), id, userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *ReminderRepo) query(ctx context.Context, q string, args ...any) ([]model.Reminder, error) {
	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func scanReminder(s rowScanner) (model.Reminder, error) {
	var (
		rem     model.Reminder
		days    string
		taken   sql.NullTime
		snoozed sql.NullTime
	)
	err := s.Scan(&rem.ID, &rem.UserID, &rem.MedicationID, &rem.MedicationName, &rem.MedicationDose,
		&rem.ReminderTime, &days, &rem.IsActive, &taken, &snoozed, &rem.CreatedAt, &rem.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reminder{}, ErrNotFound
		}
		return model.Reminder{}, err
	}
	rem.DaysOfWeek = model.ParseDays(days)
	rem.LastTakenAt = timePtr(taken)
	rem.SnoozedUntil = timePtr(snoozed)
	rem.CreatedAt = rem.CreatedAt.UTC()
	rem.UpdatedAt = rem.UpdatedAt.UTC()
	return rem, nil
}
