package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/medisafe/internal/database"
	"github.com/iliyamo/medisafe/internal/model"
)

// MedicationRepo persists medications.  Every lookup and mutation is scoped
// by user_id so a row owned by someone else behaves exactly like a missing
// row.
type MedicationRepo struct{ DB *database.DB }

func NewMedicationRepo(db *database.DB) *MedicationRepo { return &MedicationRepo{DB: db} }

const medicationColumns = "id, user_id, name, dose, frequency, time, expiry_date, notes, created_at, updated_at"

// ListByUser returns the user's medications, newest first.
func (r *MedicationRepo) ListByUser(ctx context.Context, userID int64) ([]model.Medication, error) {
	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(
		"SELECT "+medicationColumns+" FROM medications WHERE user_id=? ORDER BY created_at DESC, id DESC"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByIDAndUser returns the medication if it exists and belongs to userID.
func (r *MedicationRepo) GetByIDAndUser(ctx context.Context, id, userID int64) (model.Medication, error) {
	row := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		"SELECT "+medicationColumns+" FROM medications WHERE id=? AND user_id=? LIMIT 1"), id, userID)
	return scanMedication(row)
}

// Create inserts m and sets m.ID.
func (r *MedicationRepo) Create(ctx context.Context, m *model.Medication) error {
	id, err := r.DB.InsertID(ctx,
		"INSERT INTO medications (user_id, name, dose, frequency, time, expiry_date, notes, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		m.UserID, m.Name, m.Dose, m.Frequency, m.Time, nullString(m.ExpiryDate), nullString(m.Notes),
		m.CreatedAt.UTC(), m.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// Update overwrites the mutable fields of m.  created_at is left alone.
func (r *MedicationRepo) Update(ctx context.Context, m *model.Medication) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(
		"UPDATE medications SET name=?, dose=?, frequency=?, time=?, expiry_date=?, notes=?, updated_at=? WHERE id=? AND user_id=?"),
		m.Name, m.Dose, m.Frequency, m.Time, nullString(m.ExpiryDate), nullString(m.Notes),
		m.UpdatedAt.UTC(), m.ID, m.UserID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes the medication and, through the foreign key, its reminders.
func (r *MedicationRepo) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM medications WHERE id=? AND user_id=?"), id, userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func scanMedication(s rowScanner) (model.Medication, error) {
	var (
		m      model.Medication
		expiry sql.NullString
		notes  sql.NullString
	)
	err := s.Scan(&m.ID, &m.UserID, &m.Name, &m.Dose, &m.Frequency, &m.Time, &expiry, &notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Medication{}, ErrNotFound
		}
		return model.Medication{}, err
	}
	m.ExpiryDate = stringPtr(expiry)
	m.Notes = stringPtr(notes)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}
