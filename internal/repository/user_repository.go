package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/medisafe/internal/database"
	"github.com/iliyamo/medisafe/internal/model"
)

// UserRepo is the credential store over the 'users' table.
type UserRepo struct{ DB *database.DB }

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, password_hash, email, created_at, updated_at"

// Create inserts the user and returns its ID.  Username uniqueness is left
// to the UNIQUE index so two concurrent registrations cannot both succeed;
// the loser gets ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (int64, error) {
	id, err := r.DB.InsertID(ctx,
		"INSERT INTO users (username, password_hash, email, created_at, updated_at) VALUES (?,?,?,?,?)",
		u.Username, u.PasswordHash, nullString(u.Email), u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		if r.DB.IsUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	u.ID = id
	return id, nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		r.DB.Rebind("SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1"), username)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		r.DB.Rebind("SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1"), id)
	return scanUser(row)
}

// TouchUpdatedAt records activity on the account.
func (r *UserRepo) TouchUpdatedAt(ctx context.Context, id int64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		r.DB.Rebind("UPDATE users SET updated_at=? WHERE id=?"), at.UTC(), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// List returns every user ordered by id.  Used by the admin CLI.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes the user; medications, reminders and goals go with it
// through ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM users WHERE id=?"), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u     model.User
		email sql.NullString
	)
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.Email = stringPtr(email)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// UpdatePasswordHash replaces the stored hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		r.DB.Rebind("UPDATE users SET password_hash=?, updated_at=? WHERE id=?"), hash, at.UTC(), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
