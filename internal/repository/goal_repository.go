package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/medisafe/internal/database"
	"github.com/iliyamo/medisafe/internal/model"
)

// GoalRepo persists goals.
type GoalRepo struct{ DB *database.DB }

func NewGoalRepo(db *database.DB) *GoalRepo { return &GoalRepo{DB: db} }

const goalColumns = "id, user_id, title, description, deadline, priority, is_completed, completed_at, created_at, updated_at"

// ListByUser returns the user's goals, newest first.
func (r *GoalRepo) ListByUser(ctx context.Context, userID int64) ([]model.Goal, error) {
	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(
		"SELECT "+goalColumns+" FROM goals WHERE user_id=? ORDER BY created_at DESC, id DESC"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetByIDAndUser returns the goal if it exists and belongs to userID.
func (r *GoalRepo) GetByIDAndUser(ctx context.Context, id, userID int64) (model.Goal, error) {
	row := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		"SELECT "+goalColumns+" FROM goals WHERE id=? AND user_id=? LIMIT 1"), id, userID)
	return scanGoal(row)
}

// Create inserts g and sets g.ID.
func (r *GoalRepo) Create(ctx context.Context, g *model.Goal) error {
	id, err := r.DB.InsertID(ctx,
		"INSERT INTO goals (user_id, title, description, deadline, priority, is_completed, completed_at, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		g.UserID, g.Title, nullString(g.Description), nullString(g.Deadline), g.Priority, g.IsCompleted,
		nullTime(g.CompletedAt), g.CreatedAt.UTC(), g.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

// Update overwrites the goal's fields in a single statement.  completed_at
// follows is_completed: a false->true transition stamps it with
// g.UpdatedAt, true->true keeps the existing stamp and ->false clears it.
func (r *GoalRepo) Update(ctx context.Context, g *model.Goal) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(
		`UPDATE goals
            SET title=?, description=?, deadline=?, priority=?, is_completed=?,
                completed_at = CASE WHEN ? THEN COALESCE(completed_at, ?) ELSE NULL END,
                updated_at=?
          WHERE id=? AND user_id=?`),
		g.Title, nullString(g.Description), nullString(g.Deadline), g.Priority, g.IsCompleted,
		g.IsCompleted, g.UpdatedAt.UTC(),
		g.UpdatedAt.UTC(), g.ID, g.UserID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes the goal.
func (r *GoalRepo) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM goals WHERE id=? AND user_id=?"), id, userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func scanGoal(s rowScanner) (model.Goal, error) {
	var (
		g         model.Goal
		desc      sql.NullString
		deadline  sql.NullString
		completed sql.NullTime
	)
	err := s.Scan(&g.ID, &g.UserID, &g.Title, &desc, &deadline, &g.Priority, &g.IsCompleted, &completed, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Goal{}, ErrNotFound
		}
		return model.Goal{}, err
	}
	g.Description = stringPtr(desc)
	g.Deadline = stringPtr(deadline)
	g.CompletedAt = timePtr(completed)
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return g, nil
}
