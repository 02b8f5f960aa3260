package service

import (
	"context"
	"strings"

	"github.com/iliyamo/medisafe/internal/model"
	"github.com/iliyamo/medisafe/internal/validation"
)

// GoalStore is the persistence the goal service needs.
type GoalStore interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Goal, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (model.Goal, error)
	Create(ctx context.Context, g *model.Goal) error
	Update(ctx context.Context, g *model.Goal) error
	Delete(ctx context.Context, id, userID int64) error
}

// GoalInput is the create and update payload.  An empty priority means
// medium.
type GoalInput struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Deadline    *string `json:"deadline,omitempty" validate:"omitempty,isodate"`
	Priority    string  `json:"priority" validate:"oneof=low medium high"`
	IsCompleted bool    `json:"is_completed"`
}

func (in *GoalInput) normalise() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = optional(in.Description)
	in.Deadline = optional(in.Deadline)
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
}

// GoalService manages a user's goals.
type GoalService struct {
	base
	store GoalStore
}

func NewGoalService(store GoalStore, v *validation.Validator, opts ...Option) *GoalService {
	return &GoalService{base: newBase(v, opts), store: store}
}

// List returns the owner's goals, newest first.
func (s *GoalService) List(ctx context.Context, ownerID int64) ([]model.Goal, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	items, err := s.store.ListByUser(cctx, ownerID)
	if err != nil {
		return nil, storeErr("list goals", err)
	}
	return items, nil
}

// Get returns one goal.  Someone else's goal is ErrNotFound.
func (s *GoalService) Get(ctx context.Context, ownerID, id int64) (model.Goal, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	g, err := s.store.GetByIDAndUser(cctx, id, ownerID)
	if err != nil {
		return model.Goal{}, storeErr("get goal", err)
	}
	return g, nil
}

// Create validates and stores a goal.  A goal created as completed is
// stamped with its creation time.
func (s *GoalService) Create(ctx context.Context, ownerID int64, in GoalInput) (model.Goal, error) {
	in.normalise()
	if err := s.validate.Validate(in); err != nil {
		return model.Goal{}, err
	}
	now := s.now()
	g := model.Goal{
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		IsCompleted: in.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if g.IsCompleted {
		g.CompletedAt = &now
	}
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.store.Create(cctx, &g); err != nil {
		return model.Goal{}, storeErr("create goal", err)
	}
	return g, nil
}

// Update replaces the goal's fields.  completed_at is kept consistent with
// is_completed by the store in the same statement.
func (s *GoalService) Update(ctx context.Context, ownerID, id int64, in GoalInput) (model.Goal, error) {
	in.normalise()
	if err := s.validate.Validate(in); err != nil {
		return model.Goal{}, err
	}
	g := model.Goal{
		ID:          id,
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		IsCompleted: in.IsCompleted,
		UpdatedAt:   s.now(),
	}
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.store.Update(cctx, &g); err != nil {
		return model.Goal{}, storeErr("update goal", err)
	}
	out, err := s.store.GetByIDAndUser(cctx, id, ownerID)
	if err != nil {
		return model.Goal{}, storeErr("get goal", err)
	}
	return out, nil
}

// Delete removes the goal.
func (s *GoalService) Delete(ctx context.Context, ownerID, id int64) error {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	return storeErr("delete goal", s.store.Delete(cctx, id, ownerID))
}
