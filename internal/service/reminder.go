package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/medisafe/internal/model"
	"github.com/iliyamo/medisafe/internal/reminder"
	"github.com/iliyamo/medisafe/internal/repository"
	"github.com/iliyamo/medisafe/internal/validation"
)

// ReminderStore is the persistence the reminder service needs.
type ReminderStore interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Reminder, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (model.Reminder, error)
	Create(ctx context.Context, r *model.Reminder) error
	Update(ctx context.Context, r *model.Reminder) error
	MarkTaken(ctx context.Context, id, userID int64, at time.Time) error
	Snooze(ctx context.Context, id, userID int64, until, at time.Time) error
	Delete(ctx context.Context, id, userID int64) error
}

// MedicationLookup resolves a medication for its owner.
type MedicationLookup interface {
	GetByIDAndUser(ctx context.Context, id, userID int64) (model.Medication, error)
}

// ReminderInput is the create and update payload.  IsActive defaults to
// true when omitted.
type ReminderInput struct {
	MedicationID int64  `json:"medication_id" validate:"required,gt=0"`
	ReminderTime string `json:"reminder_time" validate:"required,clock"`
	DaysOfWeek   []int  `json:"days_of_week" validate:"required,min=1,max=7,dive,gte=0,lte=6"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// ReminderService manages reminders and their taken and snooze state.
type ReminderService struct {
	base
	store       ReminderStore
	medications MedicationLookup
	eval        reminder.Evaluator
	snooze      time.Duration
}

// NewReminderService builds the service.  loc decides what "today" means
// for stats; snooze is the default snooze length.
func NewReminderService(store ReminderStore, meds MedicationLookup, v *validation.Validator, loc *time.Location, snooze time.Duration, opts ...Option) *ReminderService {
	if snooze <= 0 {
		snooze = 10 * time.Minute
	}
	return &ReminderService{
		base:        newBase(v, opts),
		store:       store,
		medications: meds,
		eval:        reminder.Evaluator{Location: loc},
		snooze:      snooze,
	}
}

// List returns the owner's reminders, newest first.
func (s *ReminderService) List(ctx context.Context, ownerID int64) ([]model.Reminder, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	items, err := s.store.ListByUser(cctx, ownerID)
	if err != nil {
		return nil, storeErr("list reminders", err)
	}
	return items, nil
}

// Get returns one reminder.  Someone else's reminder is ErrNotFound.
func (s *ReminderService) Get(ctx context.Context, ownerID, id int64) (model.Reminder, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	r, err := s.store.GetByIDAndUser(cctx, id, ownerID)
	if err != nil {
		return model.Reminder{}, storeErr("get reminder", err)
	}
	return r, nil
}

// Create validates in, checks the medication belongs to the owner and
// stores the reminder.
func (s *ReminderService) Create(ctx context.Context, ownerID int64, in ReminderInput) (model.Reminder, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.check(cctx, ownerID, &in); err != nil {
		return model.Reminder{}, err
	}
	now := s.now()
	r := model.Reminder{
		UserID:       ownerID,
		MedicationID: in.MedicationID,
		ReminderTime: in.ReminderTime,
		DaysOfWeek:   in.DaysOfWeek,
		IsActive:     in.IsActive == nil || *in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(cctx, &r); err != nil {
		return model.Reminder{}, storeErr("create reminder", err)
	}
	return s.get(cctx, ownerID, r.ID)
}

// Update replaces the reminder's schedule.
func (s *ReminderService) Update(ctx context.Context, ownerID, id int64, in ReminderInput) (model.Reminder, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.check(cctx, ownerID, &in); err != nil {
		return model.Reminder{}, err
	}
	r := model.Reminder{
		ID:           id,
		UserID:       ownerID,
		MedicationID: in.MedicationID,
		ReminderTime: in.ReminderTime,
		DaysOfWeek:   in.DaysOfWeek,
		IsActive:     in.IsActive == nil || *in.IsActive,
		UpdatedAt:    s.now(),
	}
	if err := s.store.Update(cctx, &r); err != nil {
		return model.Reminder{}, storeErr("update reminder", err)
	}
	return s.get(cctx, ownerID, id)
}

// Delete removes the reminder.
func (s *ReminderService) Delete(ctx context.Context, ownerID, id int64) error {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	return storeErr("delete reminder", s.store.Delete(cctx, id, ownerID))
}

// MarkTaken records a dose now and clears any snooze.
func (s *ReminderService) MarkTaken(ctx context.Context, ownerID, id int64) (model.Reminder, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.store.MarkTaken(cctx, id, ownerID, s.now()); err != nil {
		return model.Reminder{}, storeErr("mark reminder taken", err)
	}
	return s.get(cctx, ownerID, id)
}

// Snooze silences the reminder for d, or for the default snooze length
// when d is not positive.
func (s *ReminderService) Snooze(ctx context.Context, ownerID, id int64, d time.Duration) (model.Reminder, error) {
	if d <= 0 {
		d = s.snooze
	}
	now := s.now()
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.store.Snooze(cctx, id, ownerID, now.Add(d), now); err != nil {
		return model.Reminder{}, storeErr("snooze reminder", err)
	}
	return s.get(cctx, ownerID, id)
}

// Stats summarises today's reminders for the owner.
func (s *ReminderService) Stats(ctx context.Context, ownerID int64) (reminder.Stats, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	items, err := s.store.ListByUser(cctx, ownerID)
	if err != nil {
		return reminder.Stats{}, storeErr("list reminders", err)
	}
	return s.eval.Summarise(items, s.clock()), nil
}

func (s *ReminderService) get(ctx context.Context, ownerID, id int64) (model.Reminder, error) {
	r, err := s.store.GetByIDAndUser(ctx, id, ownerID)
	if err != nil {
		return model.Reminder{}, storeErr("get reminder", err)
	}
	return r, nil
}

// check validates in and resolves its medication for the owner.
func (s *ReminderService) check(ctx context.Context, ownerID int64, in *ReminderInput) error {
	in.ReminderTime = strings.TrimSpace(in.ReminderTime)
	if err := s.validate.Validate(in); err != nil {
		return err
	}
	if _, err := s.medications.GetByIDAndUser(ctx, in.MedicationID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validation.NewError("medication_id", "must reference one of your medications", in.MedicationID)
		}
		return storeErr("get medication", err)
	}
	return nil
}
