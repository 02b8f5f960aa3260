package service

import (
	"context"
	"strings"

	"github.com/iliyamo/medisafe/internal/model"
	"github.com/iliyamo/medisafe/internal/validation"
)

// MedicationStore is the persistence the medication service needs.
type MedicationStore interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Medication, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (model.Medication, error)
	Create(ctx context.Context, m *model.Medication) error
	Update(ctx context.Context, m *model.Medication) error
	Delete(ctx context.Context, id, userID int64) error
}

// MedicationInput is the create and update payload.
type MedicationInput struct {
	Name       string  `json:"name" validate:"notblank,max=100"`
	Dose       string  `json:"dose" validate:"notblank,max=100"`
	Frequency  string  `json:"frequency" validate:"notblank,max=100"`
	Time       string  `json:"time" validate:"notblank,max=100"`
	ExpiryDate *string `json:"expiry_date,omitempty" validate:"omitempty,isodate"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (in *MedicationInput) normalise() {
	in.Name = strings.TrimSpace(in.Name)
	in.Dose = strings.TrimSpace(in.Dose)
	in.Frequency = strings.TrimSpace(in.Frequency)
	in.Time = strings.TrimSpace(in.Time)
	in.ExpiryDate = optional(in.ExpiryDate)
	in.Notes = optional(in.Notes)
}

// MedicationService manages a user's medications.
type MedicationService struct {
	base
	store MedicationStore
}

func NewMedicationService(store MedicationStore, v *validation.Validator, opts ...Option) *MedicationService {
	return &MedicationService{base: newBase(v, opts), store: store}
}

// List returns the owner's medications, newest first.
func (s *MedicationService) List(ctx context.Context, ownerID int64) ([]model.Medication, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	items, err := s.store.ListByUser(cctx, ownerID)
	if err != nil {
		return nil, storeErr("list medications", err)
	}
	return items, nil
}

// Get returns one medication.  Someone else's medication is ErrNotFound.
func (s *MedicationService) Get(ctx context.Context, ownerID, id int64) (model.Medication, error) {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	m, err := s.store.GetByIDAndUser(cctx, id, ownerID)
	if err != nil {
		return model.Medication{}, storeErr("get medication", err)
	}
	return m, nil
}

// Create validates and stores a medication and returns the stored row.
func (s *MedicationService) Create(ctx context.Context, ownerID int64, in MedicationInput) (model.Medication, error) {
	in.normalise()
	if err := s.validate.Validate(in); err != nil {
		return model.Medication{}, err
	}
	now := s.now()
	m := model.Medication{
		UserID:     ownerID,
		Name:       in.Name,
		Dose:       in.Dose,
		Frequency:  in.Frequency,
		Time:       in.Time,
		ExpiryDate: in.ExpiryDate,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.store.Create(cctx, &m); err != nil {
		return model.Medication{}, storeErr("create medication", err)
	}
	return m, nil
}

// Update replaces the medication's fields and returns the stored row.
func (s *MedicationService) Update(ctx context.Context, ownerID, id int64, in MedicationInput) (model.Medication, error) {
	in.normalise()
	if err := s.validate.Validate(in); err != nil {
		return model.Medication{}, err
	}
	m := model.Medication{
		ID:         id,
		UserID:     ownerID,
		Name:       in.Name,
		Dose:       in.Dose,
		Frequency:  in.Frequency,
		Time:       in.Time,
		ExpiryDate: in.ExpiryDate,
		Notes:      in.Notes,
		UpdatedAt:  s.now(),
	}
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	if err := s.store.Update(cctx, &m); err != nil {
		return model.Medication{}, storeErr("update medication", err)
	}
	out, err := s.store.GetByIDAndUser(cctx, id, ownerID)
	if err != nil {
		return model.Medication{}, storeErr("get medication", err)
	}
	return out, nil
}

// Delete removes the medication and its reminders.
func (s *MedicationService) Delete(ctx context.Context, ownerID, id int64) error {
	cctx, cancel := s.ctx(ctx)
	defer cancel()
	return storeErr("delete medication", s.store.Delete(cctx, id, ownerID))
}
