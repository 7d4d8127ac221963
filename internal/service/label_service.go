package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notelyhq/notely/internal/domain"
	"github.com/notelyhq/notely/internal/repository"
)

var (
	ErrLabelNotFound = errors.New("label not found")
	ErrLabelExists   = errors.New("label with this name already exists")
	ErrNotLabelOwner = errors.New("not authorized to modify this label")
)

const defaultLabelColor = "#4f46e5"

type LabelService struct {
	labelRepo repository.LabelRepository
}

func NewLabelService(labelRepo repository.LabelRepository) *LabelService {
	return &LabelService{labelRepo: labelRepo}
}

type CreateLabelInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UpdateLabelInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *LabelService) Create(ctx context.Context, ownerID uuid.UUID, input CreateLabelInput) (*domain.Label, error) {
	existing, err := s.labelRepo.GetByOwnerAndName(ctx, ownerID, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLabelExists
	}

	color := input.Color
	if color == "" {
		color = defaultLabelColor
	}

	label := &domain.Label{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      input.Name,
		Color:     color,
		CreatedAt: time.Now(),
	}

	if err := s.labelRepo.Create(ctx, label); err != nil {
		return nil, fmt.Errorf("creating label: %w", err)
	}
	return label, nil
}

func (s *LabelService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Label, error) {
	return s.labelRepo.ListByOwner(ctx, ownerID)
}

func (s *LabelService) Update(ctx context.Context, requesterID, labelID uuid.UUID, input UpdateLabelInput) (*domain.Label, error) {
	label, err := s.labelRepo.GetByID(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, ErrLabelNotFound
	}
	if label.OwnerID != requesterID {
		return nil, ErrNotLabelOwner
	}

	if input.Name != nil && *input.Name != label.Name {
		existing, err := s.labelRepo.GetByOwnerAndName(ctx, requesterID, *input.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != label.ID {
			return nil, ErrLabelExists
		}
		label.Name = *input.Name
	}
	if input.Color != nil {
		label.Color = *input.Color
	}

	if err := s.labelRepo.Update(ctx, label); err != nil {
		return nil, fmt.Errorf("updating label: %w", err)
	}
	return label, nil
}

func (s *LabelService) Delete(ctx context.Context, requesterID, labelID uuid.UUID) error {
	label, err := s.labelRepo.GetByID(ctx, labelID)
	if err != nil {
		return err
	}
	if label == nil {
		return ErrLabelNotFound
	}
	if label.OwnerID != requesterID {
		return ErrNotLabelOwner
	}

	return s.labelRepo.Delete(ctx, labelID)
}
