package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-wellness/internal/domain/vitals"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	Sex       string
	BirthDate *time.Time
	Microchip string
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Species) == "" {
		return Pet{}, fmt.Errorf("%w: species is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	if in.BirthDate != nil && in.BirthDate.After(now) {
		return Pet{}, fmt.Errorf("%w: birth_date is in the future", ErrInvalidInput)
	}

	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		// especies desconocidas caen en "other" (rangos más amplios)
		Species:   vitals.ParseSpecies(in.Species),
		Breed:     strings.TrimSpace(in.Breed),
		Sex:       ParseSex(in.Sex),
		BirthDate: in.BirthDate,
		Microchip: strings.TrimSpace(in.Microchip),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// Authorize devuelve la mascota si userID es el dueño.
// ErrNotFound si no existe, ErrForbidden si pertenece a otro usuario.
func (s *Service) Authorize(ctx context.Context, petID, userID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if strings.TrimSpace(userID) == "" || p.OwnerUserID != userID {
		return Pet{}, ErrForbidden
	}
	return p, nil
}
