package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-wellness/internal/domain/pets"
	"pet-wellness/internal/domain/vitals"
)

var errPetExists = errors.New("pet already exists")

type petRepo struct {
	mu      sync.RWMutex
	byID    map[string]pets.Pet
	byOwner map[string][]string
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID:    make(map[string]pets.Pet),
		byOwner: make(map[string][]string),
	}
}

func (r *petRepo) Create(_ context.Context, p pets.Pet) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return errPetExists
	}
	r.byID[p.ID] = p
	r.byOwner[p.OwnerUserID] = append(r.byOwner[p.OwnerUserID], p.ID)
	return nil
}

func (r *petRepo) GetByID(_ context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	p, ok := r.byID[strings.TrimSpace(id)]
	r.mu.RUnlock()

	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return readPet(p), nil
}

func (r *petRepo) ListByOwner(_ context.Context, ownerUserID string) ([]pets.Pet, error) {
	r.mu.RLock()
	ids := r.byOwner[ownerUserID]
	out := make([]pets.Pet, 0, len(ids))
	for _, id := range ids {
		out = append(out, readPet(r.byID[id]))
	}
	r.mu.RUnlock()

	// created_at asc; a igual instante conserva el orden de inserción
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// readPet devuelve una copia normalizada: especie y sexo pasan por los
// mismos parsers que el alta, y birth_date no comparte puntero con el store.
func readPet(p pets.Pet) pets.Pet {
	p.Species = vitals.ParseSpecies(string(p.Species))
	p.Sex = pets.ParseSex(string(p.Sex))
	if p.BirthDate != nil {
		bd := *p.BirthDate
		p.BirthDate = &bd
	}
	return p
}
