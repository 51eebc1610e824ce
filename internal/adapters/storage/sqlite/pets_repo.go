package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-wellness/internal/domain/pets"
	"pet-wellness/internal/domain/vitals"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

var _ pets.Repository = (*PetsRepo)(nil)

const petColumns = `id, owner_user_id, name, species, breed, sex, birth_date, microchip, notes, created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	var bd any
	if p.BirthDate != nil {
		bd = formatDate(*p.BirthDate)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		string(p.Species),
		p.Breed,
		string(p.Sex),
		bd,
		p.Microchip,
		p.Notes,
		formatTS(p.CreatedAt),
		formatTS(p.UpdatedAt),
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = ?`, id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+` FROM pets
		WHERE owner_user_id = ?
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (pets.Pet, error) {
	var p pets.Pet
	var species, sex, createdAt, updatedAt string
	var bd sql.NullString
	if err := s.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&species,
		&p.Breed,
		&sex,
		&bd,
		&p.Microchip,
		&p.Notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Species = vitals.ParseSpecies(species)
	p.Sex = pets.ParseSex(sex)

	var err error
	if p.CreatedAt, err = parseTS(createdAt); err != nil {
		return pets.Pet{}, fmt.Errorf("pets.created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTS(updatedAt); err != nil {
		return pets.Pet{}, fmt.Errorf("pets.updated_at: %w", err)
	}
	if bd.Valid {
		t, err := parseDate(bd.String)
		if err != nil {
			return pets.Pet{}, fmt.Errorf("pets.birth_date: %w", err)
		}
		p.BirthDate = &t
	}
	return p, nil
}
