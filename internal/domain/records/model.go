package records

import (
	"time"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/vitals"
	"pet-wellness/internal/domain/wellness"
)

// Los envelopes agregan identidad y metadatos del store al valor que consume el motor.

type Vital struct {
	ID    string
	PetID string

	Reading vitals.Reading

	CreatedAt time.Time
}

type DiaryEntry struct {
	ID    string
	PetID string

	Entry wellness.DiaryEntry
	Notes string

	CreatedAt time.Time
}

type Analysis struct {
	ID    string
	PetID string

	Analysis emotions.Analysis
	Kind     AnalysisKind
	Text     string // solo para Kind == text

	CreatedAt time.Time
}

type Medication struct {
	ID    string
	PetID string

	Name      string
	Dosage    string // "2"
	DoseUnit  string // "ml", "mg", etc.
	Frequency string // texto libre: "cada 12h"

	Span wellness.MedicationSpan

	Notes string

	CreatedAt time.Time
}
