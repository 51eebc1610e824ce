package records

import (
	"context"
	"time"
)

// Repository persiste las cuatro series. Cada Create exitoso incrementa la versión
// de series de la mascota en la misma operación.
type Repository interface {
	CreateVital(ctx context.Context, v Vital) error
	ListVitals(ctx context.Context, petID string, f ListFilter) ([]Vital, error)

	CreateDiaryEntry(ctx context.Context, d DiaryEntry) error
	ListDiary(ctx context.Context, petID string, f ListFilter) ([]DiaryEntry, error)

	CreateAnalysis(ctx context.Context, a Analysis) error
	ListAnalyses(ctx context.Context, petID string, f ListFilter) ([]Analysis, error)

	CreateMedication(ctx context.Context, m Medication) error
	ListMedications(ctx context.Context, petID string, f ListFilter) ([]Medication, error)

	// SeriesVersion devuelve 0 si la mascota no tiene registros.
	SeriesVersion(ctx context.Context, petID string) (int64, error)
}

// ListFilter filtra por el timestamp propio de cada serie (recorded_at, entry_date,
// created_at, start_date). Limit <= 0 = sin límite. Resultado ordenado ascendente.
type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// Match aplica el rango [From, To] a t; lo comparten los repos en memoria.
func (f ListFilter) Match(t time.Time) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}
