package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-wellness/internal/domain/records"
)

// recordRepo guarda las cuatro series por mascota. Un único mutex cubre series y
// versión para que la escritura y el bump sean atómicos.
type recordRepo struct {
	mu sync.RWMutex

	vitals   map[string][]records.Vital
	diary    map[string][]records.DiaryEntry
	analyses map[string][]records.Analysis
	meds     map[string][]records.Medication
	versions map[string]int64
}

func NewRecordRepo() records.Repository {
	return &recordRepo{
		vitals:   make(map[string][]records.Vital),
		diary:    make(map[string][]records.DiaryEntry),
		analyses: make(map[string][]records.Analysis),
		meds:     make(map[string][]records.Medication),
		versions: make(map[string]int64),
	}
}

func requireIDs(id, petID string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("record id required")
	}
	if strings.TrimSpace(petID) == "" {
		return errors.New("pet id required")
	}
	return nil
}

func (r *recordRepo) CreateVital(ctx context.Context, v records.Vital) error {
	if err := requireIDs(v.ID, v.PetID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vitals[v.PetID] = append(r.vitals[v.PetID], v)
	r.versions[v.PetID]++
	return nil
}

func (r *recordRepo) ListVitals(ctx context.Context, petID string, f records.ListFilter) ([]records.Vital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterSorted(r.vitals[petID], f, func(v records.Vital) time.Time { return v.Reading.RecordedAt }), nil
}

func (r *recordRepo) CreateDiaryEntry(ctx context.Context, d records.DiaryEntry) error {
	if err := requireIDs(d.ID, d.PetID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.diary[d.PetID] = append(r.diary[d.PetID], d)
	r.versions[d.PetID]++
	return nil
}

func (r *recordRepo) ListDiary(ctx context.Context, petID string, f records.ListFilter) ([]records.DiaryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterSorted(r.diary[petID], f, func(d records.DiaryEntry) time.Time { return d.Entry.EntryDate }), nil
}

func (r *recordRepo) CreateAnalysis(ctx context.Context, a records.Analysis) error {
	if err := requireIDs(a.ID, a.PetID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.analyses[a.PetID] = append(r.analyses[a.PetID], a)
	r.versions[a.PetID]++
	return nil
}

func (r *recordRepo) ListAnalyses(ctx context.Context, petID string, f records.ListFilter) ([]records.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterSorted(r.analyses[petID], f, func(a records.Analysis) time.Time { return a.Analysis.CreatedAt }), nil
}

func (r *recordRepo) CreateMedication(ctx context.Context, m records.Medication) error {
	if err := requireIDs(m.ID, m.PetID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.meds[m.PetID] = append(r.meds[m.PetID], m)
	r.versions[m.PetID]++
	return nil
}

func (r *recordRepo) ListMedications(ctx context.Context, petID string, f records.ListFilter) ([]records.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterSorted(r.meds[petID], f, func(m records.Medication) time.Time { return m.Span.StartDate }), nil
}

func (r *recordRepo) SeriesVersion(ctx context.Context, petID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.versions[petID], nil
}

// filterSorted copia, filtra por rango y ordena ascendente por at.
// Con Limit se quedan los más recientes.
func filterSorted[T any](items []T, f records.ListFilter, at func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if f.Match(at(it)) {
			out = append(out, it)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return at(out[i]).Before(at(out[j]))
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}
