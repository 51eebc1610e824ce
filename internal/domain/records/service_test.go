package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/vitals"
	"pet-wellness/internal/platform/logger"
)

type testRepo struct {
	mu sync.Mutex

	vitals   []Vital
	diary    []DiaryEntry
	analyses []Analysis
	meds     []Medication
	versions map[string]int64

	failWith error
}

func newTestRepo() *testRepo {
	return &testRepo{versions: map[string]int64{}}
}

func (r *testRepo) bump(petID string) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.versions[petID]++
	return nil
}

func (r *testRepo) CreateVital(_ context.Context, v Vital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.bump(v.PetID); err != nil {
		return err
	}
	r.vitals = append(r.vitals, v)
	return nil
}

func (r *testRepo) ListVitals(_ context.Context, petID string, _ ListFilter) ([]Vital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Vital{}
	for _, v := range r.vitals {
		if v.PetID == petID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *testRepo) CreateDiaryEntry(_ context.Context, d DiaryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.bump(d.PetID); err != nil {
		return err
	}
	r.diary = append(r.diary, d)
	return nil
}

func (r *testRepo) ListDiary(_ context.Context, petID string, _ ListFilter) ([]DiaryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []DiaryEntry{}
	for _, d := range r.diary {
		if d.PetID == petID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *testRepo) CreateAnalysis(_ context.Context, a Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.bump(a.PetID); err != nil {
		return err
	}
	r.analyses = append(r.analyses, a)
	return nil
}

func (r *testRepo) ListAnalyses(_ context.Context, petID string, _ ListFilter) ([]Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Analysis{}
	for _, a := range r.analyses {
		if a.PetID == petID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) CreateMedication(_ context.Context, m Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.bump(m.PetID); err != nil {
		return err
	}
	r.meds = append(r.meds, m)
	return nil
}

func (r *testRepo) ListMedications(_ context.Context, petID string, _ ListFilter) ([]Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Medication{}
	for _, m := range r.meds {
		if m.PetID == petID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) SeriesVersion(_ context.Context, petID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.versions[petID], nil
}

func fptr(v float64) *float64 { return &v }

var fixedNow = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateVital_EvaluatesAndBumpsVersion(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	v, ev, err := svc.CreateVital(ctx, "pet-1", VitalInput{
		MetricType: "Temperature",
		Value:      41,
		Species:    vitals.SpeciesDog,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Status != vitals.StatusCritical {
		t.Fatalf("status=%s want critical", ev.Status)
	}
	if v.Reading.MetricType != vitals.MetricTemperature {
		t.Fatalf("metric not normalized: %q", v.Reading.MetricType)
	}
	if !v.Reading.RecordedAt.Equal(fixedNow) {
		t.Fatalf("recorded_at should default to now, got %v", v.Reading.RecordedAt)
	}

	ver, _ := svc.SeriesVersion(ctx, "pet-1")
	if ver != 1 {
		t.Fatalf("version=%d want 1", ver)
	}
}

func TestCreateVital_LogsBySeverity(t *testing.T) {
	cases := []struct {
		name      string
		value     float64
		wantLevel string
		wantMsg   string
	}{
		{"critical", 41.5, "WARN", "critical vital recorded"},
		{"warning", 39.8, "INFO", "abnormal vital recorded"},
		{"normal", 38.5, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})
			svc := NewService(newTestRepo(), nil, log)
			svc.now = func() time.Time { return fixedNow }

			_, _, err := svc.CreateVital(context.Background(), "pet-1", VitalInput{
				MetricType: vitals.MetricTemperature,
				Value:      tc.value,
				Species:    vitals.SpeciesDog,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			out := strings.TrimSpace(buf.String())
			if tc.wantLevel == "" {
				if out != "" {
					t.Fatalf("expected no log for normal reading, got %s", out)
				}
				return
			}
			var entry map[string]any
			if err := json.Unmarshal([]byte(out), &entry); err != nil {
				t.Fatalf("decode log line %q: %v", out, err)
			}
			if entry["level"] != tc.wantLevel || entry["msg"] != tc.wantMsg {
				t.Fatalf("level=%v msg=%v want %s %q", entry["level"], entry["msg"], tc.wantLevel, tc.wantMsg)
			}
			if entry["status"] != tc.name || entry["pet_id"] != "pet-1" {
				t.Fatalf("unexpected fields: %v", entry)
			}
		})
	}
}

func TestCreateVital_Validation(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	cases := []struct {
		name  string
		petID string
		in    VitalInput
	}{
		{"missing pet", "", VitalInput{MetricType: vitals.MetricWeight, Value: 10}},
		{"missing metric", "pet-1", VitalInput{Value: 10}},
		{"NaN", "pet-1", VitalInput{MetricType: vitals.MetricWeight, Value: math.NaN()}},
		{"Inf", "pet-1", VitalInput{MetricType: vitals.MetricWeight, Value: math.Inf(1)}},
		{"bad gum code", "pet-1", VitalInput{MetricType: vitals.MetricGumColor, Value: 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.CreateVital(ctx, tc.petID, tc.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateDiaryEntry(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	d, err := svc.CreateDiaryEntry(ctx, "pet-1", DiaryInput{
		EntryDate:      time.Date(2024, 6, 12, 21, 45, 0, 0, time.UTC),
		MoodScore:      fptr(8),
		BehavioralTags: []string{" playful ", "", "hungry"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC); !d.Entry.EntryDate.Equal(want) {
		t.Fatalf("entry_date=%v want %v", d.Entry.EntryDate, want)
	}
	if len(d.Entry.BehavioralTags) != 2 || d.Entry.BehavioralTags[0] != "playful" {
		t.Fatalf("tags=%v", d.Entry.BehavioralTags)
	}

	for _, bad := range []float64{0, 10.5, math.NaN()} {
		if _, err := svc.CreateDiaryEntry(ctx, "pet-1", DiaryInput{EntryDate: fixedNow, MoodScore: fptr(bad)}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("mood %v: expected ErrInvalidInput, got %v", bad, err)
		}
	}
	if _, err := svc.CreateDiaryEntry(ctx, "pet-1", DiaryInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing date: expected ErrInvalidInput, got %v", err)
	}
	// sin ánimo es válido
	if _, err := svc.CreateDiaryEntry(ctx, "pet-1", DiaryInput{EntryDate: fixedNow}); err != nil {
		t.Fatalf("entry without mood: %v", err)
	}
}

func TestCreateAnalysis_ClassifiesText(t *testing.T) {
	svc := newTestService(newTestRepo())

	a, err := svc.CreateAnalysis(context.Background(), "pet-1", AnalysisInput{
		Text: "My dog is so HAPPY, wagging his tail and smiling",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Kind != AnalysisText {
		t.Fatalf("kind=%s want text", a.Kind)
	}
	if a.Analysis.PrimaryEmotion != emotions.Happy || a.Analysis.PrimaryConfidence != 0.95 {
		t.Fatalf("analysis=%+v", a.Analysis)
	}
	if !a.Analysis.CreatedAt.Equal(fixedNow) {
		t.Fatalf("created_at=%v", a.Analysis.CreatedAt)
	}
}

func TestCreateAnalysis_ExternalResult(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	a, err := svc.CreateAnalysis(ctx, "pet-1", AnalysisInput{
		Kind:              AnalysisVideo,
		PrimaryEmotion:    "Tranquillo",
		Confidence:        fptr(0.7),
		SecondaryEmotions: map[string]float64{"felice": 30},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Analysis.PrimaryEmotion != emotions.Calm {
		t.Fatalf("primary=%s want calm", a.Analysis.PrimaryEmotion)
	}
	if a.Analysis.SecondaryEmotions[emotions.Happy] != 30 {
		t.Fatalf("secondary=%v", a.Analysis.SecondaryEmotions)
	}

	cases := []struct {
		name string
		in   AnalysisInput
	}{
		{"audio without result", AnalysisInput{Kind: AnalysisAudio, Text: "barking"}},
		{"text without text", AnalysisInput{Kind: AnalysisText}},
		{"unknown kind", AnalysisInput{Kind: "smell", PrimaryEmotion: "calm", Confidence: fptr(0.5)}},
		{"missing confidence", AnalysisInput{PrimaryEmotion: "calm"}},
		{"confidence above 1", AnalysisInput{PrimaryEmotion: "calm", Confidence: fptr(1.2)}},
		{"secondary out of range", AnalysisInput{PrimaryEmotion: "calm", Confidence: fptr(0.5), SecondaryEmotions: map[string]float64{"sad": 120}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateAnalysis(ctx, "pet-1", tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateMedication(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	ongoing, err := svc.CreateMedication(ctx, "pet-1", MedicationInput{Name: "Amoxicillin", StartDate: start})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ongoing.Span.IsActive {
		t.Fatalf("medication without end should default to active")
	}

	finished, err := svc.CreateMedication(ctx, "pet-1", MedicationInput{Name: "Meloxicam", StartDate: start, EndDate: &end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finished.Span.IsActive {
		t.Fatalf("medication with end should default to inactive")
	}

	before := start.AddDate(0, 0, -1)
	if _, err := svc.CreateMedication(ctx, "pet-1", MedicationInput{Name: "X", StartDate: start, EndDate: &before}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("end before start: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateMedication(ctx, "pet-1", MedicationInput{StartDate: start}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing name: expected ErrInvalidInput, got %v", err)
	}
}

func TestSeriesSource_MapsEnvelopes(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	if _, _, err := svc.CreateVital(ctx, "pet-1", VitalInput{MetricType: vitals.MetricWeight, Value: 12, Species: vitals.SpeciesDog}); err != nil {
		t.Fatalf("vital: %v", err)
	}
	if _, err := svc.CreateDiaryEntry(ctx, "pet-1", DiaryInput{EntryDate: fixedNow, MoodScore: fptr(6)}); err != nil {
		t.Fatalf("diary: %v", err)
	}
	if _, err := svc.CreateAnalysis(ctx, "pet-1", AnalysisInput{PrimaryEmotion: "sad", Confidence: fptr(0.4)}); err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if _, err := svc.CreateMedication(ctx, "pet-1", MedicationInput{Name: "X", StartDate: fixedNow}); err != nil {
		t.Fatalf("medication: %v", err)
	}
	// otra mascota no se mezcla
	if _, err := svc.CreateDiaryEntry(ctx, "pet-2", DiaryInput{EntryDate: fixedNow}); err != nil {
		t.Fatalf("diary pet-2: %v", err)
	}

	vs, _ := svc.Vitals(ctx, "pet-1")
	ds, _ := svc.Diary(ctx, "pet-1")
	as, _ := svc.Analyses(ctx, "pet-1")
	ms, _ := svc.Medications(ctx, "pet-1")
	if len(vs) != 1 || len(ds) != 1 || len(as) != 1 || len(ms) != 1 {
		t.Fatalf("unexpected sizes %d %d %d %d", len(vs), len(ds), len(as), len(ms))
	}
	if vs[0].Species != vitals.SpeciesDog || *ds[0].MoodScore != 6 || as[0].PrimaryEmotion != emotions.Sad || !ms[0].IsActive {
		t.Fatalf("mapping mismatch")
	}

	ver, _ := svc.SeriesVersion(ctx, "pet-1")
	if ver != 4 {
		t.Fatalf("version=%d want 4", ver)
	}
}

func TestCreate_PropagatesRepoError(t *testing.T) {
	repo := newTestRepo()
	repo.failWith = errors.New("disk full")
	svc := newTestService(repo)

	_, err := svc.CreateDiaryEntry(context.Background(), "pet-1", DiaryInput{EntryDate: fixedNow})
	if err == nil || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
