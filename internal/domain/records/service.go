package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/vitals"
	"pet-wellness/internal/domain/wellness"
	"pet-wellness/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo       Repository
	classifier *emotions.Classifier
	log        logger.Logger
	now        func() time.Time
}

func NewService(repo Repository, classifier *emotions.Classifier, log logger.Logger) *Service {
	if classifier == nil {
		classifier = emotions.NewClassifier()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:       repo,
		classifier: classifier,
		log:        log,
		now:        time.Now,
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// --- vitals ---

type VitalInput struct {
	MetricType vitals.MetricType
	Value      float64
	RecordedAt time.Time // cero = ahora
	Species    vitals.Species
}

// CreateVital valida y persiste la lectura; devuelve además su evaluación.
func (s *Service) CreateVital(ctx context.Context, petID string, in VitalInput) (Vital, vitals.Evaluation, error) {
	if strings.TrimSpace(petID) == "" {
		return Vital{}, vitals.Evaluation{}, invalid("pet_id is required")
	}
	metric := vitals.MetricType(strings.ToLower(strings.TrimSpace(string(in.MetricType))))
	if metric == "" {
		return Vital{}, vitals.Evaluation{}, invalid("metric_type is required")
	}
	if !finite(in.Value) {
		return Vital{}, vitals.Evaluation{}, invalid("value must be a finite number")
	}

	ev, err := vitals.Evaluate(metric, in.Value, in.Species)
	if err != nil {
		return Vital{}, vitals.Evaluation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	at := in.RecordedAt
	if at.IsZero() {
		at = now
	}

	v := Vital{
		ID:    uuid.NewString(),
		PetID: petID,
		Reading: vitals.Reading{
			MetricType: metric,
			Value:      in.Value,
			RecordedAt: at,
			Species:    in.Species,
		},
		CreatedAt: now,
	}
	if err := s.repo.CreateVital(ctx, v); err != nil {
		return Vital{}, vitals.Evaluation{}, err
	}

	fields := map[string]any{
		"pet_id": petID,
		"metric": string(metric),
		"status": string(ev.Status),
	}
	switch sev := ev.Status.Severity(); {
	case sev >= vitals.StatusCritical.Severity():
		s.log.Warn("critical vital recorded", fields)
	case sev > 0:
		s.log.Info("abnormal vital recorded", fields)
	}
	return v, ev, nil
}

func (s *Service) ListVitals(ctx context.Context, petID string, f ListFilter) ([]Vital, error) {
	return s.repo.ListVitals(ctx, petID, f)
}

// --- diary ---

type DiaryInput struct {
	EntryDate        time.Time
	MoodScore        *float64
	BehavioralTags   []string
	WeatherCondition string
	Notes            string
}

func (s *Service) CreateDiaryEntry(ctx context.Context, petID string, in DiaryInput) (DiaryEntry, error) {
	if strings.TrimSpace(petID) == "" {
		return DiaryEntry{}, invalid("pet_id is required")
	}
	if in.EntryDate.IsZero() {
		return DiaryEntry{}, invalid("entry_date is required")
	}
	if in.MoodScore != nil {
		m := *in.MoodScore
		if !finite(m) || m < 1 || m > 10 {
			return DiaryEntry{}, invalid("mood_score must be between 1 and 10")
		}
	}

	tags := make([]string, 0, len(in.BehavioralTags))
	for _, t := range in.BehavioralTags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	d := DiaryEntry{
		ID:    uuid.NewString(),
		PetID: petID,
		Entry: wellness.DiaryEntry{
			// fecha de calendario: se guarda como medianoche UTC
			EntryDate:        time.Date(in.EntryDate.Year(), in.EntryDate.Month(), in.EntryDate.Day(), 0, 0, 0, 0, time.UTC),
			MoodScore:        in.MoodScore,
			BehavioralTags:   tags,
			WeatherCondition: strings.TrimSpace(in.WeatherCondition),
		},
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateDiaryEntry(ctx, d); err != nil {
		return DiaryEntry{}, err
	}
	return d, nil
}

func (s *Service) ListDiary(ctx context.Context, petID string, f ListFilter) ([]DiaryEntry, error) {
	return s.repo.ListDiary(ctx, petID, f)
}

// --- analyses ---

type AnalysisInput struct {
	Kind AnalysisKind // vacío = text
	Text string

	// Resultado de un analizador externo; si PrimaryEmotion está vacío y Kind es text,
	// se clasifica Text.
	PrimaryEmotion    string
	Confidence        *float64
	SecondaryEmotions map[string]float64

	CreatedAt time.Time // cero = ahora
}

func (s *Service) CreateAnalysis(ctx context.Context, petID string, in AnalysisInput) (Analysis, error) {
	if strings.TrimSpace(petID) == "" {
		return Analysis{}, invalid("pet_id is required")
	}
	kind := in.Kind
	if kind == "" {
		kind = AnalysisText
	}
	if !kind.valid() {
		return Analysis{}, invalid("kind must be text, audio or video")
	}

	now := s.now().UTC()
	at := in.CreatedAt
	if at.IsZero() {
		at = now
	}

	var an emotions.Analysis
	if strings.TrimSpace(in.PrimaryEmotion) == "" {
		if kind != AnalysisText || strings.TrimSpace(in.Text) == "" {
			return Analysis{}, invalid("primary_emotion or text is required")
		}
		res := s.classifier.Classify(in.Text)
		an = emotions.Analysis{
			PrimaryEmotion:    res.PrimaryEmotion,
			PrimaryConfidence: res.Confidence,
			SecondaryEmotions: res.SecondaryEmotions,
		}
	} else {
		if in.Confidence == nil {
			return Analysis{}, invalid("confidence is required with primary_emotion")
		}
		c := *in.Confidence
		if !finite(c) || c < 0 || c > 1 {
			return Analysis{}, invalid("confidence must be between 0 and 1")
		}
		an = emotions.Analysis{
			PrimaryEmotion:    canonical(in.PrimaryEmotion),
			PrimaryConfidence: c,
		}
		if len(in.SecondaryEmotions) > 0 {
			an.SecondaryEmotions = make(map[emotions.Emotion]float64, len(in.SecondaryEmotions))
			for label, v := range in.SecondaryEmotions {
				if !finite(v) || v < 0 || v > 100 {
					return Analysis{}, invalid("secondary emotion scores must be between 0 and 100")
				}
				an.SecondaryEmotions[canonical(label)] = v
			}
		}
	}
	an.CreatedAt = at

	a := Analysis{
		ID:        uuid.NewString(),
		PetID:     petID,
		Analysis:  an,
		Kind:      kind,
		Text:      strings.TrimSpace(in.Text),
		CreatedAt: now,
	}
	if err := s.repo.CreateAnalysis(ctx, a); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// canonical colapsa variantes de idioma; etiquetas desconocidas se guardan
// en minúsculas y el scoring las pondera como "otras".
func canonical(label string) emotions.Emotion {
	if e, ok := emotions.Canonical(label); ok {
		return e
	}
	return emotions.Emotion(strings.ToLower(strings.TrimSpace(label)))
}

func (s *Service) ListAnalyses(ctx context.Context, petID string, f ListFilter) ([]Analysis, error) {
	return s.repo.ListAnalyses(ctx, petID, f)
}

// --- medications ---

type MedicationInput struct {
	Name      string
	Dosage    string
	DoseUnit  string
	Frequency string
	StartDate time.Time
	EndDate   *time.Time
	IsActive  *bool // nil = activo si no hay EndDate
	Notes     string
}

func (s *Service) CreateMedication(ctx context.Context, petID string, in MedicationInput) (Medication, error) {
	if strings.TrimSpace(petID) == "" {
		return Medication{}, invalid("pet_id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, invalid("name is required")
	}
	if in.StartDate.IsZero() {
		return Medication{}, invalid("start_date is required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return Medication{}, invalid("end_date must not be before start_date")
	}

	active := in.EndDate == nil
	if in.IsActive != nil {
		active = *in.IsActive
	}

	m := Medication{
		ID:        uuid.NewString(),
		PetID:     petID,
		Name:      strings.TrimSpace(in.Name),
		Dosage:    strings.TrimSpace(in.Dosage),
		DoseUnit:  strings.TrimSpace(in.DoseUnit),
		Frequency: strings.TrimSpace(in.Frequency),
		Span: wellness.MedicationSpan{
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			IsActive:  active,
		},
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateMedication(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) ListMedications(ctx context.Context, petID string, f ListFilter) ([]Medication, error) {
	return s.repo.ListMedications(ctx, petID, f)
}

// --- wellness.SeriesSource ---

var _ wellness.SeriesSource = (*Service)(nil)

func (s *Service) SeriesVersion(ctx context.Context, petID string) (int64, error) {
	return s.repo.SeriesVersion(ctx, petID)
}

func (s *Service) Vitals(ctx context.Context, petID string) ([]vitals.Reading, error) {
	items, err := s.repo.ListVitals(ctx, petID, ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]vitals.Reading, 0, len(items))
	for _, v := range items {
		out = append(out, v.Reading)
	}
	return out, nil
}

func (s *Service) Diary(ctx context.Context, petID string) ([]wellness.DiaryEntry, error) {
	items, err := s.repo.ListDiary(ctx, petID, ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]wellness.DiaryEntry, 0, len(items))
	for _, d := range items {
		out = append(out, d.Entry)
	}
	return out, nil
}

func (s *Service) Analyses(ctx context.Context, petID string) ([]emotions.Analysis, error) {
	items, err := s.repo.ListAnalyses(ctx, petID, ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]emotions.Analysis, 0, len(items))
	for _, a := range items {
		out = append(out, a.Analysis)
	}
	return out, nil
}

func (s *Service) Medications(ctx context.Context, petID string) ([]wellness.MedicationSpan, error) {
	items, err := s.repo.ListMedications(ctx, petID, ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]wellness.MedicationSpan, 0, len(items))
	for _, m := range items {
		out = append(out, m.Span)
	}
	return out, nil
}
