package wellness

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/periods"
	"pet-wellness/internal/domain/vitals"
	"pet-wellness/internal/platform/logger"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidInput = errors.New("invalid input")

const (
	trendDays       = 28
	trendRecentSpan = 7 * 24 * time.Hour
)

// SeriesSource entrega las series completas de una mascota. SeriesVersion cambia
// en cada escritura y forma parte de la key de cache.
type SeriesSource interface {
	SeriesVersion(ctx context.Context, petID string) (int64, error)
	Vitals(ctx context.Context, petID string) ([]vitals.Reading, error)
	Diary(ctx context.Context, petID string) ([]DiaryEntry, error)
	Analyses(ctx context.Context, petID string) ([]emotions.Analysis, error)
	Medications(ctx context.Context, petID string) ([]MedicationSpan, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (Report, bool, error)
	Set(ctx context.Context, key string, r Report) error
}

type ReportRequest struct {
	PetID       string
	Species     vitals.Species
	Range       periods.Range
	Granularity periods.Granularity
}

type WindowReport struct {
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	Label         string         `json:"label"`
	Score         float64        `json:"score"`
	HasData       bool           `json:"has_data"`
	Contributions []Contribution `json:"contributions"`
}

type Report struct {
	PetID         string              `json:"pet_id"`
	Species       vitals.Species      `json:"species"`
	Granularity   periods.Granularity `json:"granularity"`
	Windows       []WindowReport      `json:"windows"`
	Current       Current             `json:"current"`
	Trend         Trend               `json:"trend"`
	SeriesVersion int64               `json:"series_version"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

type Service struct {
	src   SeriesSource
	cache Cache
	log   logger.Logger

	agg    *Aggregator
	engine *Engine
	trend  *TrendAnalyzer

	now func() time.Time
	loc *time.Location
}

type ServiceOption func(*Service)

func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithWeights(w Weights) ServiceOption {
	return func(s *Service) {
		s.agg = NewAggregator(w)
		s.engine = NewEngine(w)
		s.trend = NewTrendAnalyzer(w)
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation fija la zona horaria de las ventanas (ancla y fechas de calendario).
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(src SeriesSource, opts ...ServiceOption) *Service {
	w := DefaultWeights()
	s := &Service{
		src:    src,
		log:    logger.Nop(),
		agg:    NewAggregator(w),
		engine: NewEngine(w),
		trend:  NewTrendAnalyzer(w),
		now:    time.Now,
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheKey identifica un reporte por (pet, rango, granularidad, especie, versión de series).
func CacheKey(req ReportRequest, version int64) string {
	var b strings.Builder
	b.WriteString(req.PetID)
	b.WriteByte('|')
	if !req.Range.From.IsZero() {
		b.WriteString(req.Range.From.UTC().Format(time.RFC3339))
	}
	b.WriteByte('|')
	b.WriteString(req.Range.To.UTC().Format(time.RFC3339))
	b.WriteByte('|')
	b.WriteString(string(req.Granularity))
	b.WriteByte('|')
	b.WriteString(string(req.Species))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(version, 10))
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// Report arma el reporte de bienestar: fetch concurrente → bucket → aggregate → score → trend.
func (s *Service) Report(ctx context.Context, req ReportRequest) (Report, error) {
	req.PetID = strings.TrimSpace(req.PetID)
	if req.PetID == "" {
		return Report{}, fmt.Errorf("%w: pet_id is required", ErrInvalidInput)
	}
	if req.Granularity == "" {
		req.Granularity = periods.Week
	}
	if _, err := periods.ParseGranularity(string(req.Granularity)); err != nil {
		return Report{}, err
	}
	if req.Range.To.IsZero() {
		// ancla truncada al minuto para que requests repetidos compartan key
		req.Range.To = s.now().In(s.loc).Truncate(time.Minute)
	}
	if err := req.Range.Validate(); err != nil {
		return Report{}, err
	}

	version, err := s.src.SeriesVersion(ctx, req.PetID)
	if err != nil {
		return Report{}, fmt.Errorf("series version: %w", err)
	}

	log := s.log.With(map[string]any{"pet_id": req.PetID, "granularity": string(req.Granularity)})

	key := CacheKey(req, version)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("report cache get failed", map[string]any{"error": err.Error()})
		} else if ok {
			log.Debug("report cache hit", map[string]any{"version": version})
			return cached, nil
		}
	}

	series, err := s.fetch(ctx, req.PetID)
	if err != nil {
		return Report{}, err
	}

	out, err := s.Compute(req, series)
	if err != nil {
		return Report{}, err
	}
	out.SeriesVersion = version

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			log.Warn("report cache set failed", map[string]any{"error": err.Error()})
		}
	}

	log.Info("report computed", map[string]any{
		"windows": len(out.Windows),
		"score":   out.Current.Score,
		"trend":   string(out.Trend.Direction),
	})
	return out, nil
}

// fetch carga las cuatro series en paralelo; el primer error cancela el resto.
func (s *Service) fetch(ctx context.Context, petID string) (Series, error) {
	var out Series
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.src.Vitals(gctx, petID)
		if err != nil {
			return fmt.Errorf("fetch vitals: %w", err)
		}
		out.Vitals = v
		return nil
	})
	g.Go(func() error {
		d, err := s.src.Diary(gctx, petID)
		if err != nil {
			return fmt.Errorf("fetch diary: %w", err)
		}
		out.Diary = d
		return nil
	})
	g.Go(func() error {
		a, err := s.src.Analyses(gctx, petID)
		if err != nil {
			return fmt.Errorf("fetch analyses: %w", err)
		}
		out.Analyses = a
		return nil
	})
	g.Go(func() error {
		m, err := s.src.Medications(gctx, petID)
		if err != nil {
			return fmt.Errorf("fetch medications: %w", err)
		}
		out.Medications = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return Series{}, err
	}
	return out, nil
}

// Compute corre el pipeline sobre series ya cargadas. No toca cache ni storage;
// lo usa también el CLI offline.
func (s *Service) Compute(req ReportRequest, series Series) (Report, error) {
	if req.Granularity == "" {
		req.Granularity = periods.Week
	}
	anchor := req.Range.To
	if anchor.IsZero() {
		anchor = s.now().In(s.loc)
	}

	rng := periods.Range{From: req.Range.From, To: anchor}
	if req.Granularity == periods.All && rng.From.IsZero() {
		rng.From = series.Earliest()
		if rng.From.After(anchor) {
			rng.From = time.Time{}
		}
	}

	windows, err := periods.Bucket(rng, req.Granularity)
	if err != nil {
		return Report{}, err
	}

	out := Report{
		PetID:       req.PetID,
		Species:     req.Species,
		Granularity: req.Granularity,
		Windows:     make([]WindowReport, 0, len(windows)),
		GeneratedAt: s.now().UTC(),
	}

	history := make([]Score, 0, len(windows))
	for _, win := range windows {
		contribs := s.agg.Aggregate(win, series, req.Species)
		sc := s.engine.WindowScore(win, contribs)
		history = append(history, sc)
		out.Windows = append(out.Windows, WindowReport{
			Start:         win.Start,
			End:           win.End,
			Label:         win.Label,
			Score:         sc.Value,
			HasData:       sc.HasData,
			Contributions: contribs,
		})
	}

	span := periods.Window{Start: windows[0].Start, End: windows[len(windows)-1].End}
	diary := make([]DiaryEntry, 0, len(series.Diary))
	for _, d := range series.Diary {
		if span.Contains(asDate(d.EntryDate, span)) {
			diary = append(diary, d)
		}
	}

	out.Current = s.engine.ScoreCurrent(CurrentInput{
		History: history,
		Vitals:  series.Vitals,
		Diary:   diary,
		Species: req.Species,
		Now:     anchor,
	})
	out.Trend = s.dailyTrend(anchor, series, req.Species)

	return out, nil
}

// dailyTrend usa los scores diarios con datos de los últimos 28 días y los
// análisis de los últimos 7 como "recientes".
func (s *Service) dailyTrend(anchor time.Time, series Series, species vitals.Species) Trend {
	days := periods.Days(anchor, trendDays)

	scores := make([]Score, 0, len(days))
	for _, day := range days {
		sc := s.engine.WindowScore(day, s.agg.Aggregate(day, series, species))
		if sc.HasData {
			scores = append(scores, sc)
		}
	}

	since := anchor.Add(-trendRecentSpan)
	recent := make([]emotions.Analysis, 0, len(series.Analyses))
	for _, a := range series.Analyses {
		if a.CreatedAt.After(since) && !a.CreatedAt.After(anchor) {
			recent = append(recent, a)
		}
	}

	return s.trend.Analyze(scores, recent)
}
