package wellness

import (
	"math"
	"time"

	"pet-wellness/internal/domain/periods"
	"pet-wellness/internal/domain/vitals"
)

// Engine implementa las dos políticas de scoring:
// aditiva por ventana (ScoreWindow) y promedio de factores (ScoreCurrent).
type Engine struct {
	w Weights
}

func NewEngine(w Weights) *Engine {
	return &Engine{w: w}
}

// ScoreWindow = clamp(baseline + Σ contribuciones con muestras, 0, 100).
func (e *Engine) ScoreWindow(contribs []Contribution) float64 {
	total := e.w.Baseline
	for _, c := range contribs {
		if c.SampleCount <= 0 {
			continue
		}
		total += c.Score
	}
	return clamp(total, 0, 100)
}

// WindowScore arma el Score de una ventana; HasData si alguna fuente tuvo muestras.
func (e *Engine) WindowScore(win periods.Window, contribs []Contribution) Score {
	has := false
	for _, c := range contribs {
		if c.SampleCount > 0 {
			has = true
			break
		}
	}
	return Score{Window: win, Value: e.ScoreWindow(contribs), HasData: has}
}

type CurrentInput struct {
	History []Score
	Vitals  []vitals.Reading
	Diary   []DiaryEntry
	Species vitals.Species
	Now     time.Time
}

// Current es el "unified health score". Factors == 0 significa datos insuficientes
// y Score queda en 0 (centinela, no un 0% real).
type Current struct {
	Score   float64 `json:"score"`
	Factors int     `json:"factors"`
	HasData bool    `json:"has_data"`

	History    *float64 `json:"history_factor,omitempty"`
	Monitoring *float64 `json:"monitoring_factor,omitempty"`
	Mood       *float64 `json:"mood_factor,omitempty"`
}

// ScoreCurrent promedia los factores que tienen datos: historial de ventanas,
// frecuencia de monitoreo con penalización por críticos, y ánimo promedio del diario.
// Con lecturas críticas recientes el resultado no supera el promedio de los
// otros factores: una lectura crítica nunca mejora el score.
func (e *Engine) ScoreCurrent(in CurrentInput) Current {
	var out Current
	others, n := 0.0, 0

	if v, ok := e.historyFactor(in.History); ok {
		out.History = &v
		others += v
		n++
	}
	if v, ok := e.moodFactor(in.Diary); ok {
		out.Mood = &v
		others += v
		n++
	}

	mon, critical, hasMon := e.monitoringFactor(in.Vitals, in.Species, in.Now)
	if hasMon {
		out.Monitoring = &mon
	}

	out.Factors = n
	sum := others
	if hasMon {
		sum += mon
		out.Factors++
	}
	if out.Factors == 0 {
		return out
	}

	score := sum / float64(out.Factors)
	if critical > 0 && n > 0 {
		score = math.Min(score, others/float64(n))
	}
	out.Score = clamp(score, 0, 100)
	out.HasData = true
	return out
}

func (e *Engine) historyFactor(history []Score) (float64, bool) {
	sum, n := 0.0, 0
	for _, s := range history {
		if !s.HasData {
			continue
		}
		sum += s.Value
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// monitoringFactor devuelve el factor y la cantidad de críticos dentro del span.
func (e *Engine) monitoringFactor(readings []vitals.Reading, species vitals.Species, now time.Time) (float64, int, bool) {
	if len(readings) == 0 {
		return 0, 0, false
	}
	if now.IsZero() {
		now = time.Now()
	}
	since := now.Add(-e.w.MonitoringSpan)

	valid := 0
	recent, critical, warning := 0, 0, 0
	for _, r := range readings {
		sp := species
		if sp == "" {
			sp = r.Species
		}
		ev, err := vitals.Evaluate(r.MetricType, r.Value, sp)
		if err != nil {
			continue
		}
		valid++
		if r.RecordedAt.Before(since) || r.RecordedAt.After(now) {
			continue
		}
		recent++
		switch ev.Status {
		case vitals.StatusCritical:
			critical++
		case vitals.StatusWarning:
			warning++
		}
	}
	if valid == 0 {
		return 0, 0, false
	}

	v := e.w.MonitoringBase +
		e.w.MonitoringEach*float64(recent) -
		e.w.MonitoringCrit*float64(critical) -
		e.w.MonitoringWarn*float64(warning)
	return clamp(v, 0, 100), critical, true
}

func (e *Engine) moodFactor(diary []DiaryEntry) (float64, bool) {
	sum, n := 0.0, 0
	for _, d := range diary {
		if d.MoodScore == nil {
			continue
		}
		m := *d.MoodScore
		if math.IsNaN(m) || m < 1 || m > 10 {
			continue
		}
		sum += m
		n++
	}
	if n == 0 {
		return 0, false
	}
	return clamp(sum/float64(n)*e.w.MoodToPercent, 0, 100), true
}
