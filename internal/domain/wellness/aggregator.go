package wellness

import (
	"math"
	"sort"
	"time"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/periods"
	"pet-wellness/internal/domain/vitals"
)

// Aggregator reduce cada serie a una Contribution por ventana.
type Aggregator struct {
	w Weights
}

func NewAggregator(w Weights) *Aggregator {
	return &Aggregator{w: w}
}

// Aggregate filtra cada serie a [win.Start, win.End) y devuelve siempre
// cuatro contribuciones en orden: vitals, mood, emotion, medication.
func (a *Aggregator) Aggregate(win periods.Window, s Series, species vitals.Species) []Contribution {
	return []Contribution{
		a.vitals(win, s.Vitals, species),
		a.mood(win, s.Diary),
		a.emotion(win, s.Analyses),
		a.medication(win, s.Medications),
	}
}

func (a *Aggregator) vitals(win periods.Window, readings []vitals.Reading, species vitals.Species) Contribution {
	out := Contribution{Source: SourceVitals}

	byMetric := map[vitals.MetricType][]float64{}
	for _, r := range readings {
		if !win.Contains(r.RecordedAt) {
			continue
		}
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			continue
		}
		byMetric[r.MetricType] = append(byMetric[r.MetricType], r.Value)
		if species == "" {
			species = r.Species
		}
	}

	metrics := make([]string, 0, len(byMetric))
	for m := range byMetric {
		metrics = append(metrics, string(m))
	}
	sort.Strings(metrics)

	for _, name := range metrics {
		metric := vitals.MetricType(name)
		values := byMetric[metric]

		if metric == vitals.MetricGumColor {
			// códigos categóricos: se evalúa la peor lectura, no la media
			worst, n := 0.0, 0
			for _, v := range values {
				if _, err := vitals.Evaluate(metric, v, species); err != nil {
					continue
				}
				n++
				if v > worst {
					worst = v
				}
			}
			if n == 0 {
				continue
			}
			ev, _ := vitals.Evaluate(metric, worst, species)
			out.SampleCount += n
			if ev.Status == vitals.StatusCritical {
				out.Score += a.w.GumCritical
			} else {
				out.Score += a.w.VitalNormal
			}
			continue
		}

		ev, err := vitals.Evaluate(metric, mean(values), species)
		if err != nil {
			continue
		}
		out.SampleCount += len(values)
		out.Score += a.statusDelta(ev.Status)
	}

	return out
}

func (a *Aggregator) statusDelta(s vitals.Status) float64 {
	switch s {
	case vitals.StatusCritical:
		return a.w.VitalCritical
	case vitals.StatusWarning:
		return a.w.VitalWarning
	default:
		return a.w.VitalNormal
	}
}

func (a *Aggregator) mood(win periods.Window, diary []DiaryEntry) Contribution {
	out := Contribution{Source: SourceMood}

	sum := 0.0
	for _, d := range diary {
		if d.MoodScore == nil || !win.Contains(asDate(d.EntryDate, win)) {
			continue
		}
		m := *d.MoodScore
		if math.IsNaN(m) || m < 1 || m > 10 {
			continue
		}
		sum += m
		out.SampleCount++
	}
	if out.SampleCount == 0 {
		return out
	}

	out.Score = (sum/float64(out.SampleCount) - a.w.MoodNeutral) * a.w.MoodMultiplier
	return out
}

func (a *Aggregator) emotion(win periods.Window, analyses []emotions.Analysis) Contribution {
	out := Contribution{Source: SourceEmotion}

	sum := 0.0
	for _, an := range analyses {
		if !win.Contains(an.CreatedAt) {
			continue
		}
		sum += a.emotionWeight(an)
		out.SampleCount++
	}
	if out.SampleCount == 0 {
		return out
	}

	out.Score = sum / float64(out.SampleCount)
	return out
}

func (a *Aggregator) emotionWeight(an emotions.Analysis) float64 {
	c := an.PrimaryConfidence
	if math.IsNaN(c) {
		c = 0
	}
	c = clamp(c, 0, 1)

	e, _ := emotions.Canonical(string(an.PrimaryEmotion))
	switch e {
	case emotions.Happy, emotions.Playful, emotions.Calm, emotions.Relaxed, emotions.Affectionate:
		return a.w.EmotionPositive * c
	case emotions.Anxious, emotions.Sad, emotions.Aggressive, emotions.Scared, emotions.Depressed:
		return a.w.EmotionNegative * c
	default:
		return a.w.EmotionOther * c
	}
}

// medication compara a granularidad de fecha: inicio dentro suma, fin dentro resta,
// un tratamiento que cubre toda la ventana suma un bonus de estabilidad.
func (a *Aggregator) medication(win periods.Window, spans []MedicationSpan) Contribution {
	out := Contribution{Source: SourceMedication}

	for _, m := range spans {
		if m.StartDate.IsZero() {
			continue
		}
		start := asDate(m.StartDate, win)

		var end *time.Time
		if m.EndDate != nil {
			e := asDate(*m.EndDate, win)
			end = &e
		}
		ongoing := end == nil && m.IsActive

		startsInside := win.Contains(start)
		endsInside := end != nil && win.Contains(*end)
		spanning := start.Before(win.Start) && (ongoing || (end != nil && !end.Before(win.End)))

		if !startsInside && !endsInside && !spanning {
			continue
		}
		out.SampleCount++

		if startsInside {
			out.Score += a.w.MedicationStart
		}
		if endsInside {
			out.Score += a.w.MedicationEnd
		}
		if spanning {
			out.Score += a.w.MedicationSpanning
		}
	}

	return out
}

// asDate interpreta una fecha de calendario en la zona horaria de la ventana.
func asDate(t time.Time, win periods.Window) time.Time {
	loc := win.Start.Location()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
