package wellness

import (
	"math"

	"pet-wellness/internal/domain/emotions"
)

type TrendAnalyzer struct {
	w Weights
}

func NewTrendAnalyzer(w Weights) *TrendAnalyzer {
	return &TrendAnalyzer{w: w}
}

// Analyze compara las últimas N muestras contra las N anteriores.
// recent son los análisis de comportamiento del período reciente; su confianza
// media ajusta la proyección (proyección conservadora, no un forecast estadístico).
func (t *TrendAnalyzer) Analyze(series []Score, recent []emotions.Analysis) Trend {
	n := t.w.TrendSamples
	if n <= 0 {
		n = 7
	}

	if len(series) == 0 {
		return Trend{Direction: DirectionStable, ProjectedNext: t.w.Baseline}
	}

	split := len(series) - n
	if split < 0 {
		split = 0
	}
	recentHalf := series[split:]
	prevStart := split - n
	if prevStart < 0 {
		prevStart = 0
	}
	prevHalf := series[prevStart:split]

	recentAvg := avgScore(recentHalf)
	if len(recentHalf) < 2 || len(prevHalf) < 2 {
		return Trend{
			Direction:     DirectionStable,
			Magnitude:     0,
			ProjectedNext: clamp(recentAvg, 0, 100),
		}
	}
	prevAvg := avgScore(prevHalf)

	diff := recentAvg - prevAvg
	out := Trend{
		Direction: DirectionStable,
		Magnitude: math.Abs(diff),
	}
	switch {
	case diff > t.w.TrendThreshold:
		out.Direction = DirectionUp
	case diff < -t.w.TrendThreshold:
		out.Direction = DirectionDown
	}

	out.ProjectedNext = clamp(recentAvg+t.adjustment(recent), 0, 100)
	return out
}

func (t *TrendAnalyzer) adjustment(recent []emotions.Analysis) float64 {
	if len(recent) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range recent {
		sum += clamp(a.PrimaryConfidence, 0, 1)
	}
	conf := sum / float64(len(recent))

	switch {
	case conf > t.w.HighConfidence:
		return t.w.TrendNudge
	case conf < t.w.LowConfidence:
		return -t.w.TrendNudge
	default:
		return 0
	}
}

func avgScore(xs []Score) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range xs {
		sum += s.Value
	}
	return sum / float64(len(xs))
}
