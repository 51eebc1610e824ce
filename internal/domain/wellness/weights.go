package wellness

import "time"

// Weights reúne las constantes empíricas del scoring. No tienen derivación documentada;
// se exponen como configuración en vez de re-derivarlas.
type Weights struct {
	Baseline float64

	MoodNeutral    float64
	MoodMultiplier float64

	EmotionPositive float64
	EmotionNegative float64
	EmotionOther    float64

	MedicationStart    float64
	MedicationEnd      float64
	MedicationSpanning float64

	VitalCritical float64
	VitalWarning  float64
	VitalNormal   float64
	GumCritical   float64

	TrendThreshold float64
	TrendNudge     float64
	TrendSamples   int
	HighConfidence float64
	LowConfidence  float64
	MonitoringBase float64
	MonitoringEach float64
	MonitoringCrit float64
	MonitoringWarn float64
	MonitoringSpan time.Duration
	MoodToPercent  float64
}

func DefaultWeights() Weights {
	return Weights{
		Baseline: 50,

		MoodNeutral:    5,
		MoodMultiplier: 10,

		EmotionPositive: 15,
		EmotionNegative: -20,
		EmotionOther:    5,

		MedicationStart:    8,
		MedicationEnd:      -5,
		MedicationSpanning: 3,

		VitalCritical: -25,
		VitalWarning:  -10,
		VitalNormal:   5,
		GumCritical:   -30,

		TrendThreshold: 5,
		TrendNudge:     5,
		TrendSamples:   7,
		HighConfidence: 0.80,
		LowConfidence:  0.60,
		MonitoringBase: 50,
		MonitoringEach: 5,
		MonitoringCrit: 20,
		MonitoringWarn: 5,
		MonitoringSpan: 30 * 24 * time.Hour,
		MoodToPercent:  10,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
