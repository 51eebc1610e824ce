package vitals

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNonFiniteValue  = errors.New("vital value must be a finite number")
	ErrInvalidGumColor = errors.New("gum_color must be one of 1 (pink), 2 (pale), 3 (blue/purple), 4 (yellow)")
)

// Range es un intervalo cerrado [Low, High].
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

type reference struct {
	critical Range
	normal   map[Species]Range
}

// references: la envolvente crítica no depende de la especie; el rango normal sí.
var references = map[MetricType]reference{
	MetricTemperature: {
		critical: Range{Low: 37.0, High: 40.5},
		normal: map[Species]Range{
			SpeciesDog:   {Low: 38.0, High: 39.2},
			SpeciesCat:   {Low: 38.1, High: 39.2},
			SpeciesOther: {Low: 37.5, High: 39.5},
		},
	},
	MetricHeartRate: {
		critical: Range{Low: 40, High: 240},
		normal: map[Species]Range{
			SpeciesDog:   {Low: 60, High: 140},
			SpeciesCat:   {Low: 140, High: 220},
			SpeciesOther: {Low: 60, High: 200},
		},
	},
	MetricRespiration: {
		critical: Range{Low: 6, High: 60},
		normal: map[Species]Range{
			SpeciesDog:   {Low: 10, High: 30},
			SpeciesCat:   {Low: 20, High: 30},
			SpeciesOther: {Low: 10, High: 40},
		},
	},
	MetricWeight: {
		critical: Range{Low: 0.05, High: 150},
		normal: map[Species]Range{
			SpeciesDog:   {Low: 1, High: 90},
			SpeciesCat:   {Low: 2, High: 10},
			SpeciesOther: {Low: 0.05, High: 100},
		},
	},
	MetricBloodPressure: {
		critical: Range{Low: 80, High: 200},
		normal: map[Species]Range{
			SpeciesDog:   {Low: 110, High: 160},
			SpeciesCat:   {Low: 120, High: 170},
			SpeciesOther: {Low: 100, High: 170},
		},
	},
}

// Evaluation es el resultado de clasificar una lectura.
type Evaluation struct {
	MetricType     MetricType `json:"metric_type"`
	Status         Status     `json:"status"`
	Message        string     `json:"message"`
	Recommendation string     `json:"recommendation,omitempty"`

	// Normal/Critical solo se informan para métricas numéricas conocidas.
	Normal   *Range `json:"normal_range,omitempty"`
	Critical *Range `json:"critical_range,omitempty"`
}

// Evaluate clasifica un valor contra los rangos de referencia de la especie.
// Métricas desconocidas devuelven normal (fail-open).
func Evaluate(metric MetricType, value float64, species Species) (Evaluation, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Evaluation{}, ErrNonFiniteValue
	}

	if metric == MetricGumColor {
		return evaluateGumColor(value)
	}

	ref, ok := references[metric]
	if !ok {
		return Evaluation{
			MetricType: metric,
			Status:     StatusNormal,
			Message:    fmt.Sprintf("no reference range for %q, value recorded as-is", metric),
		}, nil
	}

	normal, ok := ref.normal[species]
	if !ok {
		normal = ref.normal[SpeciesOther]
	}
	critical := ref.critical

	out := Evaluation{
		MetricType: metric,
		Normal:     &normal,
		Critical:   &critical,
	}
	unit := MetricUnits[metric]

	switch {
	case !critical.Contains(value):
		out.Status = StatusCritical
		out.Message = fmt.Sprintf("%s %.1f %s is outside the safe envelope [%.1f, %.1f]", metric, value, unit, critical.Low, critical.High)
		out.Recommendation = "Contact your veterinarian immediately."
	case !normal.Contains(value):
		out.Status = StatusWarning
		dir := "above"
		if value < normal.Low {
			dir = "below"
		}
		out.Message = fmt.Sprintf("%s %.1f %s is %s the normal range [%.1f, %.1f]", metric, value, unit, dir, normal.Low, normal.High)
		out.Recommendation = "Re-measure shortly and monitor; consult your veterinarian if it persists."
	default:
		out.Status = StatusNormal
		out.Message = fmt.Sprintf("%s %.1f %s is within the normal range", metric, value, unit)
	}

	return out, nil
}

// evaluateGumColor: cualquier color distinto de rosado es una emergencia, sin nivel warning.
func evaluateGumColor(value float64) (Evaluation, error) {
	if value != math.Trunc(value) || value < GumPink || value > GumYellow {
		return Evaluation{}, ErrInvalidGumColor
	}

	code := int(value)
	if code == GumPink {
		return Evaluation{
			MetricType: MetricGumColor,
			Status:     StatusNormal,
			Message:    "gums are pink",
		}, nil
	}

	names := map[int]string{
		GumPale:   "pale",
		GumBlue:   "blue/purple",
		GumYellow: "yellow",
	}
	return Evaluation{
		MetricType:     MetricGumColor,
		Status:         StatusCritical,
		Message:        fmt.Sprintf("gums are %s", names[code]),
		Recommendation: "Abnormal gum color is an emergency sign: seek veterinary care now.",
	}, nil
}
