package vitals

import (
	"strings"
	"time"
)

type MetricType string

const (
	MetricTemperature   MetricType = "temperature"
	MetricHeartRate     MetricType = "heart_rate"
	MetricRespiration   MetricType = "respiration"
	MetricGumColor      MetricType = "gum_color"
	MetricWeight        MetricType = "weight"
	MetricBloodPressure MetricType = "blood_pressure"
)

// MetricUnits unidades de display por métrica.
var MetricUnits = map[MetricType]string{
	MetricTemperature:   "°C",
	MetricHeartRate:     "bpm",
	MetricRespiration:   "rpm",
	MetricGumColor:      "code",
	MetricWeight:        "kg",
	MetricBloodPressure: "mmHg",
}

// Species define las especies que distinguen rangos de referencia.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// ParseSpecies normaliza el texto libre de especie; lo desconocido cae en "other".
func ParseSpecies(s string) Species {
	switch Species(strings.ToLower(strings.TrimSpace(s))) {
	case SpeciesDog:
		return SpeciesDog
	case SpeciesCat:
		return SpeciesCat
	default:
		return SpeciesOther
	}
}

type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Severity ordena los estados (normal < warning < critical).
func (s Status) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Códigos de color de encías.
const (
	GumPink   = 1
	GumPale   = 2
	GumBlue   = 3
	GumYellow = 4
)

// Reading es una lectura puntual de un parámetro vital.
type Reading struct {
	MetricType MetricType `json:"metric_type"`
	Value      float64    `json:"value"`
	RecordedAt time.Time  `json:"recorded_at"`
	Species    Species    `json:"pet_species"`
}
