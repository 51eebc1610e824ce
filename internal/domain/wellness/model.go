package wellness

import (
	"time"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/periods"
	"pet-wellness/internal/domain/vitals"
)

// DiaryEntry: MoodScore nil = sin registro de ánimo (no cuenta como cero).
type DiaryEntry struct {
	EntryDate        time.Time `json:"entry_date"`
	MoodScore        *float64  `json:"mood_score,omitempty"`
	BehavioralTags   []string  `json:"behavioral_tags,omitempty"`
	WeatherCondition string    `json:"weather_condition,omitempty"`
}

// MedicationSpan: EndDate nil = tratamiento en curso.
type MedicationSpan struct {
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Series agrupa las cuatro series de entrada ya cargadas en memoria.
type Series struct {
	Vitals      []vitals.Reading    `json:"vitals"`
	Diary       []DiaryEntry        `json:"diary"`
	Analyses    []emotions.Analysis `json:"analyses"`
	Medications []MedicationSpan    `json:"medications"`
}

// Earliest devuelve el timestamp más antiguo de todas las series (cero si no hay datos).
func (s Series) Earliest() time.Time {
	var out time.Time
	consider := func(t time.Time) {
		if t.IsZero() {
			return
		}
		if out.IsZero() || t.Before(out) {
			out = t
		}
	}
	for _, v := range s.Vitals {
		consider(v.RecordedAt)
	}
	for _, d := range s.Diary {
		consider(d.EntryDate)
	}
	for _, a := range s.Analyses {
		consider(a.CreatedAt)
	}
	for _, m := range s.Medications {
		consider(m.StartDate)
	}
	return out
}

type Source string

const (
	SourceVitals     Source = "vitals"
	SourceMood       Source = "mood"
	SourceEmotion    Source = "emotion"
	SourceMedication Source = "medication"
)

// Contribution es un delta con signo atribuible a una fuente dentro de una ventana.
// Con SampleCount == 0 no influye en el score.
type Contribution struct {
	Source      Source  `json:"source"`
	Score       float64 `json:"score"`
	SampleCount int     `json:"sample_count"`
}

type Score struct {
	Window  periods.Window `json:"window"`
	Value   float64        `json:"value"`
	HasData bool           `json:"has_data"`
}

type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

type Trend struct {
	Direction     Direction `json:"direction"`
	Magnitude     float64   `json:"magnitude"`
	ProjectedNext float64   `json:"projected_next"`
}
