package pets

import (
	"strings"
	"time"

	"pet-wellness/internal/domain/vitals"
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// ParseSex normaliza el valor (crudo o persistido); lo desconocido cae en "unknown".
func ParseSex(s string) Sex {
	switch v := Sex(strings.ToLower(strings.TrimSpace(s))); v {
	case SexMale, SexFemale:
		return v
	default:
		return SexUnknown
	}
}

// Pet es el perfil mínimo que necesita el scoring: dueño y especie.
// La especie selecciona los rangos de referencia de signos vitales.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species vitals.Species // dog, cat, other
	Breed   string
	Sex     Sex

	BirthDate *time.Time
	Microchip string

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
