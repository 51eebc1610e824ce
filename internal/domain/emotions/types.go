package emotions

import (
	"strings"
	"time"
)

// Emotion es el vocabulario canónico; las variantes por idioma se traducen en el borde (Canonical).
type Emotion string

const (
	Happy        Emotion = "happy"
	Calm         Emotion = "calm"
	Anxious      Emotion = "anxious"
	Excited      Emotion = "excited"
	Sad          Emotion = "sad"
	Aggressive   Emotion = "aggressive"
	Playful      Emotion = "playful"
	Relaxed      Emotion = "relaxed"
	Affectionate Emotion = "affectionate"
	Scared       Emotion = "scared"
	Depressed    Emotion = "depressed"
)

// Analysis es el resultado de un análisis de comportamiento (texto, audio o video).
type Analysis struct {
	CreatedAt         time.Time           `json:"created_at"`
	PrimaryEmotion    Emotion             `json:"primary_emotion"`
	PrimaryConfidence float64             `json:"primary_confidence"`
	SecondaryEmotions map[Emotion]float64 `json:"secondary_emotions,omitempty"`
}

var localeVariants = map[string]Emotion{
	// it
	"felice":     Happy,
	"contento":   Happy,
	"calmo":      Calm,
	"tranquillo": Calm,
	"ansioso":    Anxious,
	"eccitato":   Excited,
	"triste":     Sad,
	"aggressivo": Aggressive,
	"giocoso":    Playful,
	"rilassato":  Relaxed,
	"affettuoso": Affectionate,
	"spaventato": Scared,
	"depresso":   Depressed,
	// es
	"feliz":      Happy,
	"tranquilo":  Calm,
	"calmado":    Calm,
	"emocionado": Excited,
	"agresivo":   Aggressive,
	"juguetón":   Playful,
	"jugueton":   Playful,
	"relajado":   Relaxed,
	"cariñoso":   Affectionate,
	"asustado":   Scared,
	"deprimido":  Depressed,
}

// Canonical traduce una etiqueta (canónica o variante de idioma) al enum.
// ok=false si no pertenece al vocabulario.
func Canonical(label string) (Emotion, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return "", false
	}
	switch e := Emotion(s); e {
	case Happy, Calm, Anxious, Excited, Sad, Aggressive, Playful, Relaxed, Affectionate, Scared, Depressed:
		return e, true
	}
	e, ok := localeVariants[s]
	return e, ok
}
