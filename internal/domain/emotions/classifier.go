package emotions

import (
	"math"
	"math/rand/v2"
	"strings"
)

const (
	maxConfidence     = 0.95
	baseConfidence    = 0.65
	confidenceSpread  = 0.30
	defaultConfidence = 0.75
	maxSecondary      = 2
)

// RandomSource aísla la aleatoriedad del fallback sin hits (inyectable en tests).
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

type weightedEmotion struct {
	emotion Emotion
	weight  float64
}

// defaultPicks sesgado hacia calm: el fallback nunca devuelve "unknown".
var defaultPicks = []weightedEmotion{
	{Calm, 0.40},
	{Happy, 0.25},
	{Playful, 0.20},
	{Excited, 0.15},
}

// Result es la salida del clasificador.
type Result struct {
	PrimaryEmotion    Emotion             `json:"primary_emotion"`
	Confidence        float64             `json:"confidence"`
	SecondaryEmotions map[Emotion]float64 `json:"secondary_emotions"`

	// Hits por emoción; vacío cuando se usó el fallback.
	Hits     map[Emotion]int `json:"hits,omitempty"`
	Fallback bool            `json:"fallback"`
}

type Classifier struct {
	lexicon []lexiconEntry
	rnd     RandomSource
}

type Option func(*Classifier)

// WithRandom reemplaza la fuente aleatoria del fallback.
func WithRandom(src RandomSource) Option {
	return func(c *Classifier) {
		if src != nil {
			c.rnd = src
		}
	}
}

func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		lexicon: defaultLexicon,
		rnd:     globalSource{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify puntúa el texto contra el léxico por containment de substrings
// (sin tokenizar, favorece recall). Determinista salvo el fallback sin hits.
func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)

	hits := make(map[Emotion]int, len(c.lexicon))
	total := 0
	for _, entry := range c.lexicon {
		n := 0
		for _, word := range entry.words {
			if strings.Contains(lower, word) {
				n++
			}
		}
		if n > 0 {
			hits[entry.emotion] = n
			total += n
		}
	}

	if total == 0 {
		return Result{
			PrimaryEmotion:    c.pickDefault(),
			Confidence:        defaultConfidence,
			SecondaryEmotions: map[Emotion]float64{},
			Fallback:          true,
		}
	}

	ranked := c.rank(hits)
	primary := ranked[0]

	secondary := make(map[Emotion]float64, maxSecondary)
	for _, e := range ranked[1:] {
		if len(secondary) == maxSecondary {
			break
		}
		secondary[e] = math.Round(float64(hits[e]) / float64(total) * 100)
	}

	confidence := baseConfidence + float64(hits[primary])/float64(total)*confidenceSpread
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return Result{
		PrimaryEmotion:    primary,
		Confidence:        confidence,
		SecondaryEmotions: secondary,
		Hits:              hits,
	}
}

// rank ordena por hits desc; empates por orden del léxico.
func (c *Classifier) rank(hits map[Emotion]int) []Emotion {
	out := make([]Emotion, 0, len(hits))
	for _, entry := range c.lexicon {
		if hits[entry.emotion] == 0 {
			continue
		}
		// insertion sort estable, el léxico es chico
		i := len(out)
		out = append(out, entry.emotion)
		for i > 0 && hits[out[i-1]] < hits[out[i]] {
			out[i-1], out[i] = out[i], out[i-1]
			i--
		}
	}
	return out
}

func (c *Classifier) pickDefault() Emotion {
	r := c.rnd.Float64()
	acc := 0.0
	for _, p := range defaultPicks {
		acc += p.weight
		if r < acc {
			return p.emotion
		}
	}
	return Calm
}
