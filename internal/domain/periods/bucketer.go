package periods

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRange       = errors.New("invalid range: end before start")
	ErrUnknownGranularity = errors.New("unknown granularity")
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
	All   Granularity = "all"
)

// Cantidad fija de ventanas por granularidad.
const (
	DayWindows   = 7
	WeekWindows  = 8
	MonthWindows = 6
	YearWindows  = 3

	MinAllWindows = 6
	MaxAllWindows = 24
)

// ParseGranularity acepta day|week|month|year|all (vacío = week).
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Week, nil
	case Day, Week, Month, Year, All:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Window es un intervalo semiabierto [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Contains indica si t cae en [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Range: To es el ancla ("ahora" del request). Para All, From es el registro más antiguo;
// cero significa sin datos.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) Validate() error {
	if !r.From.IsZero() && r.To.Before(r.From) {
		return ErrInvalidRange
	}
	return nil
}

// Bucket produce ventanas contiguas, ordenadas de la más antigua a la más nueva,
// en la zona horaria de r.To. Nunca devuelve una secuencia vacía.
func Bucket(r Range, g Granularity) ([]Window, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	anchor := r.To
	if anchor.IsZero() {
		anchor = time.Now()
	}

	switch g {
	case Day:
		return Days(anchor, DayWindows), nil
	case Week:
		return weeks(anchor, WeekWindows), nil
	case Month:
		return months(anchor, MonthWindows), nil
	case Year:
		return years(anchor, YearWindows), nil
	case All:
		return allTime(r.From, anchor), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
	}
}

// Days devuelve n ventanas diarias terminando en el día de anchor.
func Days(anchor time.Time, n int) []Window {
	last := startOfDay(anchor)
	out := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := last.AddDate(0, 0, -i)
		out = append(out, Window{
			Start: start,
			End:   start.AddDate(0, 0, 1),
			Label: start.Format("Mon 2"),
		})
	}
	return out
}

func weeks(anchor time.Time, n int) []Window {
	day := startOfDay(anchor)
	// semana ISO: lunes
	offset := (int(day.Weekday()) + 6) % 7
	last := day.AddDate(0, 0, -offset)

	out := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := last.AddDate(0, 0, -7*i)
		end := start.AddDate(0, 0, 7)
		out = append(out, Window{
			Start: start,
			End:   end,
			Label: weekLabel(start, end.AddDate(0, 0, -1)),
		})
	}
	return out
}

func months(anchor time.Time, n int) []Window {
	last := startOfMonth(anchor)
	out := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := last.AddDate(0, -i, 0)
		out = append(out, Window{
			Start: start,
			End:   start.AddDate(0, 1, 0),
			Label: start.Format("Jan"),
		})
	}
	return out
}

func years(anchor time.Time, n int) []Window {
	last := time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, anchor.Location())
	out := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := last.AddDate(-i, 0, 0)
		out = append(out, Window{
			Start: start,
			End:   start.AddDate(1, 0, 0),
			Label: start.Format("2006"),
		})
	}
	return out
}

// allTime: ventanas mensuales desde el primer registro; si el span supera
// MaxAllWindows meses, se agrupan varios meses por ventana.
func allTime(earliest, anchor time.Time) []Window {
	last := startOfMonth(anchor)

	span := MinAllWindows
	if !earliest.IsZero() {
		first := startOfMonth(earliest.In(anchor.Location()))
		span = monthsBetween(first, last) + 1
		if span < MinAllWindows {
			span = MinAllWindows
		}
	}

	size := 1
	if span > MaxAllWindows {
		size = (span + MaxAllWindows - 1) / MaxAllWindows
	}
	count := (span + size - 1) / size

	end := last.AddDate(0, 1, 0)
	out := make([]Window, count)
	for i := count - 1; i >= 0; i-- {
		start := end.AddDate(0, -size, 0)
		out[i] = Window{
			Start: start,
			End:   end,
			Label: monthSpanLabel(start, end.AddDate(0, -1, 0)),
		}
		end = start
	}
	return out
}

func weekLabel(first, last time.Time) string {
	if first.Month() == last.Month() {
		return fmt.Sprintf("%d-%d %s", first.Day(), last.Day(), last.Format("Jan"))
	}
	return fmt.Sprintf("%d %s-%d %s", first.Day(), first.Format("Jan"), last.Day(), last.Format("Jan"))
}

func monthSpanLabel(first, last time.Time) string {
	switch {
	case first.Equal(last):
		return first.Format("Jan 2006")
	case first.Year() == last.Year():
		return fmt.Sprintf("%s-%s", first.Format("Jan"), last.Format("Jan 2006"))
	default:
		return fmt.Sprintf("%s-%s", first.Format("Jan 2006"), last.Format("Jan 2006"))
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
