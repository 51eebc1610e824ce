package periods

import (
	"errors"
	"testing"
	"time"
)

var anchor = time.Date(2024, 6, 14, 15, 30, 0, 0, time.UTC) // viernes

func assertContiguous(t *testing.T, ws []Window) {
	t.Helper()
	if len(ws) == 0 {
		t.Fatalf("expected non-empty windows")
	}
	for i, w := range ws {
		if !w.Start.Before(w.End) {
			t.Fatalf("window %d: start %v not before end %v", i, w.Start, w.End)
		}
		if w.Label == "" {
			t.Fatalf("window %d: empty label", i)
		}
		if i > 0 && !ws[i-1].End.Equal(w.Start) {
			t.Fatalf("window %d not contiguous: prev end %v, start %v", i, ws[i-1].End, w.Start)
		}
	}
}

func TestBucket_FixedCounts(t *testing.T) {
	cases := []struct {
		g    Granularity
		want int
	}{
		{Day, 7},
		{Week, 8},
		{Month, 6},
		{Year, 3},
		{All, 6},
	}
	for _, tc := range cases {
		ws, err := Bucket(Range{To: anchor}, tc.g)
		if err != nil {
			t.Fatalf("%s: %v", tc.g, err)
		}
		if len(ws) != tc.want {
			t.Fatalf("%s: expected %d windows, got %d", tc.g, tc.want, len(ws))
		}
		assertContiguous(t, ws)
		if !ws[len(ws)-1].Contains(anchor) {
			t.Fatalf("%s: last window %v-%v should contain anchor", tc.g, ws[len(ws)-1].Start, ws[len(ws)-1].End)
		}
	}
}

func TestBucket_Day(t *testing.T) {
	ws, _ := Bucket(Range{To: anchor}, Day)
	if want := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC); !ws[0].Start.Equal(want) {
		t.Fatalf("first day start=%v want %v", ws[0].Start, want)
	}
	if ws[6].Label != "Fri 14" {
		t.Fatalf("last label=%q", ws[6].Label)
	}
}

func TestBucket_Week_LabelsAndMonday(t *testing.T) {
	ws, _ := Bucket(Range{To: anchor}, Week)

	last := ws[len(ws)-1]
	if last.Start.Weekday() != time.Monday {
		t.Fatalf("weeks must start on monday, got %s", last.Start.Weekday())
	}
	if last.Label != "10-16 Jun" {
		t.Fatalf("last week label=%q", last.Label)
	}
	if ws[5].Label != "27 May-2 Jun" {
		t.Fatalf("straddling week label=%q", ws[5].Label)
	}
	if want := time.Date(2024, 4, 22, 0, 0, 0, 0, time.UTC); !ws[0].Start.Equal(want) {
		t.Fatalf("first week start=%v want %v", ws[0].Start, want)
	}
}

func TestBucket_MonthAndYear(t *testing.T) {
	ms, _ := Bucket(Range{To: anchor}, Month)
	wantMonths := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	for i, w := range ms {
		if w.Label != wantMonths[i] {
			t.Fatalf("month %d label=%q want %q", i, w.Label, wantMonths[i])
		}
	}

	ys, _ := Bucket(Range{To: anchor}, Year)
	wantYears := []string{"2022", "2023", "2024"}
	for i, w := range ys {
		if w.Label != wantYears[i] {
			t.Fatalf("year %d label=%q want %q", i, w.Label, wantYears[i])
		}
	}
}

func TestBucket_All_EmptyDatasetFallback(t *testing.T) {
	ws, err := Bucket(Range{To: anchor}, All)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ws) != MinAllWindows {
		t.Fatalf("expected %d windows, got %d", MinAllWindows, len(ws))
	}
	assertContiguous(t, ws)
	if ws[0].Label != "Jan 2024" || ws[5].Label != "Jun 2024" {
		t.Fatalf("labels=%q..%q", ws[0].Label, ws[5].Label)
	}
}

func TestBucket_All_Adaptive(t *testing.T) {
	// 16 meses: una ventana por mes
	ws, _ := Bucket(Range{From: time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC), To: anchor}, All)
	if len(ws) != 16 {
		t.Fatalf("expected 16 windows, got %d", len(ws))
	}
	assertContiguous(t, ws)

	// span corto: se extiende a 6
	ws, _ = Bucket(Range{From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), To: anchor}, All)
	if len(ws) != 6 {
		t.Fatalf("expected 6 windows for short span, got %d", len(ws))
	}

	// 54 meses: 3 meses por ventana, 18 ventanas
	ws, _ = Bucket(Range{From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), To: anchor}, All)
	if len(ws) != 18 {
		t.Fatalf("expected 18 windows, got %d", len(ws))
	}
	assertContiguous(t, ws)
	if want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC); !ws[0].Start.Equal(want) {
		t.Fatalf("first start=%v want %v", ws[0].Start, want)
	}
	if ws[0].Label != "Jan-Mar 2020" {
		t.Fatalf("first label=%q", ws[0].Label)
	}
}

func TestBucket_All_StaysWithinBounds(t *testing.T) {
	for years := 0; years <= 30; years++ {
		from := anchor.AddDate(-years, -1, 0)
		ws, err := Bucket(Range{From: from, To: anchor}, All)
		if err != nil {
			t.Fatalf("years=%d: %v", years, err)
		}
		if len(ws) < MinAllWindows || len(ws) > MaxAllWindows {
			t.Fatalf("years=%d: %d windows out of [%d,%d]", years, len(ws), MinAllWindows, MaxAllWindows)
		}
		assertContiguous(t, ws)
		if ws[0].Start.After(from) {
			t.Fatalf("years=%d: first window %v starts after earliest record %v", years, ws[0].Start, from)
		}
	}
}

func TestBucket_RejectsInvertedRange(t *testing.T) {
	_, err := Bucket(Range{From: anchor, To: anchor.Add(-time.Hour)}, Week)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestBucket_UnknownGranularity(t *testing.T) {
	if _, err := Bucket(Range{To: anchor}, Granularity("quarter")); !errors.Is(err, ErrUnknownGranularity) {
		t.Fatalf("expected ErrUnknownGranularity, got %v", err)
	}
	if _, err := ParseGranularity("fortnight"); !errors.Is(err, ErrUnknownGranularity) {
		t.Fatalf("expected ErrUnknownGranularity, got %v", err)
	}
	if g, err := ParseGranularity(""); err != nil || g != Week {
		t.Fatalf("expected default week, got %q %v", g, err)
	}
	if g, err := ParseGranularity(" MONTH "); err != nil || g != Month {
		t.Fatalf("expected month, got %q %v", g, err)
	}
}
