package wellness

import (
	"math"
	"testing"
	"time"

	"pet-wellness/internal/domain/vitals"
)

func TestScoreWindow_SingleMoodEntryOf8(t *testing.T) {
	agg := NewAggregator(DefaultWeights())
	eng := NewEngine(DefaultWeights())

	s := Series{Diary: []DiaryEntry{{EntryDate: day(2024, 6, 12), MoodScore: ptr(8.0)}}}
	sc := eng.WindowScore(testWindow, agg.Aggregate(testWindow, s, vitals.SpeciesDog))

	if !approx(sc.Value, 80) || !sc.HasData {
		t.Fatalf("got %+v want 80 with data", sc)
	}
}

func TestScoreWindow_ZeroSamplesIsBaseline(t *testing.T) {
	eng := NewEngine(DefaultWeights())

	got := eng.ScoreWindow([]Contribution{
		{Source: SourceVitals, Score: -25, SampleCount: 0},
		{Source: SourceMood, Score: 40, SampleCount: 0},
	})
	if got != 50 {
		t.Fatalf("got %v want 50", got)
	}
	if got := eng.ScoreWindow(nil); got != 50 {
		t.Fatalf("nil contributions: got %v want 50", got)
	}

	sc := eng.WindowScore(testWindow, nil)
	if sc.HasData {
		t.Fatalf("expected HasData=false")
	}
}

func TestScoreWindow_Clamped(t *testing.T) {
	eng := NewEngine(DefaultWeights())

	hi := eng.ScoreWindow([]Contribution{{Source: SourceMood, Score: 50, SampleCount: 1}, {Source: SourceEmotion, Score: 15, SampleCount: 1}})
	if hi != 100 {
		t.Fatalf("hi=%v want 100", hi)
	}
	lo := eng.ScoreWindow([]Contribution{{Source: SourceVitals, Score: -85, SampleCount: 3}})
	if lo != 0 {
		t.Fatalf("lo=%v want 0", lo)
	}
}

func TestScoreWindow_Monotonic(t *testing.T) {
	eng := NewEngine(DefaultWeights())

	base := []Contribution{
		{Source: SourceVitals, Score: -10, SampleCount: 1},
		{Source: SourceMood, Score: 0, SampleCount: 1},
		{Source: SourceEmotion, Score: 5, SampleCount: 1},
	}

	prev := -1.0
	for delta := -60.0; delta <= 60; delta += 2.5 {
		cs := append([]Contribution(nil), base...)
		cs[1].Score = delta
		got := eng.ScoreWindow(cs)
		if got < 0 || got > 100 {
			t.Fatalf("out of range: %v", got)
		}
		if got < prev {
			t.Fatalf("not monotonic at delta=%v: %v < %v", delta, got, prev)
		}
		prev = got
	}
}

func TestScoreCurrent_InsufficientData(t *testing.T) {
	eng := NewEngine(DefaultWeights())

	cur := eng.ScoreCurrent(CurrentInput{
		History: []Score{{Value: 50}},
		Now:     day(2024, 6, 14),
	})
	if cur.HasData || cur.Factors != 0 || cur.Score != 0 {
		t.Fatalf("expected insufficient-data sentinel, got %+v", cur)
	}
}

func TestScoreCurrent_AveragesFactors(t *testing.T) {
	eng := NewEngine(DefaultWeights())
	now := day(2024, 6, 14)

	cur := eng.ScoreCurrent(CurrentInput{
		History: []Score{{Value: 80, HasData: true}, {Value: 50}},
		Vitals: []vitals.Reading{
			{MetricType: vitals.MetricTemperature, Value: 38.5, RecordedAt: day(2024, 6, 10)},
			{MetricType: vitals.MetricTemperature, Value: 41, RecordedAt: day(2024, 6, 12)},
			{MetricType: vitals.MetricHeartRate, Value: 180, RecordedAt: day(2024, 6, 13)},
			{MetricType: vitals.MetricTemperature, Value: 38.5, RecordedAt: day(2024, 4, 1)},
		},
		Diary: []DiaryEntry{
			{EntryDate: day(2024, 6, 1), MoodScore: ptr(8.0)},
			{EntryDate: day(2024, 6, 2), MoodScore: ptr(6.0)},
			{EntryDate: day(2024, 6, 3)},
		},
		Species: vitals.SpeciesDog,
		Now:     now,
	})

	if cur.Factors != 3 || !cur.HasData {
		t.Fatalf("factors=%d has_data=%v", cur.Factors, cur.HasData)
	}
	// monitoreo: 50 + 3*5 - 20 (crítico) - 5 (warning)
	if cur.History == nil || !approx(*cur.History, 80) {
		t.Fatalf("history=%v", cur.History)
	}
	if cur.Monitoring == nil || !approx(*cur.Monitoring, 40) {
		t.Fatalf("monitoring=%v", cur.Monitoring)
	}
	if cur.Mood == nil || !approx(*cur.Mood, 70) {
		t.Fatalf("mood=%v", cur.Mood)
	}
	if !approx(cur.Score, (80.0+40.0+70.0)/3) {
		t.Fatalf("score=%v", cur.Score)
	}
}

func TestScoreCurrent_MonitoringOnlyOldReadings(t *testing.T) {
	eng := NewEngine(DefaultWeights())

	cur := eng.ScoreCurrent(CurrentInput{
		Vitals: []vitals.Reading{
			{MetricType: vitals.MetricWeight, Value: 20, RecordedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Species: vitals.SpeciesDog,
		Now:     day(2024, 6, 14),
	})
	if cur.Factors != 1 || !approx(cur.Score, 50) {
		t.Fatalf("unexpected %+v", cur)
	}
}

func TestScoreCurrent_CriticalReadingNeverRaisesScore(t *testing.T) {
	eng := NewEngine(DefaultWeights())
	now := day(2024, 6, 14)

	normal := func(d int) vitals.Reading {
		return vitals.Reading{MetricType: vitals.MetricTemperature, Value: 38.5, RecordedAt: day(2024, 6, d)}
	}
	critical := func(d int) vitals.Reading {
		return vitals.Reading{MetricType: vitals.MetricTemperature, Value: 41.5, RecordedAt: day(2024, 6, d)}
	}
	// fuera del span de 30 días
	old := vitals.Reading{MetricType: vitals.MetricTemperature, Value: 38.5, RecordedAt: day(2024, 3, 1)}
	moods := func(vs ...float64) []DiaryEntry {
		out := make([]DiaryEntry, 0, len(vs))
		for i, v := range vs {
			out = append(out, DiaryEntry{EntryDate: day(2024, 6, i+1), MoodScore: ptr(v)})
		}
		return out
	}

	cases := []struct {
		name string
		in   CurrentInput
	}{
		{"low history without vitals", CurrentInput{History: []Score{{Value: 20, HasData: true}}}},
		{"low mood without vitals", CurrentInput{Diary: moods(2, 3)}},
		{"high history and mood", CurrentInput{History: []Score{{Value: 90, HasData: true}}, Diary: moods(9)}},
		{"mood with normal readings", CurrentInput{Diary: moods(3), Vitals: []vitals.Reading{normal(10), normal(11), normal(12)}}},
		{"already critical", CurrentInput{History: []Score{{Value: 60, HasData: true}}, Vitals: []vitals.Reading{critical(5), normal(6)}}},
		{"only old readings", CurrentInput{History: []Score{{Value: 10, HasData: true}}, Vitals: []vitals.Reading{old}}},
		{"monitoring only", CurrentInput{Vitals: []vitals.Reading{normal(10), normal(11)}}},
		{"monitoring floor", CurrentInput{Vitals: []vitals.Reading{critical(8), critical(9), critical(10)}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			in.Species = vitals.SpeciesDog
			in.Now = now

			prev := eng.ScoreCurrent(in)
			if !prev.HasData {
				t.Fatalf("baseline should carry data: %+v", prev)
			}
			for i := 0; i < 4; i++ {
				in.Vitals = append(append([]vitals.Reading{}, in.Vitals...), critical(13-i))
				got := eng.ScoreCurrent(in)
				if got.Score > prev.Score+1e-9 {
					t.Fatalf("critical #%d raised score %.4f -> %.4f (%+v)", i+1, prev.Score, got.Score, got)
				}
				prev = got
			}
		})
	}
}

func TestScoreCurrent_CriticalCapKeepsFactors(t *testing.T) {
	eng := NewEngine(DefaultWeights())

	cur := eng.ScoreCurrent(CurrentInput{
		History: []Score{{Value: 20, HasData: true}},
		Vitals: []vitals.Reading{
			{MetricType: vitals.MetricTemperature, Value: 41.5, RecordedAt: day(2024, 6, 13)},
		},
		Species: vitals.SpeciesDog,
		Now:     day(2024, 6, 14),
	})
	// monitoreo 50 + 5 - 20 = 35 sigue reportado, pero el score no pasa de 20
	if cur.Factors != 2 || cur.Monitoring == nil || !approx(*cur.Monitoring, 35) {
		t.Fatalf("unexpected factors %+v", cur)
	}
	if !approx(cur.Score, 20) {
		t.Fatalf("score=%v want 20", cur.Score)
	}
}

func TestScoreCurrent_IgnoresNaNMood(t *testing.T) {
	eng := NewEngine(DefaultWeights())

	cur := eng.ScoreCurrent(CurrentInput{
		Diary: []DiaryEntry{{EntryDate: day(2024, 6, 1), MoodScore: ptr(math.NaN())}},
		Now:   day(2024, 6, 14),
	})
	if cur.Mood != nil || cur.HasData || cur.Score != 0 {
		t.Fatalf("NaN mood should not count as data: %+v", cur)
	}

	cur = eng.ScoreCurrent(CurrentInput{
		Diary: []DiaryEntry{
			{EntryDate: day(2024, 6, 1), MoodScore: ptr(math.NaN())},
			{EntryDate: day(2024, 6, 2), MoodScore: ptr(7.0)},
		},
		Now: day(2024, 6, 14),
	})
	if cur.Mood == nil || !approx(*cur.Mood, 70) || math.IsNaN(cur.Score) {
		t.Fatalf("unexpected mood factor %+v", cur)
	}
}
