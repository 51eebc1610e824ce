package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/records"
	"pet-wellness/internal/domain/vitals"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

var _ records.Repository = (*RecordsRepo)(nil)

func (r *RecordsRepo) insertAndBump(ctx context.Context, petID, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pet_series_versions (pet_id, version) VALUES (?, 1)
		ON CONFLICT(pet_id) DO UPDATE SET version = version + 1
	`, petID); err != nil {
		return fmt.Errorf("bump series version: %w", err)
	}
	return tx.Commit()
}

func listQuery(columns, table, timeCol, petID string, f records.ListFilter) (string, []any) {
	sb := strings.Builder{}
	sb.WriteString("SELECT " + columns + " FROM " + table + " WHERE pet_id = ?")

	args := []any{petID}
	if f.From != nil {
		sb.WriteString(" AND " + timeCol + " >= ?")
		args = append(args, formatTS(*f.From))
	}
	if f.To != nil {
		sb.WriteString(" AND " + timeCol + " <= ?")
		args = append(args, formatTS(*f.To))
	}

	sb.WriteString(" ORDER BY " + timeCol + " DESC, created_at DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return sb.String(), args
}

// --- vitals ---

func (r *RecordsRepo) CreateVital(ctx context.Context, v records.Vital) error {
	return r.insertAndBump(ctx, v.PetID, `
		INSERT INTO pet_vitals (id, pet_id, metric_type, value, species, recorded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		v.ID,
		v.PetID,
		string(v.Reading.MetricType),
		v.Reading.Value,
		string(v.Reading.Species),
		formatTS(v.Reading.RecordedAt),
		formatTS(v.CreatedAt),
	)
}

func (r *RecordsRepo) ListVitals(ctx context.Context, petID string, f records.ListFilter) ([]records.Vital, error) {
	q, args := listQuery("id, pet_id, metric_type, value, species, recorded_at, created_at", "pet_vitals", "recorded_at", petID, f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Vital, 0)
	for rows.Next() {
		var v records.Vital
		var metric, species, recordedAt, createdAt string
		if err := rows.Scan(&v.ID, &v.PetID, &metric, &v.Reading.Value, &species, &recordedAt, &createdAt); err != nil {
			return nil, err
		}
		v.Reading.MetricType = vitals.MetricType(metric)
		v.Reading.Species = vitals.Species(species)
		if v.Reading.RecordedAt, err = parseTS(recordedAt); err != nil {
			return nil, fmt.Errorf("pet_vitals.recorded_at: %w", err)
		}
		if v.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, fmt.Errorf("pet_vitals.created_at: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(out)
	return out, nil
}

// --- diary ---

func (r *RecordsRepo) CreateDiaryEntry(ctx context.Context, d records.DiaryEntry) error {
	tags := d.Entry.BehavioralTags
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	var mood any
	if d.Entry.MoodScore != nil {
		mood = *d.Entry.MoodScore
	}

	return r.insertAndBump(ctx, d.PetID, `
		INSERT INTO pet_diary (id, pet_id, entry_date, mood_score, behavioral_tags, weather_condition, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		d.PetID,
		formatTS(d.Entry.EntryDate),
		mood,
		string(raw),
		d.Entry.WeatherCondition,
		d.Notes,
		formatTS(d.CreatedAt),
	)
}

func (r *RecordsRepo) ListDiary(ctx context.Context, petID string, f records.ListFilter) ([]records.DiaryEntry, error) {
	q, args := listQuery("id, pet_id, entry_date, mood_score, behavioral_tags, weather_condition, notes, created_at", "pet_diary", "entry_date", petID, f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.DiaryEntry, 0)
	for rows.Next() {
		var d records.DiaryEntry
		var mood sql.NullFloat64
		var entryDate, tags, createdAt string
		if err := rows.Scan(&d.ID, &d.PetID, &entryDate, &mood, &tags, &d.Entry.WeatherCondition, &d.Notes, &createdAt); err != nil {
			return nil, err
		}
		if mood.Valid {
			m := mood.Float64
			d.Entry.MoodScore = &m
		}
		if tags != "" {
			if err := json.Unmarshal([]byte(tags), &d.Entry.BehavioralTags); err != nil {
				return nil, fmt.Errorf("decode behavioral_tags: %w", err)
			}
		}
		if d.Entry.EntryDate, err = parseTS(entryDate); err != nil {
			return nil, fmt.Errorf("pet_diary.entry_date: %w", err)
		}
		if d.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, fmt.Errorf("pet_diary.created_at: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(out)
	return out, nil
}

// --- analyses ---

func (r *RecordsRepo) CreateAnalysis(ctx context.Context, a records.Analysis) error {
	sec := a.Analysis.SecondaryEmotions
	if sec == nil {
		sec = map[emotions.Emotion]float64{}
	}
	raw, err := json.Marshal(sec)
	if err != nil {
		return err
	}

	return r.insertAndBump(ctx, a.PetID, `
		INSERT INTO pet_analyses (id, pet_id, kind, text, primary_emotion, confidence, secondary_emotions, analyzed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.PetID,
		string(a.Kind),
		a.Text,
		string(a.Analysis.PrimaryEmotion),
		a.Analysis.PrimaryConfidence,
		string(raw),
		formatTS(a.Analysis.CreatedAt),
		formatTS(a.CreatedAt),
	)
}

func (r *RecordsRepo) ListAnalyses(ctx context.Context, petID string, f records.ListFilter) ([]records.Analysis, error) {
	q, args := listQuery("id, pet_id, kind, text, primary_emotion, confidence, secondary_emotions, analyzed_at, created_at", "pet_analyses", "analyzed_at", petID, f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Analysis, 0)
	for rows.Next() {
		var a records.Analysis
		var kind, primary, sec, analyzedAt, createdAt string
		if err := rows.Scan(&a.ID, &a.PetID, &kind, &a.Text, &primary, &a.Analysis.PrimaryConfidence, &sec, &analyzedAt, &createdAt); err != nil {
			return nil, err
		}
		a.Kind = records.AnalysisKind(kind)
		a.Analysis.PrimaryEmotion = emotions.Emotion(primary)
		if sec != "" && sec != "{}" {
			if err := json.Unmarshal([]byte(sec), &a.Analysis.SecondaryEmotions); err != nil {
				return nil, fmt.Errorf("decode secondary_emotions: %w", err)
			}
		}
		if a.Analysis.CreatedAt, err = parseTS(analyzedAt); err != nil {
			return nil, fmt.Errorf("pet_analyses.analyzed_at: %w", err)
		}
		if a.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, fmt.Errorf("pet_analyses.created_at: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(out)
	return out, nil
}

// --- medications ---

func (r *RecordsRepo) CreateMedication(ctx context.Context, m records.Medication) error {
	var end any
	if m.Span.EndDate != nil {
		end = formatTS(*m.Span.EndDate)
	}

	return r.insertAndBump(ctx, m.PetID, `
		INSERT INTO pet_medications (id, pet_id, name, dosage, dose_unit, frequency, start_date, end_date, is_active, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID,
		m.PetID,
		m.Name,
		m.Dosage,
		m.DoseUnit,
		m.Frequency,
		formatTS(m.Span.StartDate),
		end,
		m.Span.IsActive,
		m.Notes,
		formatTS(m.CreatedAt),
	)
}

func (r *RecordsRepo) ListMedications(ctx context.Context, petID string, f records.ListFilter) ([]records.Medication, error) {
	q, args := listQuery("id, pet_id, name, dosage, dose_unit, frequency, start_date, end_date, is_active, notes, created_at", "pet_medications", "start_date", petID, f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Medication, 0)
	for rows.Next() {
		var m records.Medication
		var start, createdAt string
		var end sql.NullString
		if err := rows.Scan(&m.ID, &m.PetID, &m.Name, &m.Dosage, &m.DoseUnit, &m.Frequency, &start, &end, &m.Span.IsActive, &m.Notes, &createdAt); err != nil {
			return nil, err
		}
		if m.Span.StartDate, err = parseTS(start); err != nil {
			return nil, fmt.Errorf("pet_medications.start_date: %w", err)
		}
		if end.Valid {
			t, err := parseTS(end.String)
			if err != nil {
				return nil, fmt.Errorf("pet_medications.end_date: %w", err)
			}
			m.Span.EndDate = &t
		}
		if m.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, fmt.Errorf("pet_medications.created_at: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(out)
	return out, nil
}

func (r *RecordsRepo) SeriesVersion(ctx context.Context, petID string) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM pet_series_versions WHERE pet_id = ?`, petID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}
