package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
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

// insertAndBump ejecuta el INSERT y sube la versión de series en la misma transacción.
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
		INSERT INTO pet_series_versions (pet_id, version) VALUES ($1, 1)
		ON CONFLICT (pet_id) DO UPDATE SET version = pet_series_versions.version + 1
	`, petID); err != nil {
		return fmt.Errorf("bump series version: %w", err)
	}
	return tx.Commit()
}

// listQuery arma SELECT ... WHERE pet_id AND rango, más recientes primero.
func listQuery(columns, table, timeCol, petID string, f records.ListFilter) (string, []any) {
	sb := strings.Builder{}
	sb.WriteString("SELECT " + columns + " FROM " + table + " WHERE pet_id = $1")

	args := []any{petID}
	argN := 2

	if f.From != nil {
		sb.WriteString(fmt.Sprintf(" AND %s >= $%d", timeCol, argN))
		args = append(args, *f.From)
		argN++
	}
	if f.To != nil {
		sb.WriteString(fmt.Sprintf(" AND %s <= $%d", timeCol, argN))
		args = append(args, *f.To)
		argN++
	}

	sb.WriteString(" ORDER BY " + timeCol + " DESC, created_at DESC")
	if f.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, f.Limit)
	}
	return sb.String(), args
}

// --- vitals ---

func (r *RecordsRepo) CreateVital(ctx context.Context, v records.Vital) error {
	return r.insertAndBump(ctx, v.PetID, `
		INSERT INTO pet_vitals (
			id, pet_id,
			metric_type, value, species,
			recorded_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		v.ID,
		v.PetID,
		string(v.Reading.MetricType),
		v.Reading.Value,
		string(v.Reading.Species),
		v.Reading.RecordedAt,
		v.CreatedAt,
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
		var metric, species string
		if err := rows.Scan(&v.ID, &v.PetID, &metric, &v.Reading.Value, &species, &v.Reading.RecordedAt, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.Reading.MetricType = vitals.MetricType(metric)
		v.Reading.Species = vitals.Species(species)
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
	tags, err := json.Marshal(nonNilTags(d.Entry.BehavioralTags))
	if err != nil {
		return err
	}

	return r.insertAndBump(ctx, d.PetID, `
		INSERT INTO pet_diary (
			id, pet_id,
			entry_date, mood_score,
			behavioral_tags, weather_condition,
			notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		d.ID,
		d.PetID,
		d.Entry.EntryDate,
		toNullFloat(d.Entry.MoodScore),
		string(tags),
		d.Entry.WeatherCondition,
		d.Notes,
		d.CreatedAt,
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
		var tags []byte
		if err := rows.Scan(&d.ID, &d.PetID, &d.Entry.EntryDate, &mood, &tags, &d.Entry.WeatherCondition, &d.Notes, &d.CreatedAt); err != nil {
			return nil, err
		}
		if mood.Valid {
			m := mood.Float64
			d.Entry.MoodScore = &m
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &d.Entry.BehavioralTags); err != nil {
				return nil, fmt.Errorf("decode behavioral_tags: %w", err)
			}
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
	sec, err := json.Marshal(nonNilSecondary(a.Analysis.SecondaryEmotions))
	if err != nil {
		return err
	}

	return r.insertAndBump(ctx, a.PetID, `
		INSERT INTO pet_analyses (
			id, pet_id,
			kind, text,
			primary_emotion, confidence, secondary_emotions,
			analyzed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.PetID,
		string(a.Kind),
		a.Text,
		string(a.Analysis.PrimaryEmotion),
		a.Analysis.PrimaryConfidence,
		string(sec),
		a.Analysis.CreatedAt,
		a.CreatedAt,
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
		var kind, primary string
		var sec []byte
		if err := rows.Scan(&a.ID, &a.PetID, &kind, &a.Text, &primary, &a.Analysis.PrimaryConfidence, &sec, &a.Analysis.CreatedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = records.AnalysisKind(kind)
		a.Analysis.PrimaryEmotion = emotions.Emotion(primary)
		if len(sec) > 0 {
			if err := json.Unmarshal(sec, &a.Analysis.SecondaryEmotions); err != nil {
				return nil, fmt.Errorf("decode secondary_emotions: %w", err)
			}
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
	return r.insertAndBump(ctx, m.PetID, `
		INSERT INTO pet_medications (
			id, pet_id,
			name, dosage, dose_unit, frequency,
			start_date, end_date, is_active,
			notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		m.ID,
		m.PetID,
		m.Name,
		m.Dosage,
		m.DoseUnit,
		m.Frequency,
		m.Span.StartDate,
		toNullDate(m.Span.EndDate),
		m.Span.IsActive,
		m.Notes,
		m.CreatedAt,
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
		var end sql.NullTime
		if err := rows.Scan(&m.ID, &m.PetID, &m.Name, &m.Dosage, &m.DoseUnit, &m.Frequency, &m.Span.StartDate, &end, &m.Span.IsActive, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		if end.Valid {
			t := end.Time
			m.Span.EndDate = &t
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
	err := r.db.QueryRowContext(ctx, `SELECT version FROM pet_series_versions WHERE pet_id = $1`, petID).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilSecondary(m map[emotions.Emotion]float64) map[emotions.Emotion]float64 {
	if m == nil {
		return map[emotions.Emotion]float64{}
	}
	return m
}
