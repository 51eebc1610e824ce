package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/pets"
	"pet-wellness/internal/domain/vitals"
	"pet-wellness/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Post("/pets/{petID}/vitals", createVitalHandler(svc, petsSvc))
	r.Get("/pets/{petID}/vitals", listVitalsHandler(svc, petsSvc))

	r.Post("/pets/{petID}/diary", createDiaryHandler(svc, petsSvc))
	r.Get("/pets/{petID}/diary", listDiaryHandler(svc, petsSvc))

	r.Post("/pets/{petID}/analyses", createAnalysisHandler(svc, petsSvc))
	r.Get("/pets/{petID}/analyses", listAnalysesHandler(svc, petsSvc))

	r.Post("/pets/{petID}/medications", createMedicationHandler(svc, petsSvc))
	r.Get("/pets/{petID}/medications", listMedicationsHandler(svc, petsSvc))
}

// authorizePet resuelve claims y ownership; escribe la respuesta de error si falla.
func authorizePet(w http.ResponseWriter, r *http.Request, petsSvc *pets.Service) (pets.Pet, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return pets.Pet{}, false
	}

	p, err := petsSvc.Authorize(r.Context(), chi.URLParam(r, "petID"), userID)
	if err != nil {
		pets.WriteAccessError(w, err)
		return pets.Pet{}, false
	}
	return p, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// --- vitals ---

type createVitalRequest struct {
	MetricType vitals.MetricType `json:"metric_type" enums:"temperature,heart_rate,respiration,gum_color,weight,blood_pressure"`
	Value      *float64          `json:"value"`
	RecordedAt string            `json:"recorded_at"` // RFC3339 opcional; por defecto ahora
}

type vitalResponse struct {
	ID         string             `json:"id"`
	PetID      string             `json:"pet_id"`
	MetricType vitals.MetricType  `json:"metric_type"`
	Value      float64            `json:"value"`
	Unit       string             `json:"unit,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
	CreatedAt  time.Time          `json:"created_at"`
	Evaluation *vitals.Evaluation `json:"evaluation,omitempty"`
}

// createVitalHandler godoc
// @Summary Registrar signo vital
// @Description Guarda una lectura de signo vital y devuelve su evaluación según la especie de la mascota. Solo el dueño.
// @Tags records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body createVitalRequest true "Lectura; recorded_at en RFC3339"
// @Success 201 {object} vitalResponse
// @Failure 400 {string} string "invalid json / valor inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/vitals [post]
func createVitalHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}

		var req createVitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Value == nil {
			http.Error(w, "value is required", http.StatusBadRequest)
			return
		}

		var at time.Time
		if strings.TrimSpace(req.RecordedAt) != "" {
			t, err := time.Parse(time.RFC3339, req.RecordedAt)
			if err != nil {
				http.Error(w, "recorded_at must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		v, ev, err := svc.CreateVital(r.Context(), p.ID, VitalInput{
			MetricType: req.MetricType,
			Value:      *req.Value,
			RecordedAt: at,
			Species:    p.Species,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := toVitalResponse(v)
		resp.Evaluation = &ev
		writeJSON(w, http.StatusCreated, resp)
	}
}

// listVitalsHandler godoc
// @Summary Listar signos vitales
// @Tags records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de registros (1-500). Por defecto 100"
// @Param from query string false "Fecha mínima (RFC3339 o YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (RFC3339 o YYYY-MM-DD)"
// @Success 200 {array} vitalResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/vitals [get]
func listVitalsHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListVitals(r.Context(), p.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]vitalResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVitalResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toVitalResponse(v Vital) vitalResponse {
	return vitalResponse{
		ID:         v.ID,
		PetID:      v.PetID,
		MetricType: v.Reading.MetricType,
		Value:      v.Reading.Value,
		Unit:       vitals.MetricUnits[v.Reading.MetricType],
		RecordedAt: v.Reading.RecordedAt,
		CreatedAt:  v.CreatedAt,
	}
}

// --- diary ---

type createDiaryRequest struct {
	EntryDate        string   `json:"entry_date"` // YYYY-MM-DD
	MoodScore        *float64 `json:"mood_score"` // 1-10 opcional
	BehavioralTags   []string `json:"behavioral_tags"`
	WeatherCondition string   `json:"weather_condition"`
	Notes            string   `json:"notes"`
}

type diaryResponse struct {
	ID               string    `json:"id"`
	PetID            string    `json:"pet_id"`
	EntryDate        string    `json:"entry_date"`
	MoodScore        *float64  `json:"mood_score,omitempty"`
	BehavioralTags   []string  `json:"behavioral_tags"`
	WeatherCondition string    `json:"weather_condition,omitempty"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

// createDiaryHandler godoc
// @Summary Registrar entrada de diario
// @Description Guarda una entrada de diario con ánimo opcional (1-10). Solo el dueño.
// @Tags records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body createDiaryRequest true "Entrada; entry_date en YYYY-MM-DD"
// @Success 201 {object} diaryResponse
// @Failure 400 {string} string "invalid json / entry_date inválido / mood_score fuera de rango"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/diary [post]
func createDiaryHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}

		var req createDiaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		date, err := parseDate(req.EntryDate)
		if err != nil {
			http.Error(w, "entry_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		d, err := svc.CreateDiaryEntry(r.Context(), p.ID, DiaryInput{
			EntryDate:        date,
			MoodScore:        req.MoodScore,
			BehavioralTags:   req.BehavioralTags,
			WeatherCondition: req.WeatherCondition,
			Notes:            req.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDiaryResponse(d))
	}
}

// listDiaryHandler godoc
// @Summary Listar entradas de diario
// @Tags records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de registros (1-500). Por defecto 100"
// @Param from query string false "Fecha mínima (RFC3339 o YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (RFC3339 o YYYY-MM-DD)"
// @Success 200 {array} diaryResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/diary [get]
func listDiaryHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListDiary(r.Context(), p.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]diaryResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDiaryResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toDiaryResponse(d DiaryEntry) diaryResponse {
	tags := d.Entry.BehavioralTags
	if tags == nil {
		tags = []string{}
	}
	return diaryResponse{
		ID:               d.ID,
		PetID:            d.PetID,
		EntryDate:        d.Entry.EntryDate.Format("2006-01-02"),
		MoodScore:        d.Entry.MoodScore,
		BehavioralTags:   tags,
		WeatherCondition: d.Entry.WeatherCondition,
		Notes:            d.Notes,
		CreatedAt:        d.CreatedAt,
	}
}

// --- analyses ---

type createAnalysisRequest struct {
	Kind AnalysisKind `json:"kind" enums:"text,audio,video"`
	Text string       `json:"text"`

	PrimaryEmotion    string             `json:"primary_emotion"`
	Confidence        *float64           `json:"confidence"`
	SecondaryEmotions map[string]float64 `json:"secondary_emotions"`

	CreatedAt string `json:"created_at"` // RFC3339 opcional
}

type analysisResponse struct {
	ID                string                       `json:"id"`
	PetID             string                       `json:"pet_id"`
	Kind              AnalysisKind                 `json:"kind"`
	Text              string                       `json:"text,omitempty"`
	PrimaryEmotion    emotions.Emotion             `json:"primary_emotion"`
	Confidence        float64                      `json:"confidence"`
	SecondaryEmotions map[emotions.Emotion]float64 `json:"secondary_emotions,omitempty"`
	AnalyzedAt        time.Time                    `json:"analyzed_at"`
	CreatedAt         time.Time                    `json:"created_at"`
}

// createAnalysisHandler godoc
// @Summary Registrar análisis de comportamiento
// @Description Guarda el resultado de un análisis de comportamiento. Si no se envía primary_emotion y kind es text, el texto se clasifica con el léxico interno. Solo el dueño.
// @Tags records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body createAnalysisRequest true "Análisis; confidence en [0,1]"
// @Success 201 {object} analysisResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/analyses [post]
func createAnalysisHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}

		var req createAnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var at time.Time
		if strings.TrimSpace(req.CreatedAt) != "" {
			t, err := time.Parse(time.RFC3339, req.CreatedAt)
			if err != nil {
				http.Error(w, "created_at must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		a, err := svc.CreateAnalysis(r.Context(), p.ID, AnalysisInput{
			Kind:              req.Kind,
			Text:              req.Text,
			PrimaryEmotion:    req.PrimaryEmotion,
			Confidence:        req.Confidence,
			SecondaryEmotions: req.SecondaryEmotions,
			CreatedAt:         at,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAnalysisResponse(a))
	}
}

// listAnalysesHandler godoc
// @Summary Listar análisis de comportamiento
// @Tags records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de registros (1-500). Por defecto 100"
// @Param from query string false "Fecha mínima (RFC3339 o YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (RFC3339 o YYYY-MM-DD)"
// @Success 200 {array} analysisResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/analyses [get]
func listAnalysesHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListAnalyses(r.Context(), p.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]analysisResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnalysisResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toAnalysisResponse(a Analysis) analysisResponse {
	return analysisResponse{
		ID:                a.ID,
		PetID:             a.PetID,
		Kind:              a.Kind,
		Text:              a.Text,
		PrimaryEmotion:    a.Analysis.PrimaryEmotion,
		Confidence:        a.Analysis.PrimaryConfidence,
		SecondaryEmotions: a.Analysis.SecondaryEmotions,
		AnalyzedAt:        a.Analysis.CreatedAt,
		CreatedAt:         a.CreatedAt,
	}
}

// --- medications ---

type createMedicationRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	DoseUnit  string `json:"dose_unit"`
	Frequency string `json:"frequency"`
	StartDate string `json:"start_date"`          // YYYY-MM-DD
	EndDate   string `json:"end_date"`            // YYYY-MM-DD opcional
	IsActive  *bool  `json:"is_active,omitempty"` // por defecto: sin end_date
	Notes     string `json:"notes"`
}

type medicationResponse struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage,omitempty"`
	DoseUnit  string    `json:"dose_unit,omitempty"`
	Frequency string    `json:"frequency,omitempty"`
	StartDate string    `json:"start_date"`
	EndDate   *string   `json:"end_date,omitempty"`
	IsActive  bool      `json:"is_active"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// createMedicationHandler godoc
// @Summary Registrar tratamiento
// @Description Guarda un tratamiento con fecha de inicio y fin opcional. Solo el dueño.
// @Tags records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body createMedicationRequest true "Tratamiento; fechas en YYYY-MM-DD"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / fechas inválidas / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/medications [post]
func createMedicationHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		var end *time.Time
		if strings.TrimSpace(req.EndDate) != "" {
			t, err := parseDate(req.EndDate)
			if err != nil {
				http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			end = &t
		}

		m, err := svc.CreateMedication(r.Context(), p.ID, MedicationInput{
			Name:      req.Name,
			Dosage:    req.Dosage,
			DoseUnit:  req.DoseUnit,
			Frequency: req.Frequency,
			StartDate: start,
			EndDate:   end,
			IsActive:  req.IsActive,
			Notes:     req.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar tratamientos
// @Tags records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de registros (1-500). Por defecto 100"
// @Param from query string false "Fecha mínima de inicio (RFC3339 o YYYY-MM-DD)"
// @Param to query string false "Fecha máxima de inicio (RFC3339 o YYYY-MM-DD)"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/medications [get]
func listMedicationsHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePet(w, r, petsSvc)
		if !ok {
			return
		}
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListMedications(r.Context(), p.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	resp := medicationResponse{
		ID:        m.ID,
		PetID:     m.PetID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		DoseUnit:  m.DoseUnit,
		Frequency: m.Frequency,
		StartDate: m.Span.StartDate.Format("2006-01-02"),
		IsActive:  m.Span.IsActive,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
	if m.Span.EndDate != nil {
		s := m.Span.EndDate.Format("2006-01-02")
		resp.EndDate = &s
	}
	return resp
}

// --- helpers ---

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339 or YYYY-MM-DD")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339 or YYYY-MM-DD")
		}
		filter.To = &t
	}

	return filter, nil
}

// parseDate acepta YYYY-MM-DD (UTC) o RFC3339.
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// writeJSON duplicado por módulo, igual que en pets.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
