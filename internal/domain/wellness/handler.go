package wellness

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-wellness/internal/domain/periods"
	"pet-wellness/internal/domain/pets"
	"pet-wellness/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Get("/pets/{petID}/wellness", reportHandler(svc, petsSvc))
}

// reportHandler godoc
// @Summary Reporte de bienestar
// @Description Calcula el score de bienestar por ventana, el score unificado actual y la tendencia de la mascota. Solo el dueño puede verlo. Los reportes se memorizan por (mascota, rango, granularidad, versión de series).
// @Tags wellness
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param granularity query string false "day, week, month, year o all. Por defecto week"
// @Param from query string false "Inicio (RFC3339 o YYYY-MM-DD); para all, por defecto el registro más antiguo"
// @Param to query string false "Ancla (RFC3339 o YYYY-MM-DD). Por defecto ahora"
// @Success 200 {object} Report
// @Failure 400 {string} string "granularity / from / to inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/wellness [get]
func reportHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := petsSvc.Authorize(r.Context(), chi.URLParam(r, "petID"), userID)
		if err != nil {
			pets.WriteAccessError(w, err)
			return
		}

		q := r.URL.Query()
		g, err := periods.ParseGranularity(q.Get("granularity"))
		if err != nil {
			http.Error(w, "granularity must be day, week, month, year or all", http.StatusBadRequest)
			return
		}

		var rng periods.Range
		if v := strings.TrimSpace(q.Get("from")); v != "" {
			t, err := parseTime(v, svc.loc)
			if err != nil {
				http.Error(w, "from must be RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			rng.From = t
		}
		if v := strings.TrimSpace(q.Get("to")); v != "" {
			t, err := parseTime(v, svc.loc)
			if err != nil {
				http.Error(w, "to must be RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			rng.To = t
		}

		rep, err := svc.Report(r.Context(), ReportRequest{
			PetID:       p.ID,
			Species:     p.Species,
			Range:       rng,
			Granularity: g,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput),
				errors.Is(err, periods.ErrInvalidRange),
				errors.Is(err, periods.ErrUnknownGranularity):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, rep)
	}
}

func parseTime(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation("2006-01-02", v, loc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
