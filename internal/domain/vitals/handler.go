package vitals

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router) {
	r.Post("/vitals/evaluate", evaluateHandler())
}

// evaluateRequest es el cuerpo para clasificar una lectura sin persistirla.
type evaluateRequest struct {
	MetricType MetricType `json:"metric_type" enums:"temperature,heart_rate,respiration,gum_color,weight,blood_pressure"`
	Value      *float64   `json:"value"`
	Species    string     `json:"species" enums:"dog,cat,other"`
}

// evaluateHandler godoc
// @Summary Evaluar signo vital
// @Description Clasifica una lectura como normal, warning o critical según los rangos de referencia de la especie. Métricas desconocidas devuelven normal. No requiere autenticación ni persiste datos.
// @Tags vitals
// @Accept json
// @Produce json
// @Param payload body evaluateRequest true "Lectura a evaluar; gum_color usa códigos 1=pink, 2=pale, 3=blue, 4=yellow"
// @Success 200 {object} Evaluation
// @Failure 400 {string} string "invalid json / value requerido / valor inválido"
// @Router /vitals/evaluate [post]
func evaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(string(req.MetricType)) == "" {
			http.Error(w, "metric_type is required", http.StatusBadRequest)
			return
		}
		if req.Value == nil {
			http.Error(w, "value is required", http.StatusBadRequest)
			return
		}

		ev, err := Evaluate(req.MetricType, *req.Value, ParseSpecies(req.Species))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, ev)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
