package emotions

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, c *Classifier) {
	r.Post("/behavior/classify", classifyHandler(c))
}

type classifyRequest struct {
	Text string `json:"text"`
}

// classifyHandler godoc
// @Summary Clasificar texto de comportamiento
// @Description Asigna una emoción primaria, confianza y hasta dos emociones secundarias a una descripción libre (en, it, es). Sin coincidencias devuelve una emoción por defecto con confianza 0.75.
// @Tags behavior
// @Accept json
// @Produce json
// @Param payload body classifyRequest true "Texto a clasificar"
// @Success 200 {object} Result
// @Failure 400 {string} string "invalid json"
// @Router /behavior/classify [post]
func classifyHandler(c *Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, c.Classify(req.Text))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
