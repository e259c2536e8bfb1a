package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler responds with service health information.
type HealthHandler struct {
	StartedAt time.Time
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	payload := map[string]string{
		"status":  "ok",
		"service": "everkeep",
	}
	if !h.StartedAt.IsZero() {
		payload["uptime"] = time.Since(h.StartedAt).Round(time.Second).String()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
