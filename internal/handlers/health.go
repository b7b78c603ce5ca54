package handlers

import (
	"encoding/json"
	"net/http"

	"studentdesk/internal/logging"
	"studentdesk/internal/models"
)

type HealthHandler struct {
	repo *models.Repository
}

func NewHealthHandler(repo *models.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.L().Errorf("encode JSON response: %v", err)
	}
}

// Health reports whether the storage backend is reachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	store := h.repo.Store()
	if err := store.Ping(r.Context()); err != nil {
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": store.BackendName(r.Context()),
	})
}
