package handlers

import (
	"context"
	"net/http"
	"time"

	"gardentracker/internal/store"
)

// HealthHandler probes the backing store the same way the tracker uses it:
// open-or-create, then a full read.
type HealthHandler struct {
	store store.RowStore
}

func NewHealthHandler(st store.RowStore) *HealthHandler {
	return &HealthHandler{store: st}
}

// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ensure(ctx); err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	rows, err := h.store.ReadAll(ctx)
	if err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "garden-watering-tracker",
		"rowCount": len(rows),
	})
}
