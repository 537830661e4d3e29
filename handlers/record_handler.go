package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"gardentracker/internal/types/record"
	"gardentracker/middleware"
	"gardentracker/services"
)

// RecordHandler is the single action endpoint of the tracker. Every POST
// carries an action field; the handler is the boundary that turns any fault
// into a structured {success:false, error} payload instead of a transport
// error. Responses are always HTTP 200 with a success flag, which is what the
// frontend expects.
type RecordHandler struct {
	recordService *services.RecordService
	assetsDir     string
}

func NewRecordHandler(recordService *services.RecordService, assetsDir string) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		assetsDir:     assetsDir,
	}
}

// GET / - the static tracker page
func (h *RecordHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.assetsDir, "index.html"))
}

// POST / - dispatch on the action field
func (h *RecordHandler) Action(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			log.Printf("handlers: panic in action dispatch: %v", p)
			respondWithJSON(w, http.StatusOK, record.Fail("internal error"))
		}
	}()

	var req record.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusOK, record.Fail("invalid request body: "+err.Error()))
		return
	}

	middleware.CountAction(req.Action)

	switch req.Action {
	case "addRecord":
		h.addRecord(ctx, w, req)
	case "getRecords":
		h.getRecords(ctx, w, req)
	case "deleteRecord":
		h.deleteRecord(ctx, w, req)
	default:
		respondWithJSON(w, http.StatusOK, record.Fail("Unknown action"))
	}
}

func (h *RecordHandler) addRecord(ctx context.Context, w http.ResponseWriter, req record.ActionRequest) {
	if err := h.recordService.AddRecord(ctx, req.Date, req.Gardener, req.Watered, req.Notes); err != nil {
		respondWithJSON(w, http.StatusOK, record.Fail(err.Error()))
		return
	}
	respondWithJSON(w, http.StatusOK, record.Ok("Record added successfully"))
}

func (h *RecordHandler) getRecords(ctx context.Context, w http.ResponseWriter, req record.ActionRequest) {
	records, err := h.recordService.WeekRecords(ctx, req.WeekStart)
	if err != nil {
		respondWithJSON(w, http.StatusOK, record.ListResponse{Success: false, Error: err.Error()})
		return
	}
	respondWithJSON(w, http.StatusOK, record.ListResponse{Success: true, Records: records})
}

func (h *RecordHandler) deleteRecord(ctx context.Context, w http.ResponseWriter, req record.ActionRequest) {
	if err := h.recordService.DeleteRecord(ctx, req.Date); err != nil {
		respondWithJSON(w, http.StatusOK, record.Fail(err.Error()))
		return
	}
	respondWithJSON(w, http.StatusOK, record.Ok("Record deleted successfully"))
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
