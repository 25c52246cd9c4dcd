package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookclub/pkg/checkpoint"
	"bookclub/pkg/sheets"
	"bookclub/pkg/table"

	log "github.com/sirupsen/logrus"
)

// Handler serves the book club API from a tabular store. Every request
// reads the store afresh.
type Handler struct {
	store sheets.Store
}

func NewHandler(store sheets.Store) *Handler {
	return &Handler{store: store}
}

// getTab returns a handler listing the records of tab.
func (h *Handler) getTab(tab string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.store.Get(r.Context(), tab)
		if err != nil {
			tabReads.WithLabelValues(tab, "error").Inc()
			log.WithError(err).Errorf("Failed to read tab %s", tab)
			sendError(w, http.StatusInternalServerError, err)
			return
		}
		tabReads.WithLabelValues(tab, "ok").Inc()
		sendJSON(w, http.StatusOK, table.Project(rows))
	}
}

func (h *Handler) saveCheckpointStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.save(w, r)
	saveTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		status := statusFor(err)
		entry := log.WithError(err)
		if status >= http.StatusInternalServerError {
			entry.Error("Failed to save checkpoint status")
		} else {
			entry.Warn("Rejected checkpoint status save")
		}
		sendError(w, status, err)
		return
	}
	savedRows.WithLabelValues("updated").Add(float64(result.Updated))
	savedRows.WithLabelValues("added").Add(float64(result.Added))
	sendJSON(w, http.StatusOK, SaveResponse{OK: true, Updated: result.Updated, Added: result.Added})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) (*checkpoint.Result, error) {
	req, err := decodeSaveRequest(w, r)
	if err != nil {
		return nil, err
	}
	return checkpoint.Save(r.Context(), h.store, req.CheckpointID, req.updates())
}

func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request) {
	board, err := checkpoint.LoadBoard(r.Context(), h.store)
	if err != nil {
		log.WithError(err).Warn("Failed to load board")
		sendError(w, statusFor(err), err)
		return
	}
	sendJSON(w, http.StatusOK, board)
}

func getHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, checkpoint.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, checkpoint.ErrNoCurrentCheckpoint):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func sendError(w http.ResponseWriter, status int, err error) {
	sendJSON(w, status, ErrorResponse{Error: err.Error()})
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Failed to encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	sendResponse(w, status, body)
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
