package tally

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type HTTPHandler struct {
	tally Service
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(svc Service) *HTTPHandler {
	return &HTTPHandler{tally: svc}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tally/", h.handleSession)
}

// GET /api/tally/{sessionID}?limit=N
func (h *HTTPHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sessionID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/tally/"))
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	totals, err := h.tally.Totals(ctx, sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query totals failed")
		return
	}
	recent, err := h.tally.ListRecent(ctx, sessionID, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query recent matches failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totals": totals,
		"label":  totals.Label,
		"recent": recent,
	})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
