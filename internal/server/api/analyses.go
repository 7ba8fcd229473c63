// Package api provides the HTTP API handlers for the emoticon service.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/emoticon-ai/emoticon/internal/store"
)

// AnalysesHandler serves the recorded analysis history.
type AnalysesHandler struct {
	store *store.Store
}

// NewAnalysesHandler creates an AnalysesHandler backed by the given store.
func NewAnalysesHandler(s *store.Store) *AnalysesHandler {
	return &AnalysesHandler{store: s}
}

// ServeHTTP routes analysis requests.
// Expected paths: /api/analyses or /api/analyses/{session_id}
func (h *AnalysesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/analyses")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.recent(w, r)
		return
	}
	h.bySession(w, r, path)
}

type analysisResponse struct {
	ID             int64    `json:"id"`
	SessionID      string   `json:"session_id"`
	Offset         float64  `json:"offset_seconds"`
	Gestures       []string `json:"gestures"`
	Score          float64  `json:"score"`
	Interpretation string   `json:"interpretation,omitempty"`
	Mode           string   `json:"mode,omitempty"`
	Model          string   `json:"model,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

type listAnalysesResponse struct {
	Analyses []analysisResponse `json:"analyses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toAnalysisResponse(a *store.Analysis) analysisResponse {
	return analysisResponse{
		ID:             a.ID,
		SessionID:      a.SessionID,
		Offset:         a.Offset,
		Gestures:       a.Gestures,
		Score:          a.Score,
		Interpretation: a.Interpretation,
		Mode:           a.Mode,
		Model:          a.Model,
		CreatedAt:      a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// recent handles GET /api/analyses?limit=N.
func (h *AnalysesHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	analyses, err := h.store.Analyses().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	response := listAnalysesResponse{
		Analyses: make([]analysisResponse, 0, len(analyses)),
	}
	for _, a := range analyses {
		response.Analyses = append(response.Analyses, toAnalysisResponse(a))
	}

	writeJSON(w, http.StatusOK, response)
}

// bySession handles GET /api/analyses/{session_id} and returns the
// session timeline in offset order.
func (h *AnalysesHandler) bySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	analyses, err := h.store.Analyses().ListBySession(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	response := listAnalysesResponse{
		Analyses: make([]analysisResponse, 0, len(analyses)),
	}
	for _, a := range analyses {
		response.Analyses = append(response.Analyses, toAnalysisResponse(a))
	}

	writeJSON(w, http.StatusOK, response)
}
