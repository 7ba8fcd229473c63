package api

import (
	"net/http"
	"strconv"

	"github.com/emoticon-ai/emoticon/internal/store"
)

// StatsHandler serves the global expression statistics.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a StatsHandler backed by the given store.
func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

type gestureCountResponse struct {
	Gesture  string `json:"gesture"`
	Count    int    `json:"count"`
	LastSeen string `json:"last_seen"`
}

type dailyCountResponse struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type statsResponse struct {
	TopGestures    []gestureCountResponse `json:"top_gestures"`
	TotalAnalyses  int                    `json:"total_analyses"`
	UniqueSessions int                    `json:"unique_sessions"`
	Trend          []dailyCountResponse   `json:"trend"`
}

// ServeHTTP handles GET /api/stats?limit=N.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	top, err := h.store.Stats().Top(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	totals, err := h.store.Stats().Totals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	trend, err := h.store.Stats().Trend(7)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	response := statsResponse{
		TopGestures:    make([]gestureCountResponse, 0, len(top)),
		TotalAnalyses:  totals.Analyses,
		UniqueSessions: totals.Sessions,
		Trend:          make([]dailyCountResponse, 0, len(trend)),
	}
	for _, c := range top {
		response.TopGestures = append(response.TopGestures, gestureCountResponse{
			Gesture:  c.Gesture,
			Count:    c.Count,
			LastSeen: c.LastSeen.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	for _, d := range trend {
		response.Trend = append(response.Trend, dailyCountResponse{Day: d.Day, Count: d.Count})
	}

	writeJSON(w, http.StatusOK, response)
}
