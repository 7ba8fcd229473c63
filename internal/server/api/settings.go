package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/emoticon-ai/emoticon/internal/store"
)

// Setting keys accepted by the settings endpoint.
const (
	SettingSignificanceThreshold = "significance_threshold"
	SettingMotionThreshold       = "motion_threshold"
	SettingCooldownSeconds       = "cooldown_seconds"
)

// Tuner receives validated setting changes and applies them to the
// running detection pipeline.
type Tuner interface {
	SetThreshold(v float64)
	SetMotionThreshold(v float64)
	SetCooldownWindow(d time.Duration)
}

// SettingsHandler persists sensitivity tunables and pushes them into
// the live session when one is attached.
type SettingsHandler struct {
	store *store.Store
	tuner Tuner
}

// NewSettingsHandler creates a SettingsHandler. The tuner may be nil;
// settings are then persisted for the next start only.
func NewSettingsHandler(s *store.Store, tuner Tuner) *SettingsHandler {
	return &SettingsHandler{store: s, tuner: tuner}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

type updateSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPut, http.MethodPost:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) list(w http.ResponseWriter) {
	keys := []string{
		SettingSignificanceThreshold,
		SettingMotionThreshold,
		SettingCooldownSeconds,
	}

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := h.store.Settings().Get(key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load settings")
			return
		}
		out[key] = value
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: out})
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value, err := strconv.ParseFloat(req.Value, 64)
	if err != nil || value < 0 {
		writeError(w, http.StatusBadRequest, "Value must be a non-negative number")
		return
	}

	switch req.Key {
	case SettingSignificanceThreshold:
		if h.tuner != nil {
			h.tuner.SetThreshold(value)
		}
	case SettingMotionThreshold:
		if h.tuner != nil {
			h.tuner.SetMotionThreshold(value)
		}
	case SettingCooldownSeconds:
		if h.tuner != nil {
			h.tuner.SetCooldownWindow(time.Duration(value * float64(time.Second)))
		}
	default:
		writeError(w, http.StatusBadRequest, "Unknown setting key")
		return
	}

	if err := h.store.Settings().Set(req.Key, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}

	writeJSON(w, http.StatusOK, updateSettingRequest{Key: req.Key, Value: req.Value})
}
