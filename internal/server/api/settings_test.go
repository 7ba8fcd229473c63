package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// recordingTuner captures applied setting changes.
type recordingTuner struct {
	threshold float64
	motion    float64
	cooldown  time.Duration
}

func (r *recordingTuner) SetThreshold(v float64)            { r.threshold = v }
func (r *recordingTuner) SetMotionThreshold(v float64)      { r.motion = v }
func (r *recordingTuner) SetCooldownWindow(d time.Duration) { r.cooldown = d }

func TestSettingsHandler_UpdatePersistsAndApplies(t *testing.T) {
	st := newTestStore(t)
	tuner := &recordingTuner{}
	handler := NewSettingsHandler(st, tuner)

	body := `{"key":"significance_threshold","value":"0.25"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if tuner.threshold != 0.25 {
		t.Errorf("applied threshold = %f, want 0.25", tuner.threshold)
	}

	saved, err := st.Settings().Get(SettingSignificanceThreshold)
	if err != nil {
		t.Fatalf("setting not persisted: %v", err)
	}
	if saved != "0.25" {
		t.Errorf("persisted value = %q, want %q", saved, "0.25")
	}
}

func TestSettingsHandler_CooldownSecondsBecomesDuration(t *testing.T) {
	st := newTestStore(t)
	tuner := &recordingTuner{}
	handler := NewSettingsHandler(st, tuner)

	body := `{"key":"cooldown_seconds","value":"2.5"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if tuner.cooldown != 2500*time.Millisecond {
		t.Errorf("applied cooldown = %v, want 2.5s", tuner.cooldown)
	}
}

func TestSettingsHandler_RejectsUnknownKey(t *testing.T) {
	st := newTestStore(t)
	handler := NewSettingsHandler(st, nil)

	body := `{"key":"volume","value":"11"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSettingsHandler_RejectsNonNumericValue(t *testing.T) {
	st := newTestStore(t)
	handler := NewSettingsHandler(st, nil)

	body := `{"key":"motion_threshold","value":"high"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSettingsHandler_ListReturnsSavedValues(t *testing.T) {
	st := newTestStore(t)
	if err := st.Settings().Set(SettingMotionThreshold, "2.0"); err != nil {
		t.Fatalf("seed setting: %v", err)
	}
	handler := NewSettingsHandler(st, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp settingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Settings[SettingMotionThreshold] != "2.0" {
		t.Errorf("motion_threshold = %q, want %q", resp.Settings[SettingMotionThreshold], "2.0")
	}
	if _, ok := resp.Settings[SettingCooldownSeconds]; ok {
		t.Error("unset key should be absent from the response")
	}
}
