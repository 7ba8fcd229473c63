package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	for _, deviceID := range []int{0, 1, 2} {
		cam := NewCamera(deviceID)
		if cam == nil {
			t.Fatal("NewCamera returned nil")
		}
		if got := cam.FPS(); got != DefaultFPS {
			t.Errorf("FPS() = %d, want %d (default)", got, DefaultFPS)
		}
		if cam.IsOpen() {
			t.Error("camera should not be open before Open()")
		}
	}
}

func TestCamera_ReadFrameBeforeOpen(t *testing.T) {
	cam := NewCamera(0)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	cam.SetFPS(30)
	if got := cam.FPS(); got != 30 {
		t.Errorf("FPS() = %d, want 30", got)
	}

	// Non-positive values are ignored.
	cam.SetFPS(0)
	cam.SetFPS(-5)
	if got := cam.FPS(); got != 30 {
		t.Errorf("FPS() = %d, want 30 after invalid updates", got)
	}
}

func TestCamera_CloseWithoutOpen(t *testing.T) {
	cam := NewCamera(0)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera: %v", err)
	}
}
