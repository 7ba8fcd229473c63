package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func newTestFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return &m
}

func TestMockCamera_PlaybackEndsWithoutLoop(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV runtime")
	}

	cam := NewMockCamera([]*gocv.Mat{newTestFrame(t), newTestFrame(t)}, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() frame %d error = %v", i, err)
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames after playback, got %v", err)
	}
}

func TestMockCamera_LoopRepeats(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV runtime")
	}

	cam := NewMockCamera([]*gocv.Mat{newTestFrame(t)}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_ReadWhenClosed(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestMockCamera_ReadWithoutFrames(t *testing.T) {
	cam := NewMockCamera(nil, false)
	cam.Open()
	defer cam.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}
