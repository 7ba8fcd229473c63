package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrames is returned by a mock camera that ran out of frames.
var ErrNoFrames = errors.New("no frames available")

// MockCamera plays back a canned frame sequence for testing. With loop
// enabled the sequence repeats forever, which is handy for pipeline
// tests that read an unbounded stream.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	index  int
	loop   bool
	open   bool
}

// NewMockCamera creates a mock camera over the given frames.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

// Open marks the camera ready and rewinds playback.
func (m *MockCamera) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.index = 0
	return nil
}

// Close marks the camera stopped.
func (m *MockCamera) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// ReadFrame returns a clone of the next frame in the sequence.
func (m *MockCamera) ReadFrame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil, ErrCameraNotOpen
	}
	if len(m.frames) == 0 {
		return nil, ErrNoFrames
	}
	if m.index >= len(m.frames) {
		if !m.loop {
			return nil, ErrNoFrames
		}
		m.index = 0
	}

	// Clones keep callers from mutating the canned frames.
	frame := m.frames[m.index].Clone()
	m.index++
	return &frame, nil
}

// SetFPS is a no-op; the mock has no capture clock.
func (m *MockCamera) SetFPS(fps int) {}

// FPS returns the default rate.
func (m *MockCamera) FPS() int { return DefaultFPS }

// IsOpen reports whether Open has been called.
func (m *MockCamera) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// SetFrames replaces the frame sequence and rewinds.
func (m *MockCamera) SetFrames(frames []*gocv.Mat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.index = 0
}

// Reset restarts playback from the first frame.
func (m *MockCamera) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = 0
}
