package capture

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// MaxVideoBytes is the default upper bound on accepted video files.
const MaxVideoBytes = 100 << 20 // 100 MB

// ErrVideoTooLarge is returned when a video file exceeds the size limit.
var ErrVideoTooLarge = errors.New("video file too large")

// ErrVideoUnreadable is returned when a video file cannot be opened or
// decoded.
var ErrVideoUnreadable = errors.New("video file unreadable")

// VideoFile reads frames from a recorded video for batch analysis.
type VideoFile struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	open    bool
}

// OpenVideoFile opens a video for reading. maxBytes bounds the accepted
// file size; pass 0 for the default limit.
func OpenVideoFile(path string, maxBytes int64) (*VideoFile, error) {
	if maxBytes <= 0 {
		maxBytes = MaxVideoBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVideoUnreadable, err)
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrVideoTooLarge, info.Size(), maxBytes)
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVideoUnreadable, err)
	}

	return &VideoFile{
		path:    path,
		capture: capture,
		open:    true,
	}, nil
}

// FrameCount returns the total number of frames reported by the container.
// Some containers report 0; callers must tolerate that.
func (v *VideoFile) FrameCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open {
		return 0
	}
	return int(v.capture.Get(gocv.VideoCaptureFrameCount))
}

// FPS returns the frame rate reported by the container.
func (v *VideoFile) FPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open {
		return 0
	}
	return v.capture.Get(gocv.VideoCaptureFPS)
}

// ReadFrame reads the next frame. The caller is responsible for closing
// the returned Mat. Returns false when the stream is exhausted.
func (v *VideoFile) ReadFrame() (*gocv.Mat, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open {
		return nil, false
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok {
		mat.Close()
		return nil, false
	}
	if mat.Empty() {
		mat.Close()
		return nil, false
	}

	return &mat, true
}

// Close releases the underlying capture.
func (v *VideoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open {
		return nil
	}
	v.open = false
	return v.capture.Close()
}
