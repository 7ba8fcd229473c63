// Package capture provides camera and video file input using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings. Live expression sampling runs at 10 FPS;
// the session drops to its idle rate when no motion is seen.
const (
	DefaultFPS    = 10
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// ErrFrameEmpty is returned when the device produced an empty frame.
var ErrFrameEmpty = errors.New("captured frame is empty")

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// device drives a physical camera through GoCV. All methods are safe
// for concurrent use; the capture handle is guarded by the mutex.
type device struct {
	id   int
	mu   sync.Mutex
	cap  *gocv.VideoCapture
	fps  int
	open bool
}

// NewCamera creates a Camera for the given device ID.
func NewCamera(deviceID int) Camera {
	return &device{id: deviceID, fps: DefaultFPS}
}

// Open acquires the device and pins the resolution to 640x480, which
// is plenty for landmark extraction and keeps frame reads cheap.
func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}

	cap, err := gocv.OpenVideoCapture(d.id)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.id, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	cap.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	cap.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.cap = cap
	d.open = true
	return nil
}

// Close releases the device. Closing a camera that was never opened is
// a no-op.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.cap == nil {
		d.open = false
		return nil
	}

	err := d.cap.Close()
	d.cap = nil
	d.open = false
	return err
}

// ReadFrame captures one frame. The caller owns the returned Mat and
// must close it.
func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.cap == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := d.cap.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrFrameEmpty
	}
	return &mat, nil
}

// SetFPS adjusts the capture rate. Non-positive values are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.cap != nil {
		d.cap.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate setting.
func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

// IsOpen reports whether the device is acquired.
func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
