// Package detector provides face and pose landmark detection for
// expression analysis.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// Result holds everything detected in a single frame. Faces are ordered
// as reported by the underlying model; the index is stable only within
// a frame, so per-subject state must be keyed on position, not identity.
type Result struct {
	Faces []landmark.Face `json:"faces"`
	Pose  *landmark.Pose  `json:"pose,omitempty"`
}

// Detector defines the interface for face landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected face landmarks
	// and, when enabled, a body pose. Returns a Result with no faces if
	// nothing is detected.
	Detect(frame *gocv.Mat) (*Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxFaces is the maximum number of faces to detect (default: 2).
	MaxFaces int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// RefineIris enables the refined iris landmarks (points 468-477).
	RefineIris bool

	// WithPose additionally runs body pose detection on each frame.
	WithPose bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxFaces:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		RefineIris:      true,
	}
}
