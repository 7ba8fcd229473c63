// Package interpret turns detected gesture sets into natural-language
// emotional readings via an OpenAI-compatible chat API.
package interpret

import "context"

// Mode selects which signal family a reading is based on.
type Mode string

const (
	// ModeFace interprets facial micro-expressions only.
	ModeFace Mode = "face"
	// ModeBody interprets body-language patterns only.
	ModeBody Mode = "body"
	// ModeCombined interprets face and body signals together.
	ModeCombined Mode = "combined"
)

// Request describes one interpretation call: the gesture names active
// at a moment, plus optional free-form context supplied by the caller.
type Request struct {
	Gestures []string
	Mode     Mode
	Context  string
}

// Moment is one point on a session timeline.
type Moment struct {
	// Offset is seconds from the start of the session or video.
	Offset   float64
	Gestures []string
}

// Interpretation is the model's reading of an expression state.
type Interpretation struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Interpreter produces emotional readings from gesture observations.
// Implementations must be safe for use from a single goroutine; the
// session serializes calls.
type Interpreter interface {
	// Interpret analyzes a single gesture snapshot.
	Interpret(ctx context.Context, req *Request) (*Interpretation, error)

	// InterpretTimeline analyzes the emotional arc across a whole
	// session or video.
	InterpretTimeline(ctx context.Context, moments []Moment) (*Interpretation, error)

	// Health checks API connectivity.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}
