package interpret

import (
	"context"
	"sync"
)

// Mock implements Interpreter for testing.
type Mock struct {
	// InterpretFunc is called when Interpret is invoked.
	InterpretFunc func(ctx context.Context, req *Request) (*Interpretation, error)

	// TimelineFunc is called when InterpretTimeline is invoked.
	TimelineFunc func(ctx context.Context, moments []Moment) (*Interpretation, error)

	// HealthFunc is called when Health is invoked.
	HealthFunc func(ctx context.Context) error

	mu       sync.Mutex
	requests []*Request
}

// NewMock creates a mock interpreter with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		InterpretFunc: func(ctx context.Context, req *Request) (*Interpretation, error) {
			return &Interpretation{Text: "calm and attentive", Model: "mock"}, nil
		},
		TimelineFunc: func(ctx context.Context, moments []Moment) (*Interpretation, error) {
			return &Interpretation{Text: "steady mood throughout", Model: "mock"}, nil
		},
		HealthFunc: func(ctx context.Context) error {
			return nil
		},
	}
}

// Interpret calls InterpretFunc and records the request.
func (m *Mock) Interpret(ctx context.Context, req *Request) (*Interpretation, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.InterpretFunc != nil {
		return m.InterpretFunc(ctx, req)
	}
	return nil, ErrNoGestures
}

// InterpretTimeline calls TimelineFunc.
func (m *Mock) InterpretTimeline(ctx context.Context, moments []Moment) (*Interpretation, error) {
	if m.TimelineFunc != nil {
		return m.TimelineFunc(ctx, moments)
	}
	return nil, ErrEmptyTimeline
}

// Health calls HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close is a no-op for the mock.
func (m *Mock) Close() error {
	return nil
}

// Requests returns the snapshot requests seen so far.
func (m *Mock) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Verify Mock implements Interpreter at compile time.
var _ Interpreter = (*Mock)(nil)
