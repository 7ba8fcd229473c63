package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	result *Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result that will be returned by Detect.
func (m *MockDetector) SetResult(result *Result) {
	m.result = result
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &Result{}, nil
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
