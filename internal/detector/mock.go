package detector

import (
	"sync"

	"github.com/ayusman/pinchball/internal/hand"
	"gocv.io/x/gocv"
)

// MockDetector is a Detector whose results are set by the caller. A queued
// sequence is played one entry per Detect call before falling back to the
// fixed hands. It is safe for concurrent use.
type MockDetector struct {
	mu       sync.Mutex
	hands    []hand.Landmarks
	sequence [][]hand.Landmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once the sequence is exhausted.
func (m *MockDetector) SetHands(hands []hand.Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Queue appends per-call results. A nil entry means no hand on that frame.
func (m *MockDetector) Queue(frames ...[]hand.Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append(m.sequence, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the fixed hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]hand.Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
