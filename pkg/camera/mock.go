package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockSource produces synthetic frames for tests.
// It can be programmed to fail after a number of successful reads.
type MockSource struct {
	mu     sync.Mutex
	open   bool
	reads  int
	width  int
	height int

	// FailAfter, when > 0, makes Read fail once that many frames
	// have been produced.
	FailAfter int
}

// NewMock creates a mock source producing black frames of the given size.
func NewMock(width, height int) *MockSource {
	return &MockSource{width: width, height: height}
}

// Open marks the source as acquired.
func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return fmt.Errorf("mock source already open")
	}
	m.open = true
	return nil
}

// Read fills dst with a synthetic frame.
func (m *MockSource) Read(dst *gocv.Mat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return fmt.Errorf("mock source not open")
	}
	if m.FailAfter > 0 && m.reads >= m.FailAfter {
		return fmt.Errorf("mock source read failure after %d frames", m.reads)
	}

	frame := gocv.NewMatWithSize(m.height, m.width, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.CopyTo(dst)

	m.reads++
	return nil
}

// Reads returns how many frames have been produced.
func (m *MockSource) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// IsOpen reports whether the source is currently acquired.
func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Name returns the backend name.
func (m *MockSource) Name() string {
	return "mock"
}

// Close releases the source.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}
