package detect

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// StubDetector returns a scripted sequence of person counts.
// It is intended for tests and dry runs without a model file.
type StubDetector struct {
	mu     sync.Mutex
	counts []int
	calls  int

	// Err, when set, is returned by every Detect call.
	Err error
}

// NewStub creates a stub detector that reports the given person counts in
// order, repeating the last value once exhausted.
func NewStub(counts ...int) *StubDetector {
	return &StubDetector{counts: counts}
}

// Detect returns synthetic person detections matching the scripted count.
func (s *StubDetector) Detect(img gocv.Mat) ([]Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	count := 0
	if len(s.counts) > 0 {
		idx := s.calls
		if idx >= len(s.counts) {
			idx = len(s.counts) - 1
		}
		count = s.counts[idx]
	}
	s.calls++

	dets := make([]Detection, 0, count)
	for i := 0; i < count; i++ {
		dets = append(dets, Detection{
			Box:        image.Rect(i*10, 0, i*10+8, 20),
			Confidence: 0.9,
			ClassID:    0,
			ClassName:  "person",
		})
	}
	return dets, nil
}

// Calls returns how many times Detect has been invoked.
func (s *StubDetector) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Close is a no-op.
func (s *StubDetector) Close() error {
	return nil
}
