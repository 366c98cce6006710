package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/aforolabs/go-aforo/pkg/camera"
	"github.com/aforolabs/go-aforo/pkg/detect"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = 5 * time.Millisecond
	return cfg
}

func newTestMonitor(det detect.Detector, src camera.Source) *Monitor {
	return New(det, func() camera.Source { return src })
}

// waitFor polls until cond is true or the deadline expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestMonitor_StartStop(t *testing.T) {
	src := camera.NewMock(64, 48)
	m := newTestMonitor(detect.NewStub(5), src)

	if m.State() != StateIdle {
		t.Fatal("Expected new monitor to be Idle")
	}

	if err := m.Start(testConfig()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if m.State() != StateRunning {
		t.Error("Expected Running state after Start")
	}

	// Starting again while running must fail
	if err := m.Start(testConfig()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning, got %v", err)
	}

	if !waitFor(t, time.Second, func() bool { return m.Session().Len() >= 3 }) {
		t.Fatalf("Expected at least 3 samples, got %d", m.Session().Len())
	}

	stats, err := m.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if m.State() != StateIdle {
		t.Error("Expected Idle state after Stop")
	}
	if stats.Samples < 3 {
		t.Errorf("Expected stats over at least 3 samples, got %d", stats.Samples)
	}
	if src.IsOpen() {
		t.Error("Expected camera released after Stop")
	}

	// Stopping again must fail
	if _, err := m.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning, got %v", err)
	}
}

func TestMonitor_SamplesCarryDensity(t *testing.T) {
	src := camera.NewMock(64, 48)
	m := newTestMonitor(detect.NewStub(75), src)

	cfg := testConfig()
	cfg.VisibleArea = 30
	if err := m.Start(cfg); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !waitFor(t, time.Second, func() bool { return m.Session().Len() >= 1 }) {
		t.Fatal("No samples recorded")
	}
	if _, err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	for _, s := range m.Session().Samples() {
		if s.Count != 75 {
			t.Errorf("Expected count 75, got %d", s.Count)
		}
		if s.Density != 2.5 {
			t.Errorf("Expected density 2.5, got %v", s.Density)
		}
	}
}

func TestMonitor_ReadFailureStopsRun(t *testing.T) {
	src := camera.NewMock(64, 48)
	src.FailAfter = 2
	m := newTestMonitor(detect.NewStub(1), src)

	if err := m.Start(testConfig()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !waitFor(t, time.Second, func() bool { return m.State() == StateIdle }) {
		t.Fatal("Expected run to stop after read failure")
	}

	st := m.Status()
	if st.LastError == "" {
		t.Error("Expected LastError to be set after read failure")
	}
	// Samples up to the failure are retained
	if m.Session().Len() != 2 {
		t.Errorf("Expected 2 samples before failure, got %d", m.Session().Len())
	}
	if src.IsOpen() {
		t.Error("Expected camera released after failed run")
	}
}

func TestMonitor_StartReplacesSession(t *testing.T) {
	src := camera.NewMock(64, 48)
	m := newTestMonitor(detect.NewStub(1), src)

	if err := m.Start(testConfig()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return m.Session().Len() >= 1 })
	firstID := m.Session().ID
	if _, err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := m.Start(testConfig()); err != nil {
		t.Fatalf("Second Start failed: %v", err)
	}
	defer m.Stop()

	if m.Session().ID == firstID {
		t.Error("Expected a fresh session on restart")
	}
}

func TestMonitor_ClearRules(t *testing.T) {
	src := camera.NewMock(64, 48)
	m := newTestMonitor(detect.NewStub(1), src)

	// Clear on empty idle session must fail
	if err := m.Clear(); !errors.Is(err, ErrEmptySession) {
		t.Errorf("Expected ErrEmptySession, got %v", err)
	}

	if err := m.Start(testConfig()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return m.Session().Len() >= 1 })

	// Clear while running must fail
	if err := m.Clear(); !errors.Is(err, ErrRunning) {
		t.Errorf("Expected ErrRunning, got %v", err)
	}

	if _, err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Session().Len() != 0 {
		t.Errorf("Expected empty session after Clear, got %d", m.Session().Len())
	}
}

func TestMonitor_ChartOnlyAfterMinSamples(t *testing.T) {
	src := camera.NewMock(64, 48)
	m := newTestMonitor(detect.NewStub(2), src)

	cfg := testConfig()
	cfg.Interval = time.Millisecond
	if err := m.Start(cfg); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	waitFor(t, time.Second, func() bool { return m.Session().Len() >= 5 })
	if n := m.Session().Len(); n <= cfg.MinChartSamples {
		if st := m.Status(); st.Chart != nil {
			t.Errorf("Expected no chart data at %d samples", n)
		}
	}

	if !waitFor(t, 2*time.Second, func() bool { return m.Session().Len() > cfg.MinChartSamples }) {
		t.Fatal("Never accumulated enough samples for chart")
	}
	st := m.Status()
	if st.Chart == nil {
		t.Fatal("Expected chart data once samples exceed the minimum")
	}
	if len(st.Chart.Counts) != len(st.Chart.DensityX20) || len(st.Chart.Counts) != len(st.Chart.Timestamps) {
		t.Error("Chart series lengths differ")
	}
	// Density series is scaled ×20
	for i := range st.Chart.Counts {
		want := (float64(st.Chart.Counts[i]) / cfg.VisibleArea) * 20
		if st.Chart.DensityX20[i] != want {
			t.Errorf("Chart density[%d] = %v, want %v", i, st.Chart.DensityX20[i], want)
			break
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.VisibleArea = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero area")
	}

	bad = DefaultConfig()
	bad.ConfThreshold = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for out-of-range confidence")
	}

	bad = DefaultConfig()
	bad.Interval = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero interval")
	}
}
