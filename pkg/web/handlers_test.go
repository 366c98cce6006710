package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aforolabs/go-aforo/pkg/camera"
	"github.com/aforolabs/go-aforo/pkg/detect"
	"github.com/aforolabs/go-aforo/pkg/monitor"
)

func testServer() (*Server, *monitor.Monitor) {
	m := monitor.New(detect.NewStub(5), func() camera.Source {
		return camera.NewMock(64, 48)
	})
	defaults := monitor.DefaultConfig()
	defaults.Interval = 5 * time.Millisecond
	s := NewServer("0", m, defaults)
	return s, m
}

func TestHandleStatus_Idle(t *testing.T) {
	s, _ := testServer()

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var st monitor.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if st.Running {
		t.Error("Expected idle status")
	}
	if st.Samples != 0 {
		t.Errorf("Expected 0 samples, got %d", st.Samples)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s, m := testServer()

	// Start with custom area
	body := strings.NewReader(`{"visible_area": 10, "conf_threshold": 0.6}`)
	req := httptest.NewRequest("POST", "/api/session/start", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("Start request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on start, got %d", resp.StatusCode)
	}
	if got := m.Config().VisibleArea; got != 10 {
		t.Errorf("Expected visible area 10, got %v", got)
	}

	// Starting again conflicts
	resp, err = s.app.Test(httptest.NewRequest("POST", "/api/session/start", nil))
	if err != nil {
		t.Fatalf("Second start request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 409 {
		t.Errorf("Expected 409 on double start, got %d", resp.StatusCode)
	}

	// Let the loop record some samples
	deadline := time.Now().Add(time.Second)
	for m.Session().Len() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Session().Len() < 2 {
		t.Fatal("Monitor recorded no samples")
	}

	// Clear while running conflicts
	resp, err = s.app.Test(httptest.NewRequest("POST", "/api/session/clear", nil))
	if err != nil {
		t.Fatalf("Clear request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 409 {
		t.Errorf("Expected 409 clearing while running, got %d", resp.StatusCode)
	}

	// Stop returns stats
	resp, err = s.app.Test(httptest.NewRequest("POST", "/api/session/stop", nil))
	if err != nil {
		t.Fatalf("Stop request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on stop, got %d", resp.StatusCode)
	}
	var stats struct {
		Samples   int     `json:"samples"`
		MeanCount float64 `json:"mean_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	resp.Body.Close()
	if stats.Samples < 2 {
		t.Errorf("Expected stats over at least 2 samples, got %d", stats.Samples)
	}
	if stats.MeanCount != 5 {
		t.Errorf("Expected mean count 5, got %v", stats.MeanCount)
	}

	// Samples endpoint row count matches session length
	resp, err = s.app.Test(httptest.NewRequest("GET", "/api/samples", nil))
	if err != nil {
		t.Fatalf("Samples request failed: %v", err)
	}
	var rows []sampleRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("Failed to decode samples: %v", err)
	}
	resp.Body.Close()
	if len(rows) != m.Session().Len() {
		t.Errorf("Expected %d rows, got %d", m.Session().Len(), len(rows))
	}

	// Export carries the timestamped filename and one row per sample
	resp, err = s.app.Test(httptest.NewRequest("GET", "/export", nil))
	if err != nil {
		t.Fatalf("Export request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on export, got %d", resp.StatusCode)
	}
	disp := resp.Header.Get("Content-Disposition")
	if !strings.Contains(disp, "conteo_personas_densidad_") || !strings.Contains(disp, ".csv") {
		t.Errorf("Unexpected Content-Disposition: %q", disp)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != m.Session().Len()+1 {
		t.Errorf("Expected %d csv lines, got %d", m.Session().Len()+1, len(lines))
	}

	// Clear now succeeds
	resp, err = s.app.Test(httptest.NewRequest("POST", "/api/session/clear", nil))
	if err != nil {
		t.Fatalf("Clear request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 on clear, got %d", resp.StatusCode)
	}
}

func TestHandleStop_NotRunning(t *testing.T) {
	s, _ := testServer()
	resp, err := s.app.Test(httptest.NewRequest("POST", "/api/session/stop", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 409 {
		t.Errorf("Expected 409 stopping when idle, got %d", resp.StatusCode)
	}
}

func TestHandleReport_EmptySession(t *testing.T) {
	s, _ := testServer()
	resp, err := s.app.Test(httptest.NewRequest("GET", "/report", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 for empty session report, got %d", resp.StatusCode)
	}
}

func TestHandleExport_EmptySession(t *testing.T) {
	s, _ := testServer()
	resp, err := s.app.Test(httptest.NewRequest("GET", "/export", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 for empty session export, got %d", resp.StatusCode)
	}
}

func TestHandleIndex(t *testing.T) {
	s, _ := testServer()
	resp, err := s.app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "Aforo") {
		t.Error("Expected dashboard page")
	}
}
