package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aforolabs/go-aforo/pkg/session"
)

func TestRender_EmptySession(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, session.New()); err == nil {
		t.Error("Expected error rendering an empty session")
	}
}

func TestRender_TwoSeries(t *testing.T) {
	s := session.New()
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)
	for i := 0; i < 12; i++ {
		s.Append(session.Sample{
			Time:    base.Add(time.Duration(i) * time.Second),
			Count:   i,
			Density: float64(i) / 30,
		})
	}

	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "personas") {
		t.Error("Expected personas series in rendered chart")
	}
	if !strings.Contains(html, "densidad x20") {
		t.Error("Expected densidad x20 series in rendered chart")
	}
	if !strings.Contains(html, "10:00:00") {
		t.Error("Expected sample timestamps on the X axis")
	}
}
