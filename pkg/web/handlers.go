package web

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aforolabs/go-aforo/pkg/monitor"
	"github.com/aforolabs/go-aforo/pkg/report"
	"github.com/aforolabs/go-aforo/pkg/session"
)

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(indexHTML)
}

// handleStatus returns the current monitor snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.monitor.Status())
}

// StartRequest carries the per-session configuration.
// Omitted fields fall back to the server defaults.
type StartRequest struct {
	VisibleArea   *float64 `json:"visible_area"`
	ConfThreshold *float64 `json:"conf_threshold"`
}

// handleStart begins a capture run.
func (s *Server) handleStart(c *fiber.Ctx) error {
	cfg := s.defaults

	var req StartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
		}
	}
	if req.VisibleArea != nil {
		cfg.VisibleArea = *req.VisibleArea
	}
	if req.ConfThreshold != nil {
		cfg.ConfThreshold = *req.ConfThreshold
	}

	if err := s.monitor.Start(cfg); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, monitor.ErrAlreadyRunning) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"session_id":     s.monitor.Session().ID,
		"visible_area":   cfg.VisibleArea,
		"conf_threshold": cfg.ConfThreshold,
	})
}

// handleStop ends the capture run and returns the session stats.
func (s *Server) handleStop(c *fiber.Ctx) error {
	stats, err := s.monitor.Stop()
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, monitor.ErrNotRunning) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

// handleClear empties the session. Allowed only when idle and non-empty.
func (s *Server) handleClear(c *fiber.Ctx) error {
	if err := s.monitor.Clear(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"cleared": true})
}

type sampleRow struct {
	Timestamp string  `json:"timestamp"`
	Count     int     `json:"personas"`
	Density   float64 `json:"densidad_pers_m2"`
}

// handleSamples returns the full sample sequence of the current session.
func (s *Server) handleSamples(c *fiber.Ctx) error {
	samples := s.monitor.Session().Samples()
	rows := make([]sampleRow, len(samples))
	for i, smp := range samples {
		rows[i] = sampleRow{
			Timestamp: smp.Timestamp(),
			Count:     smp.Count,
			Density:   smp.Density,
		}
	}
	return c.JSON(rows)
}

// handleReport renders the session chart as HTML.
func (s *Server) handleReport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := report.Render(&buf, s.monitor.Session()); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// handleExport downloads the session as CSV with a timestamped filename.
func (s *Server) handleExport(c *fiber.Ctx) error {
	sess := s.monitor.Session()
	if sess.Len() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session is empty"})
	}

	var buf bytes.Buffer
	if err := sess.WriteCSV(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := session.ExportFilename(time.Now())
	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
