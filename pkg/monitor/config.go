package monitor

import (
	"fmt"
	"time"
)

// Config holds the per-session sampling configuration.
// It is supplied at Start and constant for the run.
type Config struct {
	// VisibleArea is the monitored camera area in m².
	VisibleArea float64 `json:"visible_area"`

	// ConfThreshold is the minimum detection confidence (0-1).
	ConfThreshold float64 `json:"conf_threshold"`

	// Interval is the sleep between loop iterations.
	Interval time.Duration `json:"-"`

	// MinChartSamples is how many samples must exist before status
	// updates carry live chart series.
	MinChartSamples int `json:"-"`
}

// DefaultConfig returns the default sampling configuration.
func DefaultConfig() Config {
	return Config{
		VisibleArea:     30,
		ConfThreshold:   0.4,
		Interval:        500 * time.Millisecond,
		MinChartSamples: 10,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.VisibleArea <= 0 {
		return fmt.Errorf("visible area must be positive, got %v", c.VisibleArea)
	}
	if c.ConfThreshold < 0 || c.ConfThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0,1], got %v", c.ConfThreshold)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	return nil
}
