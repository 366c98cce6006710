// Package monitor drives the live sampling loop: read a frame, detect people,
// compute density, annotate, record a sample, repeat. It owns the Idle/Running
// state machine and the current session.
package monitor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/aforolabs/go-aforo/internal/log"
	"github.com/aforolabs/go-aforo/pkg/camera"
	"github.com/aforolabs/go-aforo/pkg/density"
	"github.com/aforolabs/go-aforo/pkg/detect"
	"github.com/aforolabs/go-aforo/pkg/session"
)

// State of the monitor.
type State int

const (
	// StateIdle means no capture run is active.
	StateIdle State = iota
	// StateRunning means the sampling loop is active.
	StateRunning
)

var (
	// ErrAlreadyRunning is returned by Start while a run is active.
	ErrAlreadyRunning = errors.New("monitor already running")
	// ErrNotRunning is returned by Stop when no run is active.
	ErrNotRunning = errors.New("monitor not running")
	// ErrRunning is returned by Clear while a run is active.
	ErrRunning = errors.New("cannot clear while running")
	// ErrEmptySession is returned by Clear when there is nothing to clear.
	ErrEmptySession = errors.New("session is empty")
)

// SourceFactory creates a camera source for one capture run.
// The monitor opens it when the run starts and closes it when the run ends.
type SourceFactory func() camera.Source

// Thresholder is implemented by detectors with a tunable confidence threshold.
type Thresholder interface {
	SetConfThreshold(thresh float32)
}

// ChartData carries the live chart series, published once enough samples exist.
type ChartData struct {
	Timestamps []string  `json:"timestamps"`
	Counts     []int     `json:"counts"`
	DensityX20 []float64 `json:"density_x20"`
}

// Status is a snapshot of the monitor for the dashboard.
type Status struct {
	Running     bool       `json:"running"`
	SessionID   string     `json:"session_id,omitempty"`
	Samples     int        `json:"samples"`
	LastCount   int        `json:"last_count"`
	LastDensity float64    `json:"last_density"`
	Band        string     `json:"band"`
	LastError   string     `json:"last_error,omitempty"`
	Chart       *ChartData `json:"chart,omitempty"`
}

// Monitor owns the sampling loop, the state machine and the current session.
type Monitor struct {
	detector  detect.Detector
	newSource SourceFactory

	mu          sync.Mutex
	state       State
	cfg         Config
	sess        *session.Session
	lastCount   int
	lastDensity float64
	lastErr     error
	stopCh      chan struct{}
	doneCh      chan struct{}

	// OnFrame receives the annotated frame as JPEG bytes each iteration.
	OnFrame func(jpeg []byte)

	// OnStatus receives a status snapshot each iteration and on state changes.
	OnStatus func(Status)
}

// New creates a monitor in the Idle state with an empty session.
func New(detector detect.Detector, newSource SourceFactory) *Monitor {
	return &Monitor{
		detector:  detector,
		newSource: newSource,
		cfg:       DefaultConfig(),
		sess:      session.New(),
	}
}

// Start transitions Idle→Running: replaces the session with a fresh one,
// opens the camera and launches the sampling loop.
func (m *Monitor) Start(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.mu.Lock()
	if m.state == StateRunning {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}

	src := m.newSource()
	if err := src.Open(); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("open camera: %w", err)
	}

	if t, ok := m.detector.(Thresholder); ok {
		t.SetConfThreshold(float32(cfg.ConfThreshold))
	}

	m.cfg = cfg
	m.sess = session.New()
	m.lastCount = 0
	m.lastDensity = 0
	m.lastErr = nil
	m.state = StateRunning
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	sess := m.sess
	m.mu.Unlock()

	log.Info("capture run started",
		"session", sess.ID,
		"area_m2", cfg.VisibleArea,
		"confidence", cfg.ConfThreshold,
		"interval", cfg.Interval,
	)

	go m.run(src, cfg, sess, stopCh, doneCh)
	m.publishStatus()
	return nil
}

// Stop transitions Running→Idle and returns the session stats.
// The stop request is observed once per loop iteration; an in-flight
// inference call finishes first.
func (m *Monitor) Stop() (session.Stats, error) {
	m.mu.Lock()
	if m.state != StateRunning {
		m.mu.Unlock()
		return session.Stats{}, ErrNotRunning
	}
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	select {
	case <-stopCh:
		// Already stopping
	default:
		close(stopCh)
	}
	<-doneCh

	stats := m.Session().Stats()
	log.Info("capture run stopped",
		"samples", stats.Samples,
		"mean_density", stats.MeanDensity,
		"max_density", stats.MaxDensity,
	)
	m.publishStatus()
	return stats, nil
}

// Clear empties the session. Only allowed when Idle and non-empty.
func (m *Monitor) Clear() error {
	m.mu.Lock()
	if m.state == StateRunning {
		m.mu.Unlock()
		return ErrRunning
	}
	sess := m.sess
	m.mu.Unlock()

	if sess.Len() == 0 {
		return ErrEmptySession
	}
	sess.Clear()
	m.publishStatus()
	return nil
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the current session.
// It survives Stop and is replaced on the next Start.
func (m *Monitor) Session() *session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Config returns the configuration of the current or last run.
func (m *Monitor) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Status returns a snapshot for the dashboard.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	state := m.state
	sess := m.sess
	cfg := m.cfg
	lastCount := m.lastCount
	lastDensity := m.lastDensity
	lastErr := m.lastErr
	m.mu.Unlock()

	st := Status{
		Running:     state == StateRunning,
		SessionID:   sess.ID,
		Samples:     sess.Len(),
		LastCount:   lastCount,
		LastDensity: lastDensity,
		Band:        density.BandOf(lastDensity).String(),
	}
	if lastErr != nil {
		st.LastError = lastErr.Error()
	}
	if st.Samples > cfg.MinChartSamples {
		st.Chart = chartData(sess)
	}
	return st
}

// run is the sampling loop. It owns the camera source for the duration of
// the run and always returns the monitor to Idle.
func (m *Monitor) run(src camera.Source, cfg Config, sess *session.Session, stopCh, doneCh chan struct{}) {
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("camera close failed", "error", err)
		}
		m.mu.Lock()
		m.state = StateIdle
		m.mu.Unlock()
		m.publishStatus()
		close(doneCh)
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		if err := src.Read(&frame); err != nil {
			m.fail(fmt.Errorf("camera read: %w", err))
			return
		}

		dets, err := m.detector.Detect(frame)
		if err != nil {
			m.fail(fmt.Errorf("detect: %w", err))
			return
		}

		people := detect.FilterClass(dets, "person")
		count := len(people)
		d := density.Density(count, cfg.VisibleArea)

		Annotate(&frame, people, count, d)

		sess.Append(session.Sample{Time: time.Now(), Count: count, Density: d})

		m.mu.Lock()
		m.lastCount = count
		m.lastDensity = d
		m.mu.Unlock()

		m.publishFrame(&frame)
		m.publishStatus()

		select {
		case <-stopCh:
			return
		case <-time.After(cfg.Interval):
		}
	}
}

// fail records a fatal run error. The deferred cleanup in run handles the
// transition back to Idle.
func (m *Monitor) fail(err error) {
	log.Error("capture run failed", "error", err)
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	m.publishStatus()
}

func (m *Monitor) publishFrame(frame *gocv.Mat) {
	if m.OnFrame == nil {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Warn("frame encode failed", "error", err)
		return
	}
	defer buf.Close()

	// Copy out; the native buffer is released on Close
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	m.OnFrame(data)
}

func (m *Monitor) publishStatus() {
	if m.OnStatus == nil {
		return
	}
	m.OnStatus(m.Status())
}

func chartData(sess *session.Session) *ChartData {
	samples := sess.Samples()
	cd := &ChartData{
		Timestamps: make([]string, len(samples)),
		Counts:     make([]int, len(samples)),
		DensityX20: make([]float64, len(samples)),
	}
	for i, s := range samples {
		cd.Timestamps[i] = s.Timestamp()
		cd.Counts[i] = s.Count
		// Scaled ×20 so both series share an axis
		cd.DensityX20[i] = s.Density * 20
	}
	return cd
}
