// Aforo - live people counting and crowd density monitor
//
// Reads frames from a camera, counts people with a pretrained YOLO detector,
// tracks density per session and serves the dashboard.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aforolabs/go-aforo/internal/config"
	"github.com/aforolabs/go-aforo/internal/log"
	"github.com/aforolabs/go-aforo/pkg/camera"
	"github.com/aforolabs/go-aforo/pkg/detect"
	"github.com/aforolabs/go-aforo/pkg/monitor"
	"github.com/aforolabs/go-aforo/pkg/web"
)

func main() {
	port := flag.String("port", config.Port(), "dashboard port")
	device := flag.Int("camera", config.CameraDevice(), "camera device ID")
	modelPath := flag.String("model", config.ModelPath(), "path to YOLO ONNX model")
	area := flag.Float64("area", config.VisibleArea(), "visible camera area in m²")
	confidence := flag.Float64("confidence", config.ConfThreshold(), "detection confidence threshold")
	interval := flag.Duration("interval", 500*time.Millisecond, "sampling interval")
	logLevel := flag.String("log-level", config.LogLevel(), "log level (debug, info, warn, error)")
	flag.Parse()

	log.Init(*logLevel)

	defaults := monitor.DefaultConfig()
	defaults.VisibleArea = *area
	defaults.ConfThreshold = *confidence
	defaults.Interval = *interval
	if err := defaults.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	yoloCfg := detect.DefaultYOLOConfig()
	yoloCfg.ModelPath = *modelPath
	yoloCfg.ConfThreshold = float32(*confidence)

	detector, err := detect.NewYOLO(yoloCfg)
	if err != nil {
		log.Error("failed to load detector", "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	m := monitor.New(detector, func() camera.Source {
		return camera.NewDevice(*device)
	})

	server := web.NewServer(*port, m, defaults)
	server.StartAsync()

	log.Info("aforo monitor ready",
		"port", *port,
		"camera", *device,
		"model", *modelPath,
		"area_m2", *area,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	if m.State() == monitor.StateRunning {
		if _, err := m.Stop(); err != nil {
			log.Warn("stop failed during shutdown", "error", err)
		}
	}
	if err := server.Shutdown(); err != nil {
		log.Warn("server shutdown failed", "error", err)
	}
}
