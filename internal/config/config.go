// Package config provides environment configuration helpers for go-aforo commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the monitor.
const (
	DefaultPort          = "8077"
	DefaultCameraDevice  = 0
	DefaultModelPath     = "models/yolov8n.onnx"
	DefaultVisibleArea   = 30.0
	DefaultConfThreshold = 0.4
)

// Port returns the dashboard port from AFORO_PORT or the default.
func Port() string {
	if p := os.Getenv("AFORO_PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// CameraDevice returns the camera device ID from AFORO_CAMERA.
// Falls back to the default system camera (0) if unset or malformed.
func CameraDevice() int {
	if v := os.Getenv("AFORO_CAMERA"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id >= 0 {
			return id
		}
	}
	return DefaultCameraDevice
}

// ModelPath returns the detector model path from AFORO_MODEL or the default.
func ModelPath() string {
	if p := os.Getenv("AFORO_MODEL"); p != "" {
		return p
	}
	return DefaultModelPath
}

// VisibleArea returns the visible camera area in m² from AFORO_AREA.
func VisibleArea() float64 {
	if v := os.Getenv("AFORO_AREA"); v != "" {
		if a, err := strconv.ParseFloat(v, 64); err == nil && a > 0 {
			return a
		}
	}
	return DefaultVisibleArea
}

// ConfThreshold returns the detection confidence threshold from AFORO_CONFIDENCE.
func ConfThreshold() float64 {
	if v := os.Getenv("AFORO_CONFIDENCE"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil && c >= 0 && c <= 1 {
			return c
		}
	}
	return DefaultConfThreshold
}

// LogLevel returns the log level from AFORO_LOG_LEVEL or "info".
func LogLevel() string {
	if l := os.Getenv("AFORO_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}
