// Package camera provides frame sources for the sampling loop.
package camera

import "gocv.io/x/gocv"

// Source produces frames from a camera device or a synthetic generator.
// The device handle is acquired by Open and released by Close; a source is
// opened for the lifetime of one capture run.
type Source interface {
	// Open acquires the device.
	Open() error

	// Read fills dst with the next frame. A read failure is fatal to the
	// capture run; callers do not retry.
	Read(dst *gocv.Mat) error

	// Name returns the backend name (e.g. "device", "mock").
	Name() string

	// Close releases the device.
	Close() error
}
