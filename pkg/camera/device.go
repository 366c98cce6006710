package camera

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/aforolabs/go-aforo/internal/log"
)

// DeviceSource reads frames from a system video device via gocv.
type DeviceSource struct {
	deviceID int
	capture  *gocv.VideoCapture
}

// NewDevice creates a source for the given device ID (0 = default camera).
func NewDevice(deviceID int) *DeviceSource {
	return &DeviceSource{deviceID: deviceID}
}

// Open acquires the video device.
func (d *DeviceSource) Open() error {
	if d.capture != nil {
		return fmt.Errorf("camera device %d already open", d.deviceID)
	}

	capture, err := gocv.OpenVideoCapture(d.deviceID)
	if err != nil {
		return fmt.Errorf("open camera device %d: %w", d.deviceID, err)
	}

	d.capture = capture
	log.Info("camera opened", "device", d.deviceID)
	return nil
}

// Read fills dst with the next frame.
func (d *DeviceSource) Read(dst *gocv.Mat) error {
	if d.capture == nil {
		return fmt.Errorf("camera device %d not open", d.deviceID)
	}
	if ok := d.capture.Read(dst); !ok {
		return fmt.Errorf("cannot read frame from camera device %d", d.deviceID)
	}
	if dst.Empty() {
		return fmt.Errorf("empty frame from camera device %d", d.deviceID)
	}
	return nil
}

// Name returns the backend name.
func (d *DeviceSource) Name() string {
	return "device"
}

// Close releases the video device.
func (d *DeviceSource) Close() error {
	if d.capture == nil {
		return nil
	}
	err := d.capture.Close()
	d.capture = nil
	log.Info("camera closed", "device", d.deviceID)
	return err
}
