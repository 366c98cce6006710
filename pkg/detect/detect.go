// Package detect provides pretrained object detection for camera frames.
package detect

import (
	"image"

	"gocv.io/x/gocv"
)

// Detection is one detected object in frame pixel coordinates.
type Detection struct {
	Box        image.Rectangle
	Confidence float32
	ClassID    int
	ClassName  string
}

// Detector is the interface for detection backends.
type Detector interface {
	// Detect finds objects in the BGR frame.
	Detect(img gocv.Mat) ([]Detection, error)

	// Close releases resources.
	Close() error
}

// FilterClass keeps only detections of the named class.
func FilterClass(dets []Detection, class string) []Detection {
	var out []Detection
	for _, d := range dets {
		if d.ClassName == class {
			out = append(out, d)
		}
	}
	return out
}

// IsPerson returns true if the class is a person.
func IsPerson(className string) bool {
	return className == "person"
}
