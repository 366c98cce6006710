package monitor

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/aforolabs/go-aforo/pkg/density"
	"github.com/aforolabs/go-aforo/pkg/detect"
)

var (
	boxColor  = color.RGBA{0, 200, 0, 0}
	textColor = color.RGBA{255, 255, 255, 0}
	fillColor = color.RGBA{0, 0, 0, 0}
)

// Annotate draws detection boxes and the count/density overlays onto the frame.
func Annotate(frame *gocv.Mat, people []detect.Detection, count int, d float64) {
	for _, p := range people {
		gocv.Rectangle(frame, p.Box, boxColor, 2)
		label := fmt.Sprintf("person %.2f", p.Confidence)
		gocv.PutText(frame, label,
			image.Pt(p.Box.Min.X, p.Box.Min.Y-6),
			gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}

	// Banner behind the two status lines
	gocv.Rectangle(frame, image.Rect(0, 0, 320, 58), fillColor, -1)
	gocv.PutText(frame, fmt.Sprintf("Personas: %d", count),
		image.Pt(10, 24), gocv.FontHersheySimplex, 0.7, textColor, 2)
	gocv.PutText(frame, fmt.Sprintf("Densidad: %.2f p/m2 (%s)", d, density.BandOf(d)),
		image.Pt(10, 48), gocv.FontHersheySimplex, 0.6, textColor, 2)
}
