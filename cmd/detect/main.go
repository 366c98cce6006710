// Detect - one-shot person detection on a still image
//
// Runs the YOLO detector over an image file and prints the detections plus
// the resulting density for a given visible area.
package main

import (
	"flag"
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"github.com/aforolabs/go-aforo/internal/config"
	"github.com/aforolabs/go-aforo/internal/log"
	"github.com/aforolabs/go-aforo/pkg/density"
	"github.com/aforolabs/go-aforo/pkg/detect"
)

func main() {
	modelPath := flag.String("model", config.ModelPath(), "path to YOLO ONNX model")
	area := flag.Float64("area", config.VisibleArea(), "visible camera area in m²")
	confidence := flag.Float64("confidence", config.ConfThreshold(), "detection confidence threshold")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: detect [flags] <image>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	log.Init("warn")

	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		fmt.Fprintf(os.Stderr, "cannot read image %s\n", imagePath)
		os.Exit(1)
	}
	defer img.Close()

	cfg := detect.DefaultYOLOConfig()
	cfg.ModelPath = *modelPath
	cfg.ConfThreshold = float32(*confidence)

	detector, err := detect.NewYOLO(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load detector: %v\n", err)
		os.Exit(1)
	}
	defer detector.Close()

	dets, err := detector.Detect(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "detect: %v\n", err)
		os.Exit(1)
	}

	for _, d := range dets {
		fmt.Printf("%-16s %.2f  %v\n", d.ClassName, d.Confidence, d.Box)
	}

	people := detect.FilterClass(dets, "person")
	dens := density.Density(len(people), *area)
	fmt.Printf("\npersonas: %d\n", len(people))
	fmt.Printf("densidad: %.3f p/m2 (%s) en %.1f m2\n", dens, density.BandOf(dens), *area)
}
