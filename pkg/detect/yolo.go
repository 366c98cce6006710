package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/aforolabs/go-aforo/internal/log"
)

// YOLOConfig holds YOLO detector configuration.
type YOLOConfig struct {
	ModelPath     string
	ConfThreshold float32
	NMSThreshold  float32
	InputWidth    int
	InputHeight   int
}

// DefaultYOLOConfig returns production defaults for YOLOv8n.
func DefaultYOLOConfig() YOLOConfig {
	return YOLOConfig{
		ModelPath:     "models/yolov8n.onnx",
		ConfThreshold: 0.4,
		NMSThreshold:  0.45,
		InputWidth:    640,
		InputHeight:   640,
	}
}

// YOLODetector runs YOLOv8 object detection via the gocv DNN module.
// The model is loaded once and reused for the process lifetime.
type YOLODetector struct {
	net       gocv.Net
	config    YOLOConfig
	mu        sync.Mutex
	inputSize image.Point
}

// NewYOLO loads the ONNX model and prepares the detector.
func NewYOLO(cfg YOLOConfig) (*YOLODetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.Info("yolo model loaded", "path", cfg.ModelPath, "input", fmt.Sprintf("%dx%d", cfg.InputWidth, cfg.InputHeight))

	return &YOLODetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// SetConfThreshold updates the confidence threshold for subsequent detections.
func (d *YOLODetector) SetConfThreshold(thresh float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config.ConfThreshold = thresh
}

// Detect finds objects in the BGR frame.
func (d *YOLODetector) Detect(img gocv.Mat) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	imgW := float32(img.Cols())
	imgH := float32(img.Rows())

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	return d.parseOutput(output, imgW, imgH), nil
}

// parseOutput decodes the YOLOv8 output tensor.
// Shape is [1, 84, 8400]: 4 bbox values plus 80 class scores per candidate.
func (d *YOLODetector) parseOutput(output gocv.Mat, imgW, imgH float32) []Detection {
	var detections []Detection
	var boxes []image.Rectangle
	var confidences []float32
	var classIDs []int

	rows := output.Cols() // 8400 candidates
	cols := output.Rows() // 84 = 4 bbox + 80 classes

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil
	}

	for i := 0; i < rows; i++ {
		maxScore := float32(0)
		maxClassID := 0

		for c := 4; c < cols; c++ {
			score := data[c*rows+i]
			if score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}

		if maxScore < d.config.ConfThreshold {
			continue
		}

		// Center format, model input scale
		cx := data[0*rows+i]
		cy := data[1*rows+i]
		w := data[2*rows+i]
		h := data[3*rows+i]

		x1 := int((cx - w/2) * imgW / float32(d.config.InputWidth))
		y1 := int((cy - h/2) * imgH / float32(d.config.InputHeight))
		x2 := int((cx + w/2) * imgW / float32(d.config.InputWidth))
		y2 := int((cy + h/2) * imgH / float32(d.config.InputHeight))

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		confidences = append(confidences, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(boxes) == 0 {
		return detections
	}

	indices := gocv.NMSBoxes(boxes, confidences, d.config.ConfThreshold, d.config.NMSThreshold)

	for _, idx := range indices {
		detections = append(detections, Detection{
			Box:        boxes[idx],
			Confidence: confidences[idx],
			ClassID:    classIDs[idx],
			ClassName:  COCOClasses[classIDs[idx]],
		})
	}

	return detections
}

// Close releases the underlying network.
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
