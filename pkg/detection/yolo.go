//go:build opencv

package detection

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
)

// YOLODetector runs a single-class YOLOv8 face model through OpenCV DNN
type YOLODetector struct {
	net       gocv.Net
	config    Config
	logger    *slog.Logger
	mu        sync.Mutex
	inputSize image.Point
	closed    bool
}

func newYOLO(cfg Config, logger *slog.Logger) (Detector, error) {
	return NewYOLO(cfg, logger)
}

// NewYOLO creates a new YOLO face detector
func NewYOLO(cfg Config, logger *slog.Logger) (*YOLODetector, error) {
	// Check if model file exists
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	// Load ONNX model
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}

	// Set backend and target
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:       net,
		config:    cfg,
		logger:    log.Or(logger),
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Name identifies the backend in logs and errors.
func (d *YOLODetector) Name() string { return string(BackendYOLO) }

// Detect finds faces in the upright pixels of img
func (d *YOLODetector) Detect(ctx context.Context, img *frame.OrientedImage) ([]Detection, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	mat, err := gocv.ImageToMatRGB(img.Upright())
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float32(mat.Cols())
	imgH := float32(mat.Rows())

	// Create blob from image
	blob := gocv.BlobFromImage(mat, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	return d.parseOutput(output, imgW, imgH)
}

// parseOutput parses a [1, C, N] tensor where rows 0-3 are cx, cy, w, h in
// model input pixels and row 4 is the face score. Extra rows (landmarks) are
// ignored.
func (d *YOLODetector) parseOutput(output gocv.Mat, imgW, imgH float32) ([]Detection, error) {
	dims := output.Size()
	if len(dims) != 3 || dims[1] < 5 {
		return nil, fmt.Errorf("unexpected YOLO output shape %v", dims)
	}
	channels, count := dims[1], dims[2]

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read YOLO output: %w", err)
	}
	if len(data) < channels*count {
		return nil, fmt.Errorf("YOLO output has %d values, want %d", len(data), channels*count)
	}

	thresh := float32(d.config.ConfidenceThresh)
	sx := imgW / float32(d.config.InputWidth)
	sy := imgH / float32(d.config.InputHeight)

	var boxes []image.Rectangle
	var confidences []float32

	for i := 0; i < count; i++ {
		score := data[4*count+i]
		if score < thresh {
			continue
		}

		cx := data[0*count+i]
		cy := data[1*count+i]
		w := data[2*count+i]
		h := data[3*count+i]

		// Convert to corner format and scale to image size
		x1 := int((cx - w/2) * sx)
		y1 := int((cy - h/2) * sy)
		x2 := int((cx + w/2) * sx)
		y2 := int((cy + h/2) * sy)

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		confidences = append(confidences, score)
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	indices := gocv.NMSBoxes(boxes, confidences, thresh, float32(d.config.NMSThresh))

	detections := make([]Detection, 0, len(indices))
	for _, idx := range indices {
		box := boxes[idx]
		detections = append(detections, Detection{
			NormalizedRect: FromPixelRect(
				float64(box.Min.X), float64(box.Min.Y),
				float64(box.Dx()), float64(box.Dy()),
				float64(imgW), float64(imgH),
			),
			Confidence: float64(confidences[idx]),
		})
	}

	return detections, nil
}

// Close releases the detector resources
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.net.Close()
	return nil
}
