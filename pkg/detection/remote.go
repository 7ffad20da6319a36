package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"

	"github.com/teslashibe/go-faceoverlay/internal/httpc"
	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/debug"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
)

// RemoteDetector posts the upright frame as JPEG to an HTTP service.
//
// The service answers with boxes normalized to the posted image, top-left
// origin:
//
//	{"faces": [{"x": 0.1, "y": 0.2, "w": 0.3, "h": 0.3, "score": 0.9}]}
type RemoteDetector struct {
	url     string
	quality int
	client  *http.Client
	logger  *slog.Logger
}

type remoteFace struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Score float64 `json:"score"`
}

type remoteResponse struct {
	Faces []remoteFace `json:"faces"`
	Error string       `json:"error,omitempty"`
}

// NewRemote creates a detector that calls cfg.URL.
func NewRemote(cfg Config, logger *slog.Logger) (*RemoteDetector, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	client := httpc.Client
	if cfg.Timeout > 0 {
		client = httpc.NewClient(cfg.Timeout)
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &RemoteDetector{
		url:     cfg.URL,
		quality: quality,
		client:  client,
		logger:  log.Or(logger),
	}, nil
}

// Name identifies the backend in logs and errors.
func (d *RemoteDetector) Name() string { return string(BackendRemote) }

// Detect uploads img and parses the service's answer.
func (d *RemoteDetector) Detect(ctx context.Context, img *frame.OrientedImage) ([]Detection, error) {
	if img == nil {
		return nil, ErrNilImage
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img.Upright(), &jpeg.Options{Quality: d.quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	resp, err := httpc.PostContext(ctx, d.client, d.url, "image/jpeg", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("post frame: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	}

	var out remoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	debug.Log("🌐 remote detector: %d face(s), %d byte upload\n", len(out.Faces), buf.Len())

	dets := make([]Detection, 0, len(out.Faces))
	for _, f := range out.Faces {
		dets = append(dets, Detection{
			NormalizedRect: FromTopLeft(f.X, f.Y, f.W, f.H),
			Confidence:     f.Score,
		})
	}
	return dets, nil
}

// Close releases idle connections.
func (d *RemoteDetector) Close() error {
	if d.client != httpc.Client {
		d.client.CloseIdleConnections()
	}
	return nil
}
