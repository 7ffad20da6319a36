package pipeline

import (
	"sync/atomic"
	"time"
)

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Received          int64 `json:"received"`
	Processed         int64 `json:"processed"`
	DroppedBusy       int64 `json:"dropped_busy"`
	DecodeErrors      int64 `json:"decode_errors"`
	DetectionErrors   int64 `json:"detection_errors"`
	InvalidDimensions int64 `json:"invalid_dimensions"`
	StaleDiscarded    int64 `json:"stale_discarded"`
	StoppedDiscarded  int64 `json:"stopped_discarded"`
	ImagesShown       int64 `json:"images_shown"`
	OverlaysApplied   int64 `json:"overlays_applied"`

	LastFaces     int           `json:"last_faces"`
	LastSeq       uint64        `json:"last_seq"`
	LastDetection time.Duration `json:"last_detection_ns"`
}

type counters struct {
	received          atomic.Int64
	processed         atomic.Int64
	droppedBusy       atomic.Int64
	decodeErrors      atomic.Int64
	detectionErrors   atomic.Int64
	invalidDimensions atomic.Int64
	staleDiscarded    atomic.Int64
	stoppedDiscarded  atomic.Int64
	imagesShown       atomic.Int64
	overlaysApplied   atomic.Int64

	lastFaces     atomic.Int64
	lastSeq       atomic.Uint64
	lastDetection atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Received:          c.received.Load(),
		Processed:         c.processed.Load(),
		DroppedBusy:       c.droppedBusy.Load(),
		DecodeErrors:      c.decodeErrors.Load(),
		DetectionErrors:   c.detectionErrors.Load(),
		InvalidDimensions: c.invalidDimensions.Load(),
		StaleDiscarded:    c.staleDiscarded.Load(),
		StoppedDiscarded:  c.stoppedDiscarded.Load(),
		ImagesShown:       c.imagesShown.Load(),
		OverlaysApplied:   c.overlaysApplied.Load(),
		LastFaces:         int(c.lastFaces.Load()),
		LastSeq:           c.lastSeq.Load(),
		LastDetection:     time.Duration(c.lastDetection.Load()),
	}
}
