package segment

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"masktrack/internal/config"
)

// Label marks what a prompt point means to the model.
type Label int

const (
	LabelBackground Label = 0 // exclude this point from the object
	LabelForeground Label = 1 // the object contains this point
)

// Point is a prompt coordinate on the frame with its label.
type Point struct {
	X     float32
	Y     float32
	Label Label
}

// Prompt describes the region of interest for one Segment call: labelled
// points, a corner-form box, or both.
type Prompt struct {
	Points []Point
	Box    *image.Rectangle
}

// Segmentor produces candidate object masks for a single frame and prompt.
// Masks are single-channel, frame-sized and boolean-valued (0 or 255);
// scores are parallel to masks. Callers own the returned Mats.
type Segmentor interface {
	Segment(img gocv.Mat, prompt Prompt) ([]gocv.Mat, []float32, error)
	Close() error
}

// New constructs the configured segmentor backend. An unknown backend name is
// an error; the caller treats it as fatal.
func New(cfg *config.Config, logger *zap.Logger) (Segmentor, error) {
	switch cfg.SegmentorBackend {
	case "sam2":
		return newSAM2(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported segmentor backend %q", cfg.SegmentorBackend)
	}
}
