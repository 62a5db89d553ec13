package tracker

import (
	"fmt"

	"go.uber.org/zap"

	"masktrack/internal/config"
	"masktrack/internal/imaging"
)

// Tracker follows one object through an ordered frame sequence. Given the
// full list of frame paths and an initial (x, y, w, h) box on the first
// frame, it returns one box per frame in the same order and format.
type Tracker interface {
	Track(framePaths []string, init imaging.Box) ([]imaging.Box, error)
	Close() error
}

// New constructs the configured tracker backend. An unknown backend name is
// an error; the caller treats it as fatal.
func New(cfg *config.Config, logger *zap.Logger) (Tracker, error) {
	switch cfg.TrackerBackend {
	case "csrt":
		return newCSRT(logger), nil
	default:
		return nil, fmt.Errorf("unsupported tracker backend %q", cfg.TrackerBackend)
	}
}
