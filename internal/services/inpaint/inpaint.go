package inpaint

import (
	"fmt"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"masktrack/internal/config"
)

// Inpainter reconstructs the masked region of an image. The caller owns the
// returned Mat.
type Inpainter interface {
	Inpaint(img gocv.Mat, mask gocv.Mat) (gocv.Mat, error)
	Close() error
}

// New constructs the configured inpainter backend. An unknown backend name is
// an error; the caller treats it as fatal.
func New(cfg *config.Config, logger *zap.Logger) (Inpainter, error) {
	switch cfg.InpainterBackend {
	case "telea":
		return newTelea(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported inpainter backend %q", cfg.InpainterBackend)
	}
}
