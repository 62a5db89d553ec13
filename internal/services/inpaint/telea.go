package inpaint

import (
	"errors"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"masktrack/internal/config"
)

type teleaInpainter struct {
	radius float32
	logger *zap.Logger
}

func newTelea(cfg *config.Config, logger *zap.Logger) *teleaInpainter {
	return &teleaInpainter{
		radius: float32(cfg.InpaintRadius),
		logger: logger.Named("telea"),
	}
}

func (t *teleaInpainter) Inpaint(img gocv.Mat, mask gocv.Mat) (gocv.Mat, error) {
	if img.Empty() || mask.Empty() {
		return gocv.NewMat(), errors.New("inpaint: empty image or mask")
	}

	out := gocv.NewMat()
	gocv.Inpaint(img, mask, &out, t.radius, gocv.Telea)
	return out, nil
}

func (t *teleaInpainter) Close() error {
	return nil
}
