package tracker

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"masktrack/internal/imaging"
)

type csrtTracker struct {
	logger *zap.Logger
}

func newCSRT(logger *zap.Logger) *csrtTracker {
	return &csrtTracker{logger: logger.Named("csrt")}
}

func (t *csrtTracker) Track(framePaths []string, init imaging.Box) ([]imaging.Box, error) {
	if len(framePaths) == 0 {
		return nil, errors.New("no frames to track")
	}
	if init.Empty() {
		return nil, errors.New("initial box is empty")
	}

	tr := contrib.NewTrackerCSRT()
	defer tr.Close()

	first := gocv.IMRead(framePaths[0], gocv.IMReadColor)
	if first.Empty() {
		return nil, fmt.Errorf("read frame %s: empty image", framePaths[0])
	}
	defer first.Close()

	if ok := tr.Init(first, init.Rect()); !ok {
		return nil, fmt.Errorf("init tracker on %s", framePaths[0])
	}

	boxes := make([]imaging.Box, 0, len(framePaths))
	boxes = append(boxes, init)

	last := init
	for _, p := range framePaths[1:] {
		frame := gocv.IMRead(p, gocv.IMReadColor)
		if frame.Empty() {
			return nil, fmt.Errorf("read frame %s: empty image", p)
		}

		rect, ok := tr.Update(frame)
		frame.Close()
		if !ok {
			// Target lost. Carry the last box forward; there is no
			// re-detection.
			t.logger.Warn("tracker lost target", zap.String("frame", p))
			boxes = append(boxes, last)
			continue
		}

		last = imaging.BoxFromRect(rect)
		boxes = append(boxes, last)
	}

	return boxes, nil
}

func (t *csrtTracker) Close() error {
	return nil
}
