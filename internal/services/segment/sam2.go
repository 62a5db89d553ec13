package segment

import (
	"fmt"

	"github.com/getcharzp/go-vision/sam2"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"masktrack/internal/config"
)

// sam2Segmentor runs SAM2 over ONNX Runtime. The engine keeps at most one
// encoded image in memory, so every Segment call scopes an image context and
// releases it on all exit paths.
type sam2Segmentor struct {
	engine *sam2.Engine
	logger *zap.Logger
}

func newSAM2(cfg *config.Config, logger *zap.Logger) (*sam2Segmentor, error) {
	engine, err := sam2.NewEngine(sam2.Config{
		OnnxRuntimeLibPath: cfg.OnnxRuntimeLibPath,
		EncodeModelPath:    cfg.SAMEncoderPath,
		DecodeModelPath:    cfg.SAMDecoderPath,
		UseCuda:            cfg.UseCuda,
	})
	if err != nil {
		return nil, fmt.Errorf("init sam2 engine: %w", err)
	}

	return &sam2Segmentor{
		engine: engine,
		logger: logger.Named("sam2"),
	}, nil
}

func (s *sam2Segmentor) Segment(img gocv.Mat, prompt Prompt) ([]gocv.Mat, []float32, error) {
	src, err := img.ToImage()
	if err != nil {
		return nil, nil, fmt.Errorf("convert frame: %w", err)
	}

	imgCtx, err := s.engine.EncodeImage(src)
	if err != nil {
		return nil, nil, fmt.Errorf("encode image: %w", err)
	}
	defer imgCtx.Destroy()

	result, score, err := imgCtx.Decode(promptPoints(prompt))
	if err != nil {
		return nil, nil, fmt.Errorf("decode mask: %w", err)
	}

	rgb, err := gocv.ImageToMatRGB(result)
	if err != nil {
		return nil, nil, fmt.Errorf("convert mask: %w", err)
	}
	defer rgb.Close()

	mask := gocv.NewMat()
	gocv.CvtColor(rgb, &mask, gocv.ColorRGBToGray)
	gocv.Threshold(mask, &mask, 0, 255, gocv.ThresholdBinary)

	s.logger.Debug("mask decoded", zap.Float32("score", float32(score)))

	// One mask per decode with this engine; the slice contract leaves room
	// for backends that emit several candidates per prompt.
	return []gocv.Mat{mask}, []float32{float32(score)}, nil
}

func (s *sam2Segmentor) Close() error {
	s.engine.Destroy()
	return nil
}

// promptPoints flattens the prompt into the model's point encoding: labelled
// foreground/background points, and box corners as the dedicated top-left and
// bottom-right labels.
func promptPoints(prompt Prompt) []sam2.Point {
	points := make([]sam2.Point, 0, len(prompt.Points)+2)
	for _, p := range prompt.Points {
		label := sam2.LabelForeground
		if p.Label == LabelBackground {
			label = sam2.LabelBackground
		}
		points = append(points, sam2.Point{X: p.X, Y: p.Y, Label: label})
	}

	if prompt.Box != nil {
		points = append(points,
			sam2.Point{X: float32(prompt.Box.Min.X), Y: float32(prompt.Box.Min.Y), Label: sam2.LabelBoxTopLeft},
			sam2.Point{X: float32(prompt.Box.Max.X), Y: float32(prompt.Box.Max.Y), Label: sam2.LabelBoxBotRight},
		)
	}

	return points
}
