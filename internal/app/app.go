package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"masktrack/internal/config"
	"masktrack/internal/logger"
	"masktrack/internal/pipeline"
	"masktrack/internal/services/inpaint"
	"masktrack/internal/services/segment"
	"masktrack/internal/services/tracker"
	"masktrack/internal/video"
)

type App struct {
	config    *config.Config
	logger    *zap.Logger
	tracker   tracker.Tracker
	segmentor segment.Segmentor
	inpainter inpaint.Inpainter
	pipeline  *pipeline.Pipeline
}

// RunOptions are the per-run inputs supplied on the command line.
type RunOptions struct {
	// Input is either a video file or a directory of ordered frame images.
	Input string

	// PointX, PointY locate the foreground point on the key frame.
	PointX float64
	PointY float64

	// MaskIndex picks the key-frame mask candidate directly; negative
	// selects by score.
	MaskIndex int

	// DilateKernelSize overrides the configured kernel when non-negative.
	DilateKernelSize int
}

func New() (*App, error) {
	cfg := config.Load()

	log, err := logger.New()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tr, err := tracker.New(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	seg, err := segment.New(cfg, log)
	if err != nil {
		tr.Close()
		log.Sync()
		return nil, err
	}
	inp, err := inpaint.New(cfg, log)
	if err != nil {
		seg.Close()
		tr.Close()
		log.Sync()
		return nil, err
	}

	return &App{
		config:    cfg,
		logger:    log,
		tracker:   tr,
		segmentor: seg,
		inpainter: inp,
		pipeline:  pipeline.New(tr, seg, inp, log),
	}, nil
}

func (a *App) Run(opts RunOptions) error {
	framePaths, runDir, err := a.collectFrames(opts.Input)
	if err != nil {
		return err
	}

	dilate := a.config.DilateKernelSize
	if opts.DilateKernelSize >= 0 {
		dilate = opts.DilateKernelSize
	}

	a.logger.Info("starting run",
		zap.String("input", opts.Input),
		zap.Int("frames", len(framePaths)),
		zap.Int("dilate_kernel", dilate))

	result, err := a.pipeline.Run(pipeline.Request{
		FramePaths:    framePaths,
		KeyFrameIndex: 0,
		Points: []segment.Point{{
			X:     float32(opts.PointX),
			Y:     float32(opts.PointY),
			Label: segment.LabelForeground,
		}},
		MaskIndex:        opts.MaskIndex,
		DilateKernelSize: dilate,
	})
	if err != nil {
		return err
	}
	defer result.Close()

	maskDir := filepath.Join(runDir, "mask")
	if err := video.WriteMasks(maskDir, framePaths, result.Masks); err != nil {
		return err
	}

	if err := video.DrawBox(result.Frames[0], result.Boxes[0], filepath.Join(runDir, "bbox.png")); err != nil {
		return err
	}

	stem := inputStem(opts.Input)
	outVideo := filepath.Join(runDir, stem+"_w_mask.mp4")
	if err := video.WriteOverlayVideo(result.Frames, result.Masks, outVideo, a.config.VideoFPS, a.config.VideoQuality); err != nil {
		return err
	}

	a.logger.Info("run complete",
		zap.String("masks", maskDir),
		zap.String("video", outVideo))
	return nil
}

// collectFrames resolves the input into an ordered frame path list. A
// directory is taken as pre-extracted frames; a file is decoded into the
// run's raw directory first.
func (a *App) collectFrames(input string) ([]string, string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, "", fmt.Errorf("stat input: %w", err)
	}

	runDir := filepath.Join(a.config.OutputDir, inputStem(input))
	if info.IsDir() {
		paths, err := video.ListFrames(input)
		return paths, runDir, err
	}

	rawDir := filepath.Join(runDir, "raw")
	a.logger.Info("extracting frames", zap.String("video", input), zap.String("dir", rawDir))
	paths, err := video.ExtractFrames(input, rawDir)
	return paths, runDir, err
}

func (a *App) Close() {
	a.tracker.Close()
	a.segmentor.Close()
	a.inpainter.Close()
	a.logger.Sync()
}

func inputStem(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
