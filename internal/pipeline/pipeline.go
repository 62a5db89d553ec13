package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"masktrack/internal/imaging"
	"masktrack/internal/services/inpaint"
	"masktrack/internal/services/segment"
	"masktrack/internal/services/tracker"
)

// Pipeline sequences the tracker, segmentor and inpainter adapters into the
// mask propagation flow: segment the key frame from a point prompt, track the
// derived box through the sequence, then re-segment every frame from its
// tracked box while scoring candidates against the previous frame's mask.
type Pipeline struct {
	tracker   tracker.Tracker
	segmentor segment.Segmentor
	inpainter inpaint.Inpainter
	logger    *zap.Logger
}

func New(tr tracker.Tracker, seg segment.Segmentor, inp inpaint.Inpainter, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		tracker:   tr,
		segmentor: seg,
		inpainter: inp,
		logger:    logger.Named("pipeline"),
	}
}

// Request carries the per-run inputs.
type Request struct {
	FramePaths    []string
	KeyFrameIndex int
	Points        []segment.Point

	// MaskIndex picks the key-frame candidate directly, bypassing scoring.
	// Negative means select by score.
	MaskIndex int

	// DilateKernelSize expands every selected mask; non-positive disables.
	DilateKernelSize int
}

// Result is one (frame, mask, box) triple per input frame, in frame order.
type Result struct {
	Frames []gocv.Mat
	Masks  []gocv.Mat
	Boxes  []imaging.Box
}

// Close releases every Mat held by the result.
func (r *Result) Close() {
	closeMats(r.Frames)
	closeMats(r.Masks)
	r.Frames = nil
	r.Masks = nil
	r.Boxes = nil
}

// Run executes the full propagation flow. The key frame must be the first
// frame; this is checked before any adapter is touched. Masks are chained:
// the mask selected at frame i scores the candidates at frame i+1, so a bad
// segmentation propagates forward. That matches the upstream behaviour and is
// deliberately not mitigated.
func (p *Pipeline) Run(req Request) (*Result, error) {
	if req.KeyFrameIndex != 0 {
		return nil, fmt.Errorf("key frame must be the first frame, got index %d", req.KeyFrameIndex)
	}
	if len(req.FramePaths) == 0 {
		return nil, errors.New("no frames")
	}

	keyFrame := gocv.IMRead(req.FramePaths[0], gocv.IMReadColor)
	if keyFrame.Empty() {
		return nil, fmt.Errorf("read key frame %s: empty image", req.FramePaths[0])
	}

	keyMask, candidate, err := p.keyFrameMask(keyFrame, req)
	if err != nil {
		keyFrame.Close()
		return nil, err
	}

	keyBox := imaging.BoxFromMask(keyMask)
	p.logger.Info("key frame mask selected",
		zap.Int("candidate", candidate),
		zap.Int("box_w", keyBox.Width),
		zap.Int("box_h", keyBox.Height))

	boxes, err := p.tracker.Track(req.FramePaths, keyBox)
	if err != nil {
		keyFrame.Close()
		keyMask.Close()
		return nil, fmt.Errorf("track: %w", err)
	}
	if len(boxes) != len(req.FramePaths) {
		keyFrame.Close()
		keyMask.Close()
		return nil, fmt.Errorf("tracker returned %d boxes for %d frames", len(boxes), len(req.FramePaths))
	}

	result := &Result{
		Frames: []gocv.Mat{keyFrame},
		Masks:  []gocv.Mat{keyMask},
		Boxes:  boxes,
	}

	ref := keyMask
	for i := 1; i < len(req.FramePaths); i++ {
		frame := gocv.IMRead(req.FramePaths[i], gocv.IMReadColor)
		if frame.Empty() {
			result.Close()
			return nil, fmt.Errorf("read frame %s: empty image", req.FramePaths[i])
		}

		mask, err := p.propagateMask(frame, boxes[i], ref, req.DilateKernelSize)
		if err != nil {
			frame.Close()
			result.Close()
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		result.Frames = append(result.Frames, frame)
		result.Masks = append(result.Masks, mask)
		ref = mask
	}

	p.logger.Info("propagation complete", zap.Int("frames", len(result.Frames)))
	return result, nil
}

// keyFrameMask segments the key frame from the user's point prompt and
// finalizes the selected candidate. The manual index, when given, bypasses
// score-based selection.
func (p *Pipeline) keyFrameMask(keyFrame gocv.Mat, req Request) (gocv.Mat, int, error) {
	masks, scores, err := p.segmentor.Segment(keyFrame, segment.Prompt{Points: req.Points})
	if err != nil {
		return gocv.NewMat(), 0, fmt.Errorf("segment key frame: %w", err)
	}
	defer closeMats(masks)

	var sel Selector = MaxScore{}
	if req.MaskIndex >= 0 {
		sel = ManualIndex{Idx: req.MaskIndex}
	}
	idx, err := sel.Select(masks, scores)
	if err != nil {
		return gocv.NewMat(), 0, fmt.Errorf("select key frame mask: %w", err)
	}

	return finalizeMask(masks[idx], req.DilateKernelSize), idx, nil
}

// propagateMask segments one frame from its tracked box and selects the
// candidate closest to the previous frame's mask. Candidates are binarized
// before scoring so the comparison is over {0, 255} values on both sides.
func (p *Pipeline) propagateMask(frame gocv.Mat, box imaging.Box, ref gocv.Mat, dilateKernel int) (gocv.Mat, error) {
	rect := box.Rect()
	masks, scores, err := p.segmentor.Segment(frame, segment.Prompt{Box: &rect})
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("segment: %w", err)
	}

	binarized := make([]gocv.Mat, len(masks))
	for i := range masks {
		binarized[i] = imaging.Binarize(masks[i])
	}
	closeMats(masks)
	defer closeMats(binarized)

	idx, err := NearestMask{Ref: ref}.Select(binarized, scores)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("select mask: %w", err)
	}

	return imaging.Dilate(binarized[idx], dilateKernel), nil
}

// RemoveObjects inpaints the masked region out of every frame in the result.
// The main flow does not invoke this; it is kept as the removal capability.
func (p *Pipeline) RemoveObjects(res *Result) ([]gocv.Mat, error) {
	out := make([]gocv.Mat, 0, len(res.Frames))
	for i := range res.Frames {
		clean, err := p.inpainter.Inpaint(res.Frames[i], res.Masks[i])
		if err != nil {
			closeMats(out)
			return nil, fmt.Errorf("inpaint frame %d: %w", i, err)
		}
		out = append(out, clean)
	}
	return out, nil
}

func finalizeMask(mask gocv.Mat, dilateKernel int) gocv.Mat {
	bin := imaging.Binarize(mask)
	if dilateKernel <= 0 {
		return bin
	}
	defer bin.Close()
	return imaging.Dilate(bin, dilateKernel)
}

func closeMats(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
