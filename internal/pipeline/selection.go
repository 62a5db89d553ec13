package pipeline

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"masktrack/internal/imaging"
)

// ErrInteractiveSelection is returned when the interactive selection mode is
// requested. The mode is declared but not implemented.
var ErrInteractiveSelection = errors.New("interactive mask selection is not implemented")

// Selector collapses a candidate set to the index of a single mask. The masks
// and scores slices are parallel and non-empty.
type Selector interface {
	Select(masks []gocv.Mat, scores []float32) (int, error)
}

// MaxScore picks the candidate with the strictly highest confidence score.
// Ties go to the first occurrence.
type MaxScore struct{}

func (MaxScore) Select(masks []gocv.Mat, scores []float32) (int, error) {
	if len(masks) == 0 {
		return 0, errors.New("empty candidate set")
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, nil
}

// NearestMask picks the candidate with the minimum mean squared pixel
// difference against a reference mask, favouring temporal consistency with
// the previous frame. Ties go to the first occurrence.
type NearestMask struct {
	Ref gocv.Mat
}

func (s NearestMask) Select(masks []gocv.Mat, scores []float32) (int, error) {
	if len(masks) == 0 {
		return 0, errors.New("empty candidate set")
	}

	best := 0
	bestDist := imaging.MeanSquaredDiff(masks[0], s.Ref)
	for i := 1; i < len(masks); i++ {
		if d := imaging.MeanSquaredDiff(masks[i], s.Ref); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, nil
}

// ManualIndex bypasses scoring entirely and picks a fixed candidate. Used for
// the key frame when the caller already knows which candidate is right.
type ManualIndex struct {
	Idx int
}

func (s ManualIndex) Select(masks []gocv.Mat, scores []float32) (int, error) {
	if s.Idx < 0 || s.Idx >= len(masks) {
		return 0, fmt.Errorf("mask index %d out of range, %d candidates", s.Idx, len(masks))
	}
	return s.Idx, nil
}

// Interactive is a placeholder for a human-in-the-loop selection mode.
type Interactive struct{}

func (Interactive) Select(masks []gocv.Mat, scores []float32) (int, error) {
	return 0, ErrInteractiveSelection
}
