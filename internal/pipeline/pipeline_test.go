package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"masktrack/internal/imaging"
	"masktrack/internal/services/segment"
)

type fakeTracker struct {
	calls int
	init  imaging.Box
}

func (f *fakeTracker) Track(framePaths []string, init imaging.Box) ([]imaging.Box, error) {
	f.calls++
	f.init = init
	boxes := make([]imaging.Box, len(framePaths))
	for i := range boxes {
		boxes[i] = init
	}
	return boxes, nil
}

func (f *fakeTracker) Close() error { return nil }

// fakeSegmentor serves rectangle candidates: three for point prompts (the key
// frame), two for box prompts (propagation), where the second propagation
// candidate matches the key rectangle.
type fakeSegmentor struct {
	calls   int
	prompts []segment.Prompt
	size    int
	keyRect image.Rectangle
	farRect image.Rectangle
}

func (f *fakeSegmentor) Segment(img gocv.Mat, prompt segment.Prompt) ([]gocv.Mat, []float32, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)

	if len(prompt.Points) > 0 {
		masks := []gocv.Mat{
			solidMask(f.size, f.size, f.farRect),
			solidMask(f.size, f.size, f.keyRect),
			solidMask(f.size, f.size, image.Rectangle{}),
		}
		return masks, []float32{0.9, 0.2, 0.5}, nil
	}

	masks := []gocv.Mat{
		solidMask(f.size, f.size, f.farRect),
		solidMask(f.size, f.size, f.keyRect),
	}
	return masks, []float32{0.9, 0.1}, nil
}

func (f *fakeSegmentor) Close() error { return nil }

type fakeInpainter struct {
	calls int
}

func (f *fakeInpainter) Inpaint(img gocv.Mat, mask gocv.Mat) (gocv.Mat, error) {
	f.calls++
	return img.Clone(), nil
}

func (f *fakeInpainter) Close() error { return nil }

func writeFrames(t *testing.T, dir string, n, size int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(i*40), 80, 120, 0), size, size, gocv.MatTypeCV8UC3)
		p := filepath.Join(dir, fmt.Sprintf("%05d.png", i))
		if ok := gocv.IMWrite(p, frame); !ok {
			t.Fatalf("write frame %s", p)
		}
		frame.Close()
		paths = append(paths, p)
	}
	return paths
}

func TestPipeline_EndToEnd(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pipeline_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	const size = 32
	framePaths := writeFrames(t, tempDir, 3, size)

	keyRect := image.Rect(8, 8, 20, 20)
	tr := &fakeTracker{}
	seg := &fakeSegmentor{size: size, keyRect: keyRect, farRect: image.Rect(0, 0, 4, 4)}
	inp := &fakeInpainter{}
	p := New(tr, seg, inp, zap.NewNop())

	result, err := p.Run(Request{
		FramePaths:       framePaths,
		KeyFrameIndex:    0,
		Points:           []segment.Point{{X: 10, Y: 10, Label: segment.LabelForeground}},
		MaskIndex:        1,
		DilateKernelSize: 0,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer result.Close()

	if len(result.Frames) != 3 || len(result.Masks) != 3 || len(result.Boxes) != 3 {
		t.Fatalf("got %d frames, %d masks, %d boxes, expected 3 of each",
			len(result.Frames), len(result.Masks), len(result.Boxes))
	}

	// Manual index bypasses scoring: candidate 1 (the key rect) wins on the
	// key frame even though candidate 0 has the highest score.
	expectedBox := imaging.BoxFromRect(keyRect)
	if got := imaging.BoxFromMask(result.Masks[0]); got != expectedBox {
		t.Errorf("key mask box = %v, expected %v", got, expectedBox)
	}

	// Propagation scores against the previous mask, so the key-shaped
	// candidate beats the higher-scored far one on every later frame.
	for i := 1; i < 3; i++ {
		if got := imaging.BoxFromMask(result.Masks[i]); got != expectedBox {
			t.Errorf("frame %d mask box = %v, expected %v", i, got, expectedBox)
		}
	}

	// All selected masks are binary.
	for i, mask := range result.Masks {
		for row := 0; row < mask.Rows(); row++ {
			for col := 0; col < mask.Cols(); col++ {
				if v := mask.GetUCharAt(row, col); v != 0 && v != 255 {
					t.Fatalf("mask %d pixel (%d,%d) = %d, expected 0 or 255", i, row, col, v)
				}
			}
		}
	}

	if tr.calls != 1 {
		t.Errorf("tracker called %d times, expected 1", tr.calls)
	}
	if tr.init != expectedBox {
		t.Errorf("tracker init box = %v, expected %v", tr.init, expectedBox)
	}
	if seg.calls != 3 {
		t.Errorf("segmentor called %d times, expected 3", seg.calls)
	}

	// Prompt shapes: points only on the key frame, box only afterwards.
	if len(seg.prompts[0].Points) == 0 || seg.prompts[0].Box != nil {
		t.Error("key frame prompt should carry points and no box")
	}
	for i := 1; i < len(seg.prompts); i++ {
		if seg.prompts[i].Box == nil || len(seg.prompts[i].Points) != 0 {
			t.Errorf("prompt %d should carry a box and no points", i)
		}
	}

	if inp.calls != 0 {
		t.Errorf("inpainter called %d times during the main flow, expected 0", inp.calls)
	}
}

func TestPipeline_KeyFrameMustBeFirst(t *testing.T) {
	tr := &fakeTracker{}
	seg := &fakeSegmentor{size: 8, keyRect: image.Rect(1, 1, 4, 4)}
	p := New(tr, seg, &fakeInpainter{}, zap.NewNop())

	_, err := p.Run(Request{
		FramePaths:    []string{"a.png", "b.png"},
		KeyFrameIndex: 1,
		MaskIndex:     -1,
	})
	if err == nil {
		t.Fatal("expected error for non-zero key frame index")
	}

	// The precondition fails before any adapter is touched.
	if seg.calls != 0 {
		t.Errorf("segmentor called %d times, expected 0", seg.calls)
	}
	if tr.calls != 0 {
		t.Errorf("tracker called %d times, expected 0", tr.calls)
	}
}

func TestResult_Close(t *testing.T) {
	r := &Result{
		Frames: []gocv.Mat{gocv.NewMat()},
		Masks:  []gocv.Mat{gocv.NewMat()},
		Boxes:  []imaging.Box{{X: 1, Y: 2, Width: 3, Height: 4}},
	}

	r.Close()

	if r.Frames != nil || r.Masks != nil || r.Boxes != nil {
		t.Errorf("Close left frames=%v masks=%v boxes=%v, expected all nil",
			r.Frames, r.Masks, r.Boxes)
	}
}

func TestPipeline_NoFrames(t *testing.T) {
	p := New(&fakeTracker{}, &fakeSegmentor{size: 8}, &fakeInpainter{}, zap.NewNop())

	if _, err := p.Run(Request{KeyFrameIndex: 0, MaskIndex: -1}); err == nil {
		t.Fatal("expected error for empty frame list")
	}
}

func TestPipeline_RemoveObjects(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pipeline_inpaint_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	const size = 16
	framePaths := writeFrames(t, tempDir, 2, size)

	inp := &fakeInpainter{}
	seg := &fakeSegmentor{size: size, keyRect: image.Rect(2, 2, 8, 8), farRect: image.Rect(1, 1, 5, 5)}
	p := New(&fakeTracker{}, seg, inp, zap.NewNop())

	result, err := p.Run(Request{
		FramePaths:    framePaths,
		KeyFrameIndex: 0,
		Points:        []segment.Point{{X: 4, Y: 4, Label: segment.LabelForeground}},
		MaskIndex:     -1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer result.Close()

	cleaned, err := p.RemoveObjects(result)
	if err != nil {
		t.Fatalf("RemoveObjects failed: %v", err)
	}
	defer closeMats(cleaned)

	if len(cleaned) != len(result.Frames) {
		t.Errorf("got %d cleaned frames, expected %d", len(cleaned), len(result.Frames))
	}
	if inp.calls != len(result.Frames) {
		t.Errorf("inpainter called %d times, expected %d", inp.calls, len(result.Frames))
	}
}
