package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"gocv.io/x/gocv"
)

// RenderOverlay blends a translucent colored layer over the frame wherever
// the mask is set. Caller owns the returned Mat.
func RenderOverlay(frame, mask gocv.Mat) gocv.Mat {
	tint := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 144, 30, 0), frame.Rows(), frame.Cols(), gocv.MatTypeCV8UC3)
	defer tint.Close()

	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(frame, 0.6, tint, 0.4, 0, &blended)

	out := frame.Clone()
	blended.CopyToWithMask(&out, mask)
	return out
}

// WriteOverlayVideo renders an overlay per frame into a staging directory and
// assembles the sequence into a video at the given frame rate and quality.
// The staging directory is removed afterwards.
func WriteOverlayVideo(frames, masks []gocv.Mat, outPath string, fps, quality int) error {
	if len(frames) != len(masks) {
		return fmt.Errorf("got %d masks for %d frames", len(masks), len(frames))
	}

	stage := filepath.Join(os.TempDir(), "masktrack-"+uuid.NewString())
	if err := os.MkdirAll(stage, 0755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	for i := range frames {
		overlay := RenderOverlay(frames[i], masks[i])
		p := filepath.Join(stage, fmt.Sprintf("%05d.png", i))
		ok := gocv.IMWrite(p, overlay)
		overlay.Close()
		if !ok {
			return fmt.Errorf("write overlay %s", p)
		}
	}

	return assemble(filepath.Join(stage, "%05d.png"), outPath, fps, quality)
}

func assemble(pattern, outPath string, fps, quality int) error {
	err := ffmpeg.Input(pattern, ffmpeg.KwArgs{"framerate": strconv.Itoa(fps)}).
		Output(outPath, ffmpeg.KwArgs{
			"vcodec":  "libx264",
			"pix_fmt": "yuv420p",
			"crf":     strconv.Itoa(crfFromQuality(quality)),
		}).
		OverWriteOutput().
		WithErrorOutput(os.Stderr).
		Run()
	if err != nil {
		return fmt.Errorf("assemble video %s: %w", outPath, err)
	}
	return nil
}

// crfFromQuality maps the 0..10 quality scale onto x264 CRF, where higher
// quality means a lower CRF.
func crfFromQuality(quality int) int {
	if quality < 0 {
		quality = 0
	}
	if quality > 10 {
		quality = 10
	}
	return 34 - 2*quality
}
