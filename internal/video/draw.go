package video

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"

	"masktrack/internal/imaging"
)

// DrawBox writes a copy of the frame with the box outlined to path.
func DrawBox(frame gocv.Mat, box imaging.Box, path string) error {
	red := color.RGBA{R: 255, G: 0, B: 0, A: 0}

	out := frame.Clone()
	defer out.Close()
	gocv.Rectangle(&out, box.Rect(), red, 2)

	if ok := gocv.IMWrite(path, out); !ok {
		return fmt.Errorf("write box visualization %s", path)
	}
	return nil
}
