package video

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"
)

// ListFrames returns the image files of a directory in lexical order.
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames in %s", dir)
	}

	sort.Strings(paths)
	return paths, nil
}

// ExtractFrames decodes a video file into numbered JPEG frames under dir and
// returns their paths in frame order.
func ExtractFrames(videoPath, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}

	capture, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", videoPath, err)
	}
	defer capture.Close()

	img := gocv.NewMat()
	defer img.Close()

	var paths []string
	for i := 0; ; i++ {
		if ok := capture.Read(&img); !ok || img.Empty() {
			break
		}
		p := filepath.Join(dir, fmt.Sprintf("%05d.jpg", i))
		if ok := gocv.IMWrite(p, img); !ok {
			return nil, fmt.Errorf("write frame %s", p)
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames decoded from %s", videoPath)
	}

	return paths, nil
}

// WriteMasks persists one mask per frame under dir, each named after its
// source frame.
func WriteMasks(dir string, framePaths []string, masks []gocv.Mat) error {
	if len(framePaths) != len(masks) {
		return fmt.Errorf("got %d masks for %d frames", len(masks), len(framePaths))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create mask directory: %w", err)
	}

	for i := range masks {
		p := filepath.Join(dir, filepath.Base(framePaths[i]))
		if ok := gocv.IMWrite(p, masks[i]); !ok {
			return fmt.Errorf("write mask %s", p)
		}
	}
	return nil
}
