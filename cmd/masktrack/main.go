package main

import (
	"flag"
	"log"
	"os"

	"masktrack/internal/app"
)

func main() {
	input := flag.String("input", "", "video file or directory of ordered frame images")
	pointX := flag.Float64("x", 0, "foreground point x on the key frame")
	pointY := flag.Float64("y", 0, "foreground point y on the key frame")
	maskIndex := flag.Int("mask-index", -1, "manual mask candidate index for the key frame, -1 selects by score")
	dilate := flag.Int("dilate", -1, "dilation kernel size in pixels, 0 disables, -1 uses the configured default")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	if err := application.Run(app.RunOptions{
		Input:            *input,
		PointX:           *pointX,
		PointY:           *pointY,
		MaskIndex:        *maskIndex,
		DilateKernelSize: *dilate,
	}); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}
