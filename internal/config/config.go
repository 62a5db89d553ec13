package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TrackerBackend   string
	SegmentorBackend string
	InpainterBackend string

	OnnxRuntimeLibPath string // onnxruntime shared library used by the segmentor
	SAMEncoderPath     string // image feature encoder model
	SAMDecoderPath     string // prompt encoder + mask decoder model
	UseCuda            bool

	InpaintRadius int // neighbourhood radius for the inpainter, in pixels

	OutputDir        string
	DilateKernelSize int // mask dilation kernel in pixels, 0 disables
	VideoFPS         int
	VideoQuality     int // 0..10, imageio-style quality scale
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		TrackerBackend:     getEnv("TRACKER_BACKEND", "csrt"),
		SegmentorBackend:   getEnv("SEGMENTOR_BACKEND", "sam2"),
		InpainterBackend:   getEnv("INPAINTER_BACKEND", "telea"),
		OnnxRuntimeLibPath: getEnv("ONNXRUNTIME_LIB", filepath.Join(".", "lib", "libonnxruntime.so")),
		SAMEncoderPath:     getEnv("SAM_ENCODER_PATH", filepath.Join(".", "pretrained_models", "vision_encoder.onnx")),
		SAMDecoderPath:     getEnv("SAM_DECODER_PATH", filepath.Join(".", "pretrained_models", "prompt_encoder_mask_decoder.onnx")),
		UseCuda:            getEnvAsBool("USE_CUDA", false),
		InpaintRadius:      getEnvAsInt("INPAINT_RADIUS", 3),
		OutputDir:          getEnv("OUTPUT_DIR", filepath.Join(".", "results")),
		DilateKernelSize:   getEnvAsInt("DILATE_KERNEL_SIZE", 15),
		VideoFPS:           getEnvAsInt("VIDEO_FPS", 25),
		VideoQuality:       getEnvAsInt("VIDEO_QUALITY", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
