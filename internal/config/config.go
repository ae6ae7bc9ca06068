// Package config handles platform configuration
package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr string

	// Cycle pacing (seconds). The loop targets CycleInterval per cycle and
	// never sleeps less than MinCycleDelay between cycles.
	CycleInterval float64
	MinCycleDelay float64
	ErrorBackoff  float64

	// Initial matching parameters; mutable at runtime via the control surface.
	MatchMode           string
	ConfidenceThreshold int

	// OCR engine settings. PageSegMode is passed through to Tesseract.
	OCRLanguage    string
	OCRPageSegMode int
	Preprocess     bool

	// Frame-similarity skip: when enabled, cycles whose capture is
	// perceptually identical to the previous one skip OCR entirely.
	SkipUnchangedFrames bool
	MaxHashDistance     int

	SeedDefaultTargets bool
}

func Load() *Config {
	return &Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8400"),
		CycleInterval:       getEnvFloat("CYCLE_INTERVAL", 2.0),
		MinCycleDelay:       getEnvFloat("MIN_CYCLE_DELAY", 0.5),
		ErrorBackoff:        getEnvFloat("ERROR_BACKOFF", 1.0),
		MatchMode:           getEnv("MATCH_MODE", "fuzzy"),
		ConfidenceThreshold: getEnvInt("CONFIDENCE_THRESHOLD", 30),
		OCRLanguage:         getEnv("OCR_LANGUAGE", "eng"),
		OCRPageSegMode:      getEnvInt("OCR_PAGE_SEG_MODE", 6),
		Preprocess:          getEnvBool("OCR_PREPROCESS", false),
		SkipUnchangedFrames: getEnvBool("SKIP_UNCHANGED_FRAMES", false),
		MaxHashDistance:     getEnvInt("MAX_HASH_DISTANCE", 4),
		SeedDefaultTargets:  getEnvBool("SEED_DEFAULT_TARGETS", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}
