// Package screen provides platform-agnostic screen capture
package screen

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"sync"

	apperrors "github.com/screensentry/platform/internal/errors"
)

// Default virtual screen size, used until the first successful capture
// reveals the real dimensions.
const (
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080
)

// Capturer captures full virtual-screen frames as encoded image bytes.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, error)
	Bounds() image.Rectangle
	Close()
}

// backend implements platform-specific raw capture
type backend interface {
	captureRaw(ctx context.Context) ([]byte, error)
	cleanup()
}

// baseCapturer wraps a platform backend and tracks the virtual screen
// bounds observed from captured frames.
type baseCapturer struct {
	backend
	tempDir string

	mu     sync.Mutex
	bounds image.Rectangle
}

func newBase(b backend, tempDir string) *baseCapturer {
	return &baseCapturer{
		backend: b,
		tempDir: tempDir,
		bounds:  image.Rect(0, 0, DefaultScreenWidth, DefaultScreenHeight),
	}
}

// Capture grabs one frame. Failures surface as CAPTURE_FAILED errors and
// must not be retried within the same cycle.
func (c *baseCapturer) Capture(ctx context.Context) ([]byte, error) {
	data, err := c.captureRaw(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCaptureFailed, "screen capture failed")
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.CodeCaptureFailed, "screen capture returned no data")
	}

	// Cheap header decode to learn the virtual screen size.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		c.mu.Lock()
		c.bounds = image.Rect(0, 0, cfg.Width, cfg.Height)
		c.mu.Unlock()
	}
	return data, nil
}

// Bounds returns the virtual screen rectangle observed so far.
func (c *baseCapturer) Bounds() image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

// Close cleans up backend resources and the temp directory.
func (c *baseCapturer) Close() {
	c.cleanup()
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}
