package ocr

import (
	"context"
	"image"
	"log/slog"
	"math"

	apperrors "github.com/screensentry/platform/internal/errors"
)

// Engine is the OCR boundary: raw word recognition over an encoded image.
type Engine interface {
	Words(ctx context.Context, img []byte) ([]Fragment, error)
	Close() error
}

// Preprocessor transforms a frame before recognition. Scale reports the
// spatial factor Apply resizes by, so boxes recognized on the processed
// frame can be mapped back to screen coordinates.
type Preprocessor interface {
	Apply(img []byte) ([]byte, error)
	Scale() float64
}

// Extractor runs the engine and filters its output so that empty or
// no-text fragments never reach matching.
type Extractor struct {
	engine Engine
	prep   Preprocessor
}

// NewExtractor creates an extractor. prep may be nil to skip preprocessing.
func NewExtractor(engine Engine, prep Preprocessor) *Extractor {
	return &Extractor{engine: engine, prep: prep}
}

// Extract recognizes word fragments in the frame. Fragments with empty
// trimmed text or negative confidence (engine's "no text" signal) are
// dropped here.
func (e *Extractor) Extract(ctx context.Context, img []byte) ([]Fragment, error) {
	scale := 1.0
	if e.prep != nil {
		if processed, err := e.prep.Apply(img); err == nil {
			img = processed
			scale = e.prep.Scale()
		} else {
			slog.Debug("preprocess failed, using raw frame", "error", err)
		}
	}

	raw, err := e.engine.Words(ctx, img)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOCRFailed, "text extraction failed")
	}

	fragments := make([]Fragment, 0, len(raw))
	for _, f := range raw {
		if f.Empty() || f.Confidence < 0 {
			continue
		}
		if f.Confidence > 100 {
			f.Confidence = 100
		}
		// Boxes recognized on a resized frame map back to screen space.
		if scale != 1.0 && scale > 0 {
			f.Box = unscaleBox(f.Box, scale)
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

// unscaleBox divides box coordinates by the preprocessing scale factor.
func unscaleBox(box image.Rectangle, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Round(float64(box.Min.X)/scale)),
		int(math.Round(float64(box.Min.Y)/scale)),
		int(math.Round(float64(box.Max.X)/scale)),
		int(math.Round(float64(box.Max.Y)/scale)),
	)
}

// Close releases the underlying engine.
func (e *Extractor) Close() error {
	return e.engine.Close()
}
