package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine wraps a gosseract client. The client is not safe for
// concurrent use, so calls are serialized with a mutex.
type TesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// TesseractConfig fixes engine language and page segmentation mode.
type TesseractConfig struct {
	Language    string
	PageSegMode int
}

// NewTesseractEngine creates a Tesseract-backed OCR engine.
func NewTesseractEngine(cfg TesseractConfig) (*TesseractEngine, error) {
	client := gosseract.NewClient()

	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			client.Close()
			return nil, fmt.Errorf("set language %q: %w", cfg.Language, err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page seg mode %d: %w", cfg.PageSegMode, err)
	}

	return &TesseractEngine{client: client}, nil
}

// Words recognizes word-level fragments in the encoded image.
func (t *TesseractEngine) Words(ctx context.Context, img []byte) ([]Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("get bounding boxes: %w", err)
	}

	fragments := make([]Fragment, 0, len(boxes))
	for _, b := range boxes {
		fragments = append(fragments, Fragment{
			Text:       b.Word,
			Confidence: int(b.Confidence),
			Box:        b.Box,
		})
	}
	return fragments, nil
}

// Close releases the Tesseract client.
func (t *TesseractEngine) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
