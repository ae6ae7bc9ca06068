// Package ocr extracts positioned text fragments from screen frames.
package ocr

import (
	"image"
	"strings"
)

// Fragment is one recognized text token with its bounding box and
// confidence (0-100). Fragments are produced fresh each cycle and never
// mutated.
type Fragment struct {
	Text       string          `json:"text"`
	Confidence int             `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// Empty reports whether the fragment carries no usable text.
func (f Fragment) Empty() bool {
	return strings.TrimSpace(f.Text) == ""
}
