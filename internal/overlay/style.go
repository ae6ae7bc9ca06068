// Package overlay schedules short-lived annotation overlays near matches.
package overlay

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/screensentry/platform/internal/errors"
	"github.com/screensentry/platform/internal/match"
)

// Style is the visual configuration of an overlay. One instance exists
// per match mode; overlays snapshot it by value at creation so later
// edits never alter an already-displayed overlay.
//
// Duration is in seconds; a value <= 0 means the overlay never
// auto-expires (it is still removed by a global clear).
type Style struct {
	Duration    float64 `json:"duration"`
	Background  string  `json:"background" validate:"required,hexcolor"`
	Foreground  string  `json:"foreground" validate:"required,hexcolor"`
	FontSize    int     `json:"font_size" validate:"min=8,max=16"`
	Alpha       float64 `json:"alpha" validate:"min=0.3,max=1"`
	BorderWidth int     `json:"border_width" validate:"min=0,max=10"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStyle checks style bounds, returning a CONFIG_INVALID error on
// violation so the caller can reject the update and keep the old style.
func ValidateStyle(s Style) error {
	if err := validate.Struct(s); err != nil {
		return apperrors.Wrap(err, apperrors.CodeConfigInvalid, "invalid overlay style")
	}
	return nil
}

// DefaultStyles returns the per-mode defaults. Style reset is this pure
// function; no session teardown is involved.
func DefaultStyles() map[match.Mode]Style {
	return map[match.Mode]Style{
		match.ModeExact: {
			Duration: 3.0, Background: "#00FF00", Foreground: "#000000",
			FontSize: 10, Alpha: 0.9, BorderWidth: 2,
		},
		match.ModeContains: {
			Duration: 2.5, Background: "#FFD700", Foreground: "#000000",
			FontSize: 9, Alpha: 0.9, BorderWidth: 2,
		},
		match.ModeFuzzy: {
			Duration: 2.0, Background: "#FF6B6B", Foreground: "#FFFFFF",
			FontSize: 9, Alpha: 0.9, BorderWidth: 2,
		},
	}
}
