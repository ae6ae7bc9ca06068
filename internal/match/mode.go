// Package match pairs OCR fragments against configured target patterns.
package match

import (
	"strings"

	apperrors "github.com/screensentry/platform/internal/errors"
)

// Mode is the matching strategy applied to every fragment/target pairing.
type Mode int

const (
	ModeExact Mode = iota
	ModeContains
	ModeFuzzy
)

var modeNames = map[Mode]string{
	ModeExact:    "Exact",
	ModeContains: "Contains",
	ModeFuzzy:    "Fuzzy",
}

// String returns the display label carried on matches and overlays.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "Unknown"
}

// ParseMode converts a user-supplied mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return ModeExact, nil
	case "contains":
		return ModeContains, nil
	case "fuzzy":
		return ModeFuzzy, nil
	default:
		return ModeFuzzy, apperrors.Newf(apperrors.CodeConfigInvalid, "unknown match mode %q", s)
	}
}

// Modes lists all matching strategies.
func Modes() []Mode {
	return []Mode{ModeExact, ModeContains, ModeFuzzy}
}
