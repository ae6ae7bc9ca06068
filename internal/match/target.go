package match

import "strings"

// Target is one monitored pattern with its annotation note. Pattern is
// stored lowercased; it is the uniqueness key of the target set.
type Target struct {
	Pattern string `json:"pattern"`
	Note    string `json:"note"`
}

// NewTarget normalizes a pattern/note pair.
func NewTarget(pattern, note string) Target {
	return Target{
		Pattern: strings.ToLower(strings.TrimSpace(pattern)),
		Note:    strings.TrimSpace(note),
	}
}

// DefaultTargets returns the seed target set.
func DefaultTargets() []Target {
	return []Target{
		{Pattern: "youtube", Note: "video platform"},
		{Pattern: "windows", Note: "operating system"},
		{Pattern: "tesseract", Note: "OCR engine"},
		{Pattern: "bash", Note: "command line"},
		{Pattern: "translate", Note: "translation"},
		{Pattern: "installed", Note: "package installed"},
		{Pattern: "file", Note: "file"},
		{Pattern: "directory", Note: "directory"},
	}
}
