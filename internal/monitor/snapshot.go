package monitor

import (
	"github.com/screensentry/platform/internal/match"
	"github.com/screensentry/platform/internal/overlay"
)

// Snapshot is the immutable configuration handed to each cycle at its
// start. Writers never mutate a published snapshot; they install a clone,
// so the cycle goroutine can read without locks mid-cycle.
type Snapshot struct {
	Targets   []match.Target
	Mode      match.Mode
	Threshold int
	Styles    map[match.Mode]overlay.Style
}

// clone deep-copies the snapshot for copy-on-write updates.
func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Mode:      s.Mode,
		Threshold: s.Threshold,
		Targets:   make([]match.Target, len(s.Targets)),
		Styles:    make(map[match.Mode]overlay.Style, len(s.Styles)),
	}
	copy(out.Targets, s.Targets)
	for k, v := range s.Styles {
		out.Styles[k] = v
	}
	return out
}
