package overlay

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screensentry/platform/internal/match"
)

// Instance is one displayed overlay. It is owned by the Scheduler, expires
// on its own timer and is never mutated externally after creation.
type Instance struct {
	ID        uuid.UUID   `json:"id"`
	Match     match.Match `json:"match"`
	Style     Style       `json:"style"`
	Pos       image.Point `json:"pos"`
	CreatedAt time.Time   `json:"created_at"`
	// ExpiresAt is zero when the style duration is <= 0 (sticky overlay).
	ExpiresAt time.Time `json:"expires_at"`

	mu        sync.Mutex
	destroyed bool
	timer     *time.Timer
	onDestroy func(*Instance)
}

// Destroy removes the overlay. Idempotent: destroying an already-destroyed
// instance is a no-op.
func (i *Instance) Destroy() {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return
	}
	i.destroyed = true
	if i.timer != nil {
		i.timer.Stop()
	}
	cb := i.onDestroy
	i.mu.Unlock()

	if cb != nil {
		cb(i)
	}
}

// Destroyed reports whether the overlay has been removed.
func (i *Instance) Destroyed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}

// Sticky reports whether the overlay never auto-expires.
func (i *Instance) Sticky() bool {
	return i.ExpiresAt.IsZero()
}

// Label is the annotation text rendered by the surface.
func (i *Instance) Label() string {
	return fmt.Sprintf("%s\n'%s'\n%s (%d%%)",
		i.Match.Note, i.Match.Fragment.Text, i.Match.ModeLabel, i.Match.Confidence)
}
