package overlay

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screensentry/platform/internal/match"
)

// Assumed overlay box size for placement. Overlapping overlays are
// accepted; there is deliberately no collision avoidance between
// simultaneously displayed overlays.
const (
	BoxWidth  = 250
	BoxHeight = 60

	anchorXOffset = 10
	anchorYOffset = 5

	EventBufferSize = 64
)

// Event notifies the surface of overlay lifecycle changes.
type Event struct {
	Kind  string      `json:"kind"` // "created" or "destroyed"
	ID    uuid.UUID   `json:"id"`
	Label string      `json:"label,omitempty"`
	Pos   image.Point `json:"pos"`
	Mode  string      `json:"mode,omitempty"`
	Style Style       `json:"style,omitempty"`
}

// Scheduler owns every live overlay instance: it creates them with a
// placement and a style snapshot, expires them on their timers and
// force-clears them on global stop.
type Scheduler struct {
	mu     sync.Mutex
	live   map[uuid.UUID]*Instance
	events chan Event
}

// NewScheduler creates an overlay scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		live:   make(map[uuid.UUID]*Instance),
		events: make(chan Event, EventBufferSize),
	}
}

// Position computes where an overlay for the given fragment box goes.
// Deterministic, no search: default anchor right of the fragment, flip
// left when clipping the right edge, drop below when above the top,
// clamp to the bottom edge. The result is never negative.
func Position(box image.Rectangle, bounds image.Rectangle) image.Point {
	x := box.Min.X + box.Dx() + anchorXOffset
	y := box.Min.Y - anchorYOffset

	if x+BoxWidth > bounds.Dx() {
		x = box.Min.X - BoxWidth
	}
	if y < 0 {
		y = box.Min.Y + box.Dy() + anchorYOffset
	}
	if y+BoxHeight > bounds.Dy() {
		y = bounds.Dy() - BoxHeight
	}

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return image.Point{X: x, Y: y}
}

// Present creates a timed overlay for the match. The style is snapshotted
// by value; later style edits do not affect this instance.
func (s *Scheduler) Present(m match.Match, st Style, bounds image.Rectangle) *Instance {
	now := time.Now()
	inst := &Instance{
		ID:        uuid.New(),
		Match:     m,
		Style:     st,
		Pos:       Position(m.Fragment.Box, bounds),
		CreatedAt: now,
		onDestroy: s.remove,
	}
	if st.Duration > 0 {
		d := time.Duration(st.Duration * float64(time.Second))
		inst.ExpiresAt = now.Add(d)
		inst.timer = time.AfterFunc(d, inst.Destroy)
	}

	s.mu.Lock()
	s.live[inst.ID] = inst
	s.mu.Unlock()

	s.emit(Event{
		Kind:  "created",
		ID:    inst.ID,
		Label: inst.Label(),
		Pos:   inst.Pos,
		Mode:  m.ModeLabel,
		Style: st,
	})
	return inst
}

// remove drops a destroyed instance from the registry.
func (s *Scheduler) remove(inst *Instance) {
	s.mu.Lock()
	delete(s.live, inst.ID)
	s.mu.Unlock()

	s.emit(Event{Kind: "destroyed", ID: inst.ID, Pos: inst.Pos})
}

// ClearAll force-destroys every live overlay, overriding individual
// timers. This is the global stop path.
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	instances := make([]*Instance, 0, len(s.live))
	for _, inst := range s.live {
		instances = append(instances, inst)
	}
	s.mu.Unlock()

	for _, inst := range instances {
		inst.Destroy()
	}
}

// Live returns the number of currently displayed overlays.
func (s *Scheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Events returns the lifecycle event channel.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// emit sends an event without ever blocking the cycle.
func (s *Scheduler) emit(evt Event) {
	select {
	case s.events <- evt:
	default:
	}
}
