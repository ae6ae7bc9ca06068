// Package monitor drives the capture, extract, match, overlay cycle.
package monitor

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/screensentry/platform/internal/config"
	apperrors "github.com/screensentry/platform/internal/errors"
	"github.com/screensentry/platform/internal/match"
	"github.com/screensentry/platform/internal/ocr"
	"github.com/screensentry/platform/internal/overlay"
	"github.com/screensentry/platform/internal/stats"
	"github.com/screensentry/platform/internal/syncx"
	"github.com/screensentry/platform/internal/trace"
)

// State of the monitoring session.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "Running"
	}
	return "Idle"
}

// Capturer produces one frame of the virtual screen.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, error)
	Bounds() image.Rectangle
}

// Extractor recognizes text fragments in a frame.
type Extractor interface {
	Extract(ctx context.Context, img []byte) ([]ocr.Fragment, error)
}

// Presenter creates and clears overlay instances.
type Presenter interface {
	Present(m match.Match, st overlay.Style, bounds image.Rectangle) *overlay.Instance
	ClearAll()
}

// Loop orchestrates the detection cycle on a single background goroutine:
// capture, extract, match, schedule overlays, record stats, sleep. One
// cycle is in flight at a time; overlays for cycle N are scheduled before
// cycle N+1 captures.
type Loop struct {
	capturer  Capturer
	extractor Extractor
	overlays  Presenter
	reporter  *stats.Reporter
	skipper   *frameSkipper

	interval time.Duration
	minDelay time.Duration
	backoff  time.Duration

	snap *syncx.RWGuard[Snapshot]

	mu     sync.Mutex
	state  State
	stopCh chan struct{}
}

// New creates an idle monitor loop configured from cfg.
func New(capturer Capturer, extractor Extractor, overlays Presenter, reporter *stats.Reporter, cfg *config.Config) *Loop {
	mode, err := match.ParseMode(cfg.MatchMode)
	if err != nil {
		slog.Warn("invalid match mode, falling back to fuzzy", "mode", cfg.MatchMode)
		mode = match.ModeFuzzy
	}

	snap := Snapshot{
		Mode:      mode,
		Threshold: cfg.ConfidenceThreshold,
		Styles:    overlay.DefaultStyles(),
	}
	if cfg.SeedDefaultTargets {
		snap.Targets = match.DefaultTargets()
	}

	l := &Loop{
		capturer:  capturer,
		extractor: extractor,
		overlays:  overlays,
		reporter:  reporter,
		interval:  secs(cfg.CycleInterval),
		minDelay:  secs(cfg.MinCycleDelay),
		backoff:   secs(cfg.ErrorBackoff),
		snap:      syncx.NewGuard(snap),
	}
	if cfg.SkipUnchangedFrames {
		l.skipper = newFrameSkipper(cfg.MaxHashDistance)
	}
	return l
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// State returns the current session state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start transitions Idle -> Running and begins cycling on a background
// goroutine. Starting with an empty target set fails synchronously with a
// NO_TARGETS error and leaves the state Idle. Starting while already
// running is a no-op.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateRunning {
		return nil
	}
	if len(l.snap.Get().Targets) == 0 {
		return apperrors.New(apperrors.CodeNoTargets, "no monitoring targets configured")
	}

	l.state = StateRunning
	l.stopCh = make(chan struct{})
	go l.run(ctx, l.stopCh)

	slog.Info("monitoring started")
	return nil
}

// Stop transitions Running -> Idle and force-clears every live overlay,
// overriding their individual timers. An in-flight capture or OCR call is
// allowed to complete; its results are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state != StateRunning {
		l.mu.Unlock()
		return
	}
	l.state = StateIdle
	close(l.stopCh)
	l.mu.Unlock()

	l.overlays.ClearAll()
	slog.Info("monitoring stopped")
}

// run is the cycle loop. All per-cycle errors are recoverable: they are
// logged and followed by a fixed backoff, never escalation.
func (l *Loop) run(ctx context.Context, stopCh <-chan struct{}) {
	for {
		if stopped(ctx, stopCh) {
			return
		}

		start := time.Now()
		err := l.cycle(ctx, stopCh)
		elapsed := time.Since(start)

		if stopped(ctx, stopCh) {
			return
		}
		if err != nil {
			slog.Error("cycle failed", "error", err)
			if !l.sleep(ctx, stopCh, l.backoff) {
				return
			}
			continue
		}

		delay := l.interval - elapsed
		if delay < l.minDelay {
			delay = l.minDelay
		}
		if !l.sleep(ctx, stopCh, delay) {
			return
		}
	}
}

// cycle runs one capture -> extract -> match -> present pass.
func (l *Loop) cycle(ctx context.Context, stopCh <-chan struct{}) error {
	ctx, span := trace.StartSpan(ctx, "cycle")
	defer span.End()
	log := trace.Logger(ctx)

	snap := l.snap.Get()
	start := time.Now()

	frame, err := l.capturer.Capture(ctx)
	if err != nil {
		return err
	}
	// Honor stop before committing anything from an in-flight capture.
	if stopped(ctx, stopCh) {
		return nil
	}

	if l.skipper != nil && l.skipper.skip(frame) {
		log.Debug("frame unchanged, skipping recognition")
		l.reporter.Record(stats.Cycle{Elapsed: time.Since(start), Skipped: true})
		return nil
	}

	fragments, err := l.extractor.Extract(ctx, frame)
	if err != nil {
		return err
	}
	if stopped(ctx, stopCh) {
		return nil
	}

	matches := match.Find(fragments, snap.Targets, snap.Mode, snap.Threshold)
	bounds := l.capturer.Bounds()

	// Last stop check before presenting: overlays created past this point
	// would outlive ClearAll.
	if stopped(ctx, stopCh) {
		return nil
	}

	for _, m := range matches {
		st, ok := snap.Styles[m.Mode]
		if !ok {
			st = overlay.DefaultStyles()[m.Mode]
		}
		l.overlays.Present(m, st, bounds)
	}

	elapsed := time.Since(start)
	span.SetAttr("fragments", len(fragments))
	span.SetAttr("matches", len(matches))

	l.reporter.SetSample(fragments)
	l.reporter.Record(stats.Cycle{
		Elapsed:    elapsed,
		MatchCount: len(matches),
		Matches:    matches,
	})

	if len(matches) > 0 {
		log.Info("matches found", "count", len(matches), "elapsed_ms", elapsed.Milliseconds())
	} else {
		log.Debug("cycle complete", "fragments", len(fragments), "elapsed_ms", elapsed.Milliseconds())
	}
	return nil
}

// DetectOnce runs a single capture/extract/match pass without scheduling
// overlays or recording stats. Usable while idle.
func (l *Loop) DetectOnce(ctx context.Context) ([]match.Match, error) {
	ctx, span := trace.StartSpan(ctx, "detect_once")
	defer span.End()

	snap := l.snap.Get()

	frame, err := l.capturer.Capture(ctx)
	if err != nil {
		return nil, err
	}
	fragments, err := l.extractor.Extract(ctx, frame)
	if err != nil {
		return nil, err
	}
	l.reporter.SetSample(fragments)

	return match.Find(fragments, snap.Targets, snap.Mode, snap.Threshold), nil
}

// sleep waits for d, returning false when interrupted by stop or ctx.
func (l *Loop) sleep(ctx context.Context, stopCh <-chan struct{}, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-stopCh:
		return false
	case <-time.After(d):
		return true
	}
}

func stopped(ctx context.Context, stopCh <-chan struct{}) bool {
	select {
	case <-ctx.Done():
		return true
	case <-stopCh:
		return true
	default:
		return false
	}
}

// Snapshot returns a copy of the current configuration.
func (l *Loop) Snapshot() Snapshot {
	return l.snap.Get().clone()
}

// AddTarget inserts or replaces a target; the pattern is the uniqueness
// key. Applied copy-on-write so an in-flight cycle keeps its snapshot.
func (l *Loop) AddTarget(pattern, note string) error {
	t := match.NewTarget(pattern, note)
	if t.Pattern == "" {
		return apperrors.New(apperrors.CodeConfigInvalid, "target pattern must not be empty")
	}

	l.snap.Update(func(s *Snapshot) {
		next := s.clone()
		replaced := false
		for i, existing := range next.Targets {
			if existing.Pattern == t.Pattern {
				next.Targets[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			next.Targets = append(next.Targets, t)
		}
		*s = next
	})
	return nil
}

// RemoveTarget deletes a target by pattern, reporting whether it existed.
func (l *Loop) RemoveTarget(pattern string) bool {
	pattern = match.NewTarget(pattern, "").Pattern
	removed := false

	l.snap.Update(func(s *Snapshot) {
		next := s.clone()
		kept := next.Targets[:0]
		for _, t := range next.Targets {
			if t.Pattern == pattern {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		next.Targets = kept
		*s = next
	})
	return removed
}

// SetMode switches the matching strategy for subsequent cycles.
func (l *Loop) SetMode(mode match.Mode) {
	l.snap.Update(func(s *Snapshot) {
		next := s.clone()
		next.Mode = mode
		*s = next
	})
}

// SetThreshold updates the confidence threshold (0-100).
func (l *Loop) SetThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "confidence threshold %d out of range 0-100", threshold)
	}
	l.snap.Update(func(s *Snapshot) {
		next := s.clone()
		next.Threshold = threshold
		*s = next
	})
	return nil
}

// SetStyle replaces the style for one mode. Invalid styles are rejected
// and the previous style stays in place. Already-displayed overlays keep
// their snapshots.
func (l *Loop) SetStyle(mode match.Mode, st overlay.Style) error {
	if err := overlay.ValidateStyle(st); err != nil {
		return err
	}
	l.snap.Update(func(s *Snapshot) {
		next := s.clone()
		next.Styles[mode] = st
		*s = next
	})
	return nil
}

// ResetStyles restores the per-mode defaults without touching the session.
func (l *Loop) ResetStyles() {
	l.snap.Update(func(s *Snapshot) {
		next := s.clone()
		next.Styles = overlay.DefaultStyles()
		*s = next
	})
}
