package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	apperrors "github.com/screensentry/platform/internal/errors"
	"github.com/screensentry/platform/internal/match"
	"github.com/screensentry/platform/internal/monitor"
	"github.com/screensentry/platform/internal/overlay"
	"github.com/screensentry/platform/internal/stats"
	"github.com/screensentry/platform/internal/trace"
)

// Monitor is the control surface the server drives.
type Monitor interface {
	State() monitor.State
	Start(ctx context.Context) error
	Stop()
	Snapshot() monitor.Snapshot
	AddTarget(pattern, note string) error
	RemoveTarget(pattern string) bool
	SetMode(mode match.Mode)
	SetThreshold(threshold int) error
	SetStyle(mode match.Mode, st overlay.Style) error
	ResetStyles()
	DetectOnce(ctx context.Context) ([]match.Match, error)
}

// Overlays is the subset of the overlay scheduler the server reads.
type Overlays interface {
	Live() int
	Events() <-chan overlay.Event
}

// Message types.
type Message struct {
	Type string `json:"type"`
}

type CycleMessage struct {
	Type  string      `json:"type"`
	Cycle stats.Cycle `json:"cycle"`
}

type OverlayMessage struct {
	Type  string        `json:"type"`
	Event overlay.Event `json:"event"`
}

type DetectMessage struct {
	Type    string        `json:"type"`
	Matches []match.Match `json:"matches"`
	TraceID string        `json:"trace_id,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	// Prune old timestamps
	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	mon      Monitor
	overlays Overlays
	reporter *stats.Reporter

	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter
}

// New creates a new server and starts the event broadcasters.
func New(mon Monitor, overlays Overlays, reporter *stats.Reporter) *Server {
	s := &Server{
		mon:        mon,
		overlays:   overlays,
		reporter:   reporter,
		conns:      make(map[*websocket.Conn]struct{}),
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
	}

	// Start broadcasters
	go s.broadcastCycles()
	go s.broadcastOverlays()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/targets", s.handleTargetsList)
	mux.HandleFunc("POST /api/targets", s.handleTargetsAdd)
	mux.HandleFunc("DELETE /api/targets/{pattern}", s.handleTargetsRemove)
	mux.HandleFunc("POST /api/mode", s.handleMode)
	mux.HandleFunc("POST /api/threshold", s.handleThreshold)
	mux.HandleFunc("GET /api/styles", s.handleStylesList)
	mux.HandleFunc("POST /api/styles/reset", s.handleStylesReset)
	mux.HandleFunc("POST /api/styles/{mode}", s.handleStylesSet)
	mux.HandleFunc("POST /api/monitor/start", s.handleMonitorStart)
	mux.HandleFunc("POST /api/monitor/stop", s.handleMonitorStop)
	mux.HandleFunc("POST /api/detect", s.handleDetect)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/debug/fragments", s.handleDebugFragments)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case apperrors.CodeNoTargets:
		status = http.StatusConflict
	case apperrors.CodeCaptureFailed, apperrors.CodeOCRFailed:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.CodeOf(err).String(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.mon.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         s.mon.State().String(),
		"mode":          snap.Mode.String(),
		"threshold":     snap.Threshold,
		"targets":       len(snap.Targets),
		"total_cycles":  s.reporter.Total(),
		"live_overlays": s.overlays.Live(),
	})
}

func (s *Server) handleTargetsList(w http.ResponseWriter, r *http.Request) {
	targets := s.mon.Snapshot().Targets
	if targets == nil {
		targets = []match.Target{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"targets": targets})
}

func (s *Server) handleTargetsAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pattern string `json:"pattern"`
		Note    string `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.mon.AddTarget(req.Pattern, req.Note); err != nil {
		writeError(w, err)
		return
	}
	trace.Logger(r.Context()).Info("target added", "pattern", req.Pattern)
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (s *Server) handleTargetsRemove(w http.ResponseWriter, r *http.Request) {
	pattern := r.PathValue("pattern")
	if !s.mon.RemoveTarget(pattern) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "target not found"})
		return
	}
	trace.Logger(r.Context()).Info("target removed", "pattern", pattern)
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	mode, err := match.ParseMode(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mon.SetMode(mode)
	writeJSON(w, http.StatusOK, map[string]string{"mode": mode.String()})
}

func (s *Server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Threshold int `json:"threshold"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.mon.SetThreshold(req.Threshold); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"threshold": req.Threshold})
}

func (s *Server) handleStylesList(w http.ResponseWriter, r *http.Request) {
	styles := s.mon.Snapshot().Styles
	out := make(map[string]overlay.Style, len(styles))
	for mode, st := range styles {
		out[mode.String()] = st
	}
	writeJSON(w, http.StatusOK, map[string]any{"styles": out})
}

func (s *Server) handleStylesSet(w http.ResponseWriter, r *http.Request) {
	mode, err := match.ParseMode(r.PathValue("mode"))
	if err != nil {
		writeError(w, err)
		return
	}
	var st overlay.Style
	if !decodeBody(w, r, &st) {
		return
	}
	if err := s.mon.SetStyle(mode, st); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleStylesReset(w http.ResponseWriter, r *http.Request) {
	s.mon.ResetStyles()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleMonitorStart(w http.ResponseWriter, r *http.Request) {
	if err := s.mon.Start(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": s.mon.State().String()})
}

func (s *Server) handleMonitorStop(w http.ResponseWriter, r *http.Request) {
	s.mon.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"state": s.mon.State().String()})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	matches, err := s.mon.DetectOnce(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []match.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matches": matches,
		"count":   len(matches),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"total":  s.reporter.Total(),
		"recent": s.reporter.Recent(RecentCyclesLimit),
	})
}

func (s *Server) handleDebugFragments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fragments": s.reporter.Sample()})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	// Get trace context from HTTP upgrade request
	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		// Check rate limit
		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, ErrorMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		switch base.Type {
		case "detect":
			ctx, _ := trace.EnsureContext(baseCtx)
			s.handleDetectWS(ctx, conn)
		}
	}
}

func (s *Server) handleDetectWS(ctx context.Context, conn *websocket.Conn) {
	ctx, span := trace.StartSpan(ctx, "handle_detect_ws")
	defer span.End()

	log := trace.Logger(ctx)

	matches, err := s.mon.DetectOnce(ctx)
	if err != nil {
		span.SetAttr("error", err.Error())
		log.Error("detect error", "error", err)
		_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: err.Error()})
		return
	}
	if matches == nil {
		matches = []match.Match{}
	}

	tc, _ := trace.FromContext(ctx)
	_ = wsjson.Write(ctx, conn, DetectMessage{
		Type:    "detect_result",
		Matches: matches,
		TraceID: tc.TraceID,
	})
}

func (s *Server) broadcastCycles() {
	for c := range s.reporter.Events() {
		s.broadcast(CycleMessage{Type: "cycle", Cycle: c})
	}
}

func (s *Server) broadcastOverlays() {
	for evt := range s.overlays.Events() {
		s.broadcast(OverlayMessage{Type: "overlay", Event: evt})
	}
}

func (s *Server) broadcast(msg any) {
	s.mu.RLock()
	for conn := range s.conns {
		go func(c *websocket.Conn) {
			_ = wsjson.Write(context.Background(), c, msg)
		}(conn)
	}
	s.mu.RUnlock()
}
