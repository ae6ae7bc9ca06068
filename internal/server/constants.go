// Package server exposes the monitor's control surface over HTTP and
// WebSocket on localhost.
package server

import "time"

// Server configuration constants
const (
	// Sliding-window rate limit for inbound WebSocket messages.
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	// Cap on cycle records returned by the stats endpoint.
	RecentCyclesLimit = 20
)
