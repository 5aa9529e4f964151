// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the client core.

It defines default timeouts, storage keys, and the navigation routes that the
route guard redirects to, shared between different layers of the client.

Categories:

  - Metadata: Application identity reported in logs and User-Agent.
  - Network Timing: HTTP client timeouts and throttling defaults.
  - Storage: The single persisted token slot key.
  - Navigation: Well-known route paths used by guard redirects.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the store logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-client"
	AppVersion = "0.1.0-dev"
)

// # Network Timing

const (
	// DefaultRequestTimeout is the deadline for a single API round trip.
	// Cancellation beyond this is delegated entirely to the HTTP transport;
	// the stores themselves carry no timeout policy.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultRateLimitRPS is the client-side request budget per second.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the token bucket burst for the client limiter.
	DefaultRateLimitBurst = 40
)

// # Storage

const (
	// TokenSlotKey is the fixed key of the single persisted token slot.
	// login/logout fully overwrite it; absence is a valid state.
	TokenSlotKey = "yomira:session:token"

	// DefaultTokenFileName is the on-disk file backing the slot when the
	// file storage backend is selected.
	DefaultTokenFileName = "session.token"
)

// # Navigation

// Well-known route paths the guard redirects to. The embedding frontend owns
// the actual routing table; these are the contract between guard and router.
const (
	RouteHome       = "/"
	RouteLogin      = "/login"
	RouteDenied     = "/denied"
	RouteRoleDenied = "/denied/role"
)

// # Headers

const (
	// HeaderXRequestID carries the correlation ID on every API call.
	HeaderXRequestID = "X-Request-ID"

	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"
)
