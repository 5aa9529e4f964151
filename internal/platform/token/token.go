// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package token decodes opaque bearer tokens into typed claim sets.

The client never verifies signatures — that is the backend's responsibility
once the token is presented. What the client does guarantee is structural
validity (three dot-separated segments, base64url JSON payload) and expiry
checking, so that a corrupt or stale slot value demotes cleanly to an
anonymous session instead of crashing a frontend.

Architecture:

  - Pure functions: Decode performs no I/O and reads no clocks.
  - Expiry is a separate comparison against a caller-supplied instant, which
    keeps both halves trivially testable.
*/
package token

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/yomira-client/internal/platform/apperr"
	"github.com/taibuivan/yomira-client/internal/platform/sec"
)

// # Claims

// Claims is the typed payload embedded inside a Yomira bearer token.
//
// # Why these fields?
//
// The backend embeds just enough identity (email, role, numeric user ID) for
// the client to gate navigation and scope interaction maps without a profile
// round trip on every route transition.
type Claims struct {
	// Subject is the account email address.
	Subject string `json:"sub"`
	// Role is the account's authorization level.
	Role sec.UserRole `json:"role"`
	// UserID is the numeric account identifier.
	UserID int64 `json:"id"`
	// ExpiresAt is the expiry instant in unix seconds.
	ExpiresAt int64 `json:"exp"`
}

// ExpiredAt reports whether the claims are expired at the given instant.
//
// The comparison allows no clock skew: a token is valid strictly until its
// exp second. Skew tolerance is a known limitation shared with the backend.
func (c *Claims) ExpiredAt(nowUnix int64) bool {
	return c.ExpiresAt <= nowUnix
}

// # Decoding

// parser decodes without signature verification. Claim validation (exp/iat)
// is also skipped here because expiry is checked explicitly by callers with
// their own notion of "now".
var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

/*
Decode parses a bearer token string into [Claims].

Description: Validates the three-segment structure, base64url-decodes the
payload segment, and unmarshals it. The signature segment is carried along
untouched and unchecked. The header segment must also be decodable base64url
JSON (the jwt parser reads it); platform-issued tokens always satisfy this,
and a token with a corrupt header is as unusable as one with a corrupt
payload.

Parameters:
  - tokenString: string

Returns:
  - *Claims: Decoded claim set
  - error: apperr.MalformedToken when the structure or payload is invalid
*/
func Decode(tokenString string) (*Claims, error) {

	// Enforce the exact three-segment shape up front. The jwt parser would
	// reject most malformed inputs too, but its error taxonomy is broader
	// than the single MALFORMED_TOKEN code the session layer keys on.
	if segments := strings.Count(tokenString, "."); segments != 2 {
		return nil, apperr.MalformedToken(fmt.Errorf("token: expected 3 segments, got %d", segments+1))
	}

	// Unverified parse: yields the raw payload map without a key.
	parsed, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, apperr.MalformedToken(fmt.Errorf("token: payload decode failed: %w", err))
	}

	// Re-marshal the generic claim map into the typed struct. This keeps the
	// JSON field mapping (sub/role/id/exp) in exactly one place.
	raw, err := json.Marshal(parsed.Claims)
	if err != nil {
		return nil, apperr.MalformedToken(fmt.Errorf("token: claim marshal failed: %w", err))
	}

	claims := &Claims{}
	if err := json.Unmarshal(raw, claims); err != nil {
		return nil, apperr.MalformedToken(fmt.Errorf("token: claim unmarshal failed: %w", err))
	}

	return claims, nil
}

/*
DecodeValid decodes a token and additionally rejects expired claims.

Parameters:
  - tokenString: string
  - nowUnix: int64 (the instant to evaluate expiry against)

Returns:
  - *Claims: Decoded, unexpired claim set
  - error: apperr.MalformedToken or apperr.TokenExpired
*/
func DecodeValid(tokenString string, nowUnix int64) (*Claims, error) {
	claims, err := Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.ExpiredAt(nowUnix) {
		return nil, apperr.TokenExpired()
	}
	return claims, nil
}
