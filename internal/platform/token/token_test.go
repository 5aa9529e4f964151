// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package token_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-client/internal/platform/apperr"
	"github.com/taibuivan/yomira-client/internal/platform/sec"
	"github.com/taibuivan/yomira-client/internal/platform/token"
)

// encode builds a structurally valid unsigned token around the payload.
func encode(t *testing.T, payload map[string]interface{}) string {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(raw) + ".devsig"
}

/*
TestDecode_ValidToken verifies the claim mapping for a well-formed token.
*/
func TestDecode_ValidToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Unix()
	bearer := encode(t, map[string]interface{}{
		"sub":  "asuka@yomira.dev",
		"role": "member",
		"id":   7,
		"exp":  expiry,
	})

	claims, err := token.Decode(bearer)
	require.NoError(t, err)

	assert.Equal(t, "asuka@yomira.dev", claims.Subject)
	assert.Equal(t, sec.RoleMember, claims.Role)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, expiry, claims.ExpiresAt)
}

/*
TestDecode_Malformed checks every structural failure mode maps to MALFORMED_TOKEN.
*/
func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"one_segment", "justonesegment"},
		{"two_segments", "left.right"},
		{"four_segments", "a.b.c.d"},
		{"header_not_base64", "%%%not-base64%%%." + base64.RawURLEncoding.EncodeToString([]byte(`{"id":7}`)) + ".sig"},
		{"payload_not_base64", "eyJhbGciOiJIUzI1NiJ9.%%%not-base64%%%.sig"},
		{"payload_not_json", "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := token.Decode(tt.input)

			assert.Nil(t, claims)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, "MALFORMED_TOKEN"))
		})
	}
}

/*
TestClaims_ExpiredAt is the pure boundary comparison: strictly greater
than now is valid, equal or less is expired. No skew allowance.
*/
func TestClaims_ExpiredAt(t *testing.T) {
	now := time.Now().Unix()

	tests := []struct {
		name    string
		exp     int64
		expired bool
	}{
		{"one_hour_left", now + 3600, false},
		{"one_second_left", now + 1, false},
		{"exactly_now", now, true},
		{"one_second_past", now - 1, true},
		{"long_expired", now - 86400, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &token.Claims{ExpiresAt: tt.exp}
			assert.Equal(t, tt.expired, claims.ExpiredAt(now))
		})
	}
}

/*
TestDecodeValid_Expired verifies that an expired but structurally valid
token yields TOKEN_EXPIRED, distinct from the malformed case.
*/
func TestDecodeValid_Expired(t *testing.T) {
	now := time.Now().Unix()
	bearer := encode(t, map[string]interface{}{
		"sub":  "a@b.com",
		"role": "user",
		"id":   7,
		"exp":  now - 60,
	})

	claims, err := token.DecodeValid(bearer, now)

	assert.Nil(t, claims)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "TOKEN_EXPIRED"))
}

/*
TestDecodeValid_Fresh verifies the happy path returns the claims untouched.
*/
func TestDecodeValid_Fresh(t *testing.T) {
	now := time.Now().Unix()
	bearer := encode(t, map[string]interface{}{
		"sub":  "a@b.com",
		"role": "member",
		"id":   9,
		"exp":  now + 120,
	})

	claims, err := token.DecodeValid(bearer, now)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
}
