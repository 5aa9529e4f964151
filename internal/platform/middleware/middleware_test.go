// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-client/internal/platform/constants"
	"github.com/taibuivan/yomira-client/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-client/internal/platform/middleware"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeToken(t *testing.T, exp int64) string {
	t.Helper()

	payload, err := json.Marshal(map[string]interface{}{
		"sub": "asuka@yomira.dev", "role": "member", "id": 7, "exp": exp,
	})
	require.NoError(t, err)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".devsig"
}

/*
TestRequestID: the middleware honors a client-minted ID, mints one when
absent, and reflects it in the response header.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetRequestID(r.Context())
	}))

	t.Run("honors_incoming_header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "client-id-1")

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "client-id-1", seen)
		assert.Equal(t, "client-id-1", recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("mints_when_absent", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
	})
}

/*
TestAuthenticate covers the three paths: anonymous pass-through, valid
bearer injection, and 401 on anything unusable.
*/
func TestAuthenticate(t *testing.T) {
	now := time.Now()

	newHandler := func(claimsSeen *bool, userID *int64) http.Handler {
		return middleware.Authenticate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := ctxutil.GetClaims(r.Context()); claims != nil {
				*claimsSeen = true
				*userID = claims.UserID
			}
			w.WriteHeader(http.StatusNoContent)
		}))
	}

	t.Run("anonymous_passes_through", func(t *testing.T) {
		var claimsSeen bool
		var userID int64
		recorder := httptest.NewRecorder()

		newHandler(&claimsSeen, &userID).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.False(t, claimsSeen)
	})

	t.Run("valid_bearer_injects_claims", func(t *testing.T) {
		var claimsSeen bool
		var userID int64
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+makeToken(t, now.Add(time.Hour).Unix()))

		newHandler(&claimsSeen, &userID).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.True(t, claimsSeen)
		assert.Equal(t, int64(7), userID)
	})

	rejections := []struct {
		name   string
		header string
	}{
		{"expired_token", "Bearer " + makeToken(t, now.Add(-time.Minute).Unix())},
		{"malformed_token", "Bearer not-a-token"},
		{"wrong_scheme", "Basic dXNlcjpwYXNz"},
		{"missing_token_part", "Bearer"},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			var claimsSeen bool
			var userID int64
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set(constants.HeaderAuthorization, tt.header)

			newHandler(&claimsSeen, &userID).ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.False(t, claimsSeen)

			envelope := map[string]interface{}{}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, "UNAUTHORIZED", envelope["code"])
		})
	}
}

/*
TestPanicRecovery: a panicking handler becomes a 500 envelope, not a dead
process.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("seed data corrupted")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	envelope := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "INTERNAL_ERROR", envelope["code"])
}

/*
TestStructuredLogger_InjectsRequestLogger: downstream handlers see a
non-default logger in the context.
*/
func TestStructuredLogger_InjectsRequestLogger(t *testing.T) {
	var logger *slog.Logger
	handler := middleware.StructuredLogger(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger = ctxutil.GetLogger(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, logger)
	assert.NotSame(t, slog.Default(), logger)
}
