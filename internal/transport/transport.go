// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package transport implements the REST collaborator layer of the client core.

It owns everything HTTP: base URL joining, bearer injection, request
correlation IDs, client-side throttling, the platform's JSON envelopes, and
the mapping of error responses into [apperr.AppError] values. The stores
above it never see an *http.Response.

Architecture:

  - Client: The shared HTTP plumbing (one per API endpoint).
  - AuthAPI: The auth collaborator consumed by the session store.
  - RelationshipAPI: The per-kind collaborator consumed by interaction stores.

Timeout policy lives entirely here: the stores issue calls with plain
contexts and rely on this layer's deadline.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/yomira-client/internal/platform/apperr"
	"github.com/taibuivan/yomira-client/internal/platform/constants"
	"github.com/taibuivan/yomira-client/internal/platform/ctxutil"
)

// # Envelopes

// successEnvelope mirrors the platform's `{"data": ...}` success shape.
type successEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// errorEnvelope mirrors the platform's error shape.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// # Bearer Source

// BearerSource supplies the current bearer token for request injection.
// Satisfied by the session store; wired after construction because the
// session store itself depends on [AuthAPI].
type BearerSource interface {
	Token() string
}

// # Client

// Client is the shared HTTP plumbing for one Yomira API endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger

	mu     sync.RWMutex
	bearer BearerSource
}

// NewClient constructs a throttled HTTP client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst),
		log:     log,
	}
}

// SetBearerSource wires the session store in after construction.
func (client *Client) SetBearerSource(source BearerSource) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.bearer = source
}

// token returns the current bearer token, or "" when anonymous.
func (client *Client) token() string {
	client.mu.RLock()
	defer client.mu.RUnlock()
	if client.bearer == nil {
		return ""
	}
	return client.bearer.Token()
}

// # Request Execution

/*
do executes one JSON round trip against the API.

Parameters:
  - context: context.Context
  - method: string
  - path: string (joined under the base URL)
  - body: interface{} (request payload, nil for none)
  - out: interface{} (decoded from the data envelope, nil to discard)

Returns:
  - error: apperr.Transport carrying the server code/message when available
*/
func (client *Client) do(context context.Context, method, path string, body, out interface{}) error {

	// Client-side throttling: a burst of toggles must not hammer the API.
	if err := client.limiter.Wait(context); err != nil {
		return apperr.Transport("", "", fmt.Errorf("transport: rate limiter: %w", err))
	}

	// Encode the payload
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperr.Transport("", "", fmt.Errorf("transport: encode body: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(context, method, client.baseURL+path, reader)
	if err != nil {
		return apperr.Transport("", "", fmt.Errorf("transport: build request: %w", err))
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", constants.AppName+"/"+constants.AppVersion)
	request.Header.Set(constants.HeaderXRequestID, requestID(context))

	if bearer := client.token(); bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearer)
	}

	response, err := client.http.Do(request)
	if err != nil {
		client.log.Warn("api_request_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return apperr.Transport("", "", err)
	}
	defer func() { _ = response.Body.Close() }()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return apperr.Transport("", "", fmt.Errorf("transport: read body: %w", err))
	}

	// Non-2xx: surface the server's own code and message when decodable.
	if response.StatusCode >= 400 {
		envelope := errorEnvelope{}
		if decodeErr := json.Unmarshal(payload, &envelope); decodeErr != nil {
			return apperr.Transport("", "",
				fmt.Errorf("transport: %s %s returned status %d", method, path, response.StatusCode))
		}
		return apperr.Transport(envelope.Code, envelope.Error,
			fmt.Errorf("transport: %s %s returned status %d", method, path, response.StatusCode))
	}

	if out == nil || len(payload) == 0 {
		return nil
	}

	envelope := successEnvelope{}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return apperr.Transport("", "", fmt.Errorf("transport: decode envelope: %w", err))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperr.Transport("", "", fmt.Errorf("transport: decode data: %w", err))
	}
	return nil
}

// requestID reuses a correlation ID already present in the context, else
// mints a fresh one (UUID v7 for time-sortable log correlation).
func requestID(context context.Context) string {
	if id := ctxutil.GetRequestID(context); id != "" {
		return id
	}
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return uuidV7.String()
}
