// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-client/internal/platform/apperr"
	"github.com/taibuivan/yomira-client/internal/platform/storage"
	"github.com/taibuivan/yomira-client/internal/session"
)

// # Test Fixtures

// fakeAuthenticator scripts the auth exchange.
type fakeAuthenticator struct {
	token string
	err   error
	calls int
}

func (auth *fakeAuthenticator) Login(_ context.Context, _, _ string) (string, error) {
	auth.calls++
	if auth.err != nil {
		return "", auth.err
	}
	return auth.token, nil
}

// countingSlot wraps a slot and counts reads, for idempotence assertions.
type countingSlot struct {
	storage.Slot
	reads atomic.Int64
}

func (slot *countingSlot) Read(ctx context.Context) (string, bool, error) {
	slot.reads.Add(1)
	return slot.Slot.Read(ctx)
}

// failingSlot errors on every operation.
type failingSlot struct{}

func (failingSlot) Read(context.Context) (string, bool, error) {
	return "", false, errors.New("disk unreadable")
}
func (failingSlot) Write(context.Context, string) error { return errors.New("disk full") }
func (failingSlot) Clear(context.Context) error         { return errors.New("disk unreadable") }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeToken builds a structurally valid unsigned token for the given claims.
func makeToken(t *testing.T, email, role string, userID, exp int64) string {
	t.Helper()

	payload, err := json.Marshal(map[string]interface{}{
		"sub": email, "role": role, "id": userID, "exp": exp,
	})
	require.NoError(t, err)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".devsig"
}

// # Initialization

/*
TestInitialize_RestoresPersistedSession: a valid token already in the slot
becomes an authenticated session on startup.
*/
func TestInitialize_RestoresPersistedSession(t *testing.T) {
	// 1. Seed the slot with a live token
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	bearer := makeToken(t, "asuka@yomira.dev", "member", 7, time.Now().Add(time.Hour).Unix())
	require.NoError(t, slot.Write(ctx, bearer))

	store := session.New(&fakeAuthenticator{}, slot, quietLogger())

	// 2. Initialize
	require.NoError(t, store.Initialize(ctx))

	// 3. Session is authenticated with the derived identity
	assert.True(t, store.IsAuthenticated())
	identity := store.Identity(ctx)
	require.NotNil(t, identity)
	assert.Equal(t, "asuka@yomira.dev", identity.Email)
	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, bearer, store.Token())
}

/*
TestInitialize_EmptySlot: nothing persisted means anonymous, checked, no error.
*/
func TestInitialize_EmptySlot(t *testing.T) {
	ctx := context.Background()
	store := session.New(&fakeAuthenticator{}, storage.NewMemorySlot(), quietLogger())

	require.NoError(t, store.Initialize(ctx))

	state := store.Snapshot()
	assert.True(t, state.Checked)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, store.Identity(ctx))
}

/*
TestInitialize_RejectsBadPersistedTokens: malformed and expired persisted
tokens leave the session anonymous without error and scrub the slot so the
dead value is not re-decoded on the next startup.
*/
func TestInitialize_RejectsBadPersistedTokens(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		stored func(t *testing.T) string
	}{
		{"malformed_garbage", func(*testing.T) string { return "header.{not-base64}.sig" }},
		{"missing_segments", func(*testing.T) string { return "only-one-piece" }},
		{"expired", func(t *testing.T) string {
			return makeToken(t, "a@b.com", "member", 7, now.Add(-time.Minute).Unix())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. Seed the slot with the dead value
			ctx := context.Background()
			slot := storage.NewMemorySlot()
			require.NoError(t, slot.Write(ctx, tt.stored(t)))

			store := session.New(&fakeAuthenticator{}, slot, quietLogger())

			// 2. Initialize succeeds without surfacing the decode failure
			require.NoError(t, store.Initialize(ctx))

			// 3. Anonymous but checked, slot scrubbed
			state := store.Snapshot()
			assert.False(t, state.IsAuthenticated)
			assert.True(t, state.Checked)

			_, present, err := slot.Read(ctx)
			require.NoError(t, err)
			assert.False(t, present)
		})
	}
}

/*
TestInitialize_Idempotent: after the first pass, later calls never touch
storage again.
*/
func TestInitialize_Idempotent(t *testing.T) {
	ctx := context.Background()
	slot := &countingSlot{Slot: storage.NewMemorySlot()}
	store := session.New(&fakeAuthenticator{}, slot, quietLogger())

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Initialize(ctx))
	}

	assert.Equal(t, int64(1), slot.reads.Load())
}

/*
TestInitialize_StorageFailure: unreadable storage degrades to anonymous and
reports a storage error, but still marks the session checked so guards can
proceed.
*/
func TestInitialize_StorageFailure(t *testing.T) {
	ctx := context.Background()
	store := session.New(&fakeAuthenticator{}, failingSlot{}, quietLogger())

	err := store.Initialize(ctx)

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "STORAGE_ERROR"))
	state := store.Snapshot()
	assert.True(t, state.Checked)
	assert.False(t, state.IsAuthenticated)
}

// # Login / Logout

/*
TestLogin_Success: a full login round trip establishes identity, persists the
token, and clears any previous error message.
*/
func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	bearer := makeToken(t, "mod@yomira.dev", "moderator", 2, time.Now().Add(time.Hour).Unix())
	slot := storage.NewMemorySlot()
	store := session.New(&fakeAuthenticator{token: bearer}, slot, quietLogger())

	require.NoError(t, store.Login(ctx, "mod@yomira.dev", "mod-dev-pass"))

	// State invariant: token and identity set together.
	state := store.Snapshot()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, bearer, state.Token)
	require.NotNil(t, state.Identity)
	assert.Equal(t, int64(2), state.Identity.UserID)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.LastError)

	// Token persisted for the next process.
	persisted, present, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, bearer, persisted)
}

/*
TestLogin_ValidationShortCircuits: blank or non-email input is rejected
locally, before the authenticator is ever consulted.
*/
func TestLogin_ValidationShortCircuits(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"blank_email", "", "secret"},
		{"not_an_email", "not-an-email", "secret"},
		{"blank_password", "a@b.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthenticator{}
			store := session.New(auth, storage.NewMemorySlot(), quietLogger())

			err := store.Login(context.Background(), tt.email, tt.password)

			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
			assert.Zero(t, auth.calls)
		})
	}
}

/*
TestLogin_ServerRejection: a rejected exchange leaves the session anonymous
and surfaces the server's message through LastError and the returned error.
*/
func TestLogin_ServerRejection(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuthenticator{err: apperr.Transport("LOGIN_FAILED", "Invalid login credentials", nil)}
	store := session.New(auth, storage.NewMemorySlot(), quietLogger())

	err := store.Login(ctx, "a@b.com", "wrong")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "LOGIN_FAILED"))
	state := store.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Equal(t, "Invalid login credentials", state.LastError)
}

/*
TestLogin_NetworkFailureUsesGenericMessage: transport-level failures never
leak connection detail into the form message.
*/
func TestLogin_NetworkFailureUsesGenericMessage(t *testing.T) {
	auth := &fakeAuthenticator{err: apperr.Transport("", "", errors.New("dial tcp: refused"))}
	store := session.New(auth, storage.NewMemorySlot(), quietLogger())

	err := store.Login(context.Background(), "a@b.com", "secret")

	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", store.Snapshot().LastError)
}

/*
TestLogin_UndecodableTokenIsLoginFailure: a nominally successful exchange
that returns garbage is reported as a login failure, never a crash, and the
garbage is not persisted.
*/
func TestLogin_UndecodableTokenIsLoginFailure(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	store := session.New(&fakeAuthenticator{token: "not.a.decodable-token"}, slot, quietLogger())

	err := store.Login(ctx, "a@b.com", "secret")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "LOGIN_FAILED"))
	assert.False(t, store.IsAuthenticated())

	_, present, readErr := slot.Read(ctx)
	require.NoError(t, readErr)
	assert.False(t, present)
}

/*
TestLogout_ClearsEverything: login then logout returns to a clean anonymous
state with an empty slot.
*/
func TestLogout_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	bearer := makeToken(t, "a@b.com", "member", 7, time.Now().Add(time.Hour).Unix())
	slot := storage.NewMemorySlot()
	store := session.New(&fakeAuthenticator{token: bearer}, slot, quietLogger())
	require.NoError(t, store.Login(ctx, "a@b.com", "secret"))

	store.Logout(ctx)

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Identity(ctx))
	assert.Empty(t, store.Token())
	// Checked survives reset: the session is known-anonymous, not unknown.
	assert.True(t, store.Snapshot().Checked)

	_, present, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.False(t, present)
}

/*
TestLogout_SurvivesStorageFailure: logout never fails, even when the slot
cannot be cleared.
*/
func TestLogout_SurvivesStorageFailure(t *testing.T) {
	store := session.New(&fakeAuthenticator{}, failingSlot{}, quietLogger())
	store.Logout(context.Background())
	assert.False(t, store.IsAuthenticated())
}

// # Expiry

/*
TestIdentity_DetectsExpiryOnRead: a session whose token expires mid-lifetime
demotes to anonymous on the next identity read and scrubs the slot.
*/
func TestIdentity_DetectsExpiryOnRead(t *testing.T) {
	ctx := context.Background()
	issueTime := time.Now()
	bearer := makeToken(t, "a@b.com", "member", 7, issueTime.Add(30*time.Minute).Unix())
	slot := storage.NewMemorySlot()

	clock := issueTime
	store := session.New(&fakeAuthenticator{token: bearer}, slot, quietLogger()).
		WithClock(func() time.Time { return clock })

	// 1. Establish the session while the token is live
	require.NoError(t, store.Login(ctx, "a@b.com", "secret"))
	require.NotNil(t, store.Identity(ctx))

	// 2. Advance past expiry
	clock = issueTime.Add(31 * time.Minute)

	// 3. The next read demotes the session
	assert.Nil(t, store.Identity(ctx))
	assert.False(t, store.IsAuthenticated())

	_, present, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.False(t, present)
}

/*
TestUserID_Accessor: present when authenticated, absent when anonymous.
*/
func TestUserID_Accessor(t *testing.T) {
	ctx := context.Background()
	bearer := makeToken(t, "a@b.com", "member", 42, time.Now().Add(time.Hour).Unix())
	store := session.New(&fakeAuthenticator{token: bearer}, storage.NewMemorySlot(), quietLogger())

	_, ok := store.UserID()
	assert.False(t, ok)

	require.NoError(t, store.Login(ctx, "a@b.com", "secret"))

	id, ok := store.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}
