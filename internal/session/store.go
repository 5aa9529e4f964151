// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/yomira-client/internal/platform/apperr"
	"github.com/taibuivan/yomira-client/internal/platform/storage"
	"github.com/taibuivan/yomira-client/internal/platform/token"
	"github.com/taibuivan/yomira-client/internal/platform/validate"
)

// # Session Store

// Store is the session state container.
//
// # State Machine
//
//	Anonymous -> (login success)                  -> Authenticated
//	Authenticated -> (logout | expiry detected)   -> Anonymous
//	Authenticated -> (login called again)         -> Authenticated (overwrite)
//
// There is no terminal state; the store lives as long as the process.
//
// # Concurrency
//
// All fields are guarded by mu. Network and storage calls run outside the
// lock so a slow login cannot block identity reads from other goroutines.
type Store struct {
	authenticator Authenticator
	slot          storage.Slot
	log           *slog.Logger

	// now is injectable for expiry tests.
	now func() time.Time

	mu          sync.Mutex
	initialized bool
	isLoading   bool
	lastError   string
	token       string
	claims      *token.Claims
	identity    *Identity
}

// New constructs a session [Store] with injected dependencies.
func New(authenticator Authenticator, slot storage.Slot, log *slog.Logger) *Store {
	return &Store{
		authenticator: authenticator,
		slot:          slot,
		log:           log,
		now:           time.Now,
	}
}

// WithClock overrides the store's time source. Test hook only.
func (store *Store) WithClock(now func() time.Time) *Store {
	store.now = now
	return store
}

// # Initialization

/*
Initialize restores the session from the persisted token slot.

Description: Called on startup and on every route transition by the guard, so
it must be cheap when nothing is left to do. An absent slot value, a malformed
token, or an expired token all leave the session anonymous without error —
corrupt persisted state is indistinguishable from "never logged in".

Parameters:
  - context: context.Context

Returns:
  - error: Storage I/O failures only; the session is anonymous either way
*/
func (store *Store) Initialize(context context.Context) error {
	store.mu.Lock()

	// Idempotence: once checked, later calls are a single flag read.
	if store.initialized {
		store.mu.Unlock()
		return nil
	}
	store.mu.Unlock()

	// Slot read happens outside the lock; concurrent Initialize calls may
	// both read, but both write the same derived state, so last-write-wins
	// is harmless.
	value, present, err := store.slot.Read(context)
	if err != nil {
		// Unreadable storage degrades to anonymous rather than failing the
		// route transition that triggered the check.
		store.markChecked()
		store.log.Warn("session_storage_unreadable", slog.Any("error", err))
		return apperr.Storage(err)
	}

	if !present {
		store.markChecked()
		return nil
	}

	claims, err := token.DecodeValid(value, store.now().Unix())
	if err != nil {
		// Malformed or expired: clear the slot so the dead value is not
		// re-decoded on every subsequent startup.
		if clearErr := store.slot.Clear(context); clearErr != nil {
			store.log.Warn("session_slot_clear_failed", slog.Any("error", clearErr))
		}
		store.markChecked()
		store.log.Info("persisted_token_rejected", slog.String("code", apperr.As(err).Code))
		return nil
	}

	store.mu.Lock()
	store.setAuthenticatedLocked(value, claims)
	store.initialized = true
	store.mu.Unlock()
	return nil
}

// markChecked flags the session as initialized while leaving it anonymous.
func (store *Store) markChecked() {
	store.mu.Lock()
	store.initialized = true
	store.mu.Unlock()
}

// # Authentication Flow

/*
Login validates credentials locally, exchanges them with the auth
collaborator, and establishes the session.

Description: The only operation whose failure is re-raised to the caller —
the login form needs the message for field-level feedback. A token returned
by a nominally successful login that fails to decode is reported as a login
failure, never as a crash.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - error: apperr.ValidationError or apperr.LoginFailed
*/
func (store *Store) Login(context context.Context, email, password string) error {

	// Local validation first: a blank field should never cost a round trip.
	v := &validate.Validator{}
	if err := v.
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, password).
		Err(); err != nil {
		return err
	}

	store.mu.Lock()
	store.isLoading = true
	store.lastError = ""
	store.mu.Unlock()

	// Network exchange outside the lock.
	bearer, err := store.authenticator.Login(context, email, password)
	if err != nil {
		return store.failLogin("Invalid login credentials", err)
	}

	// A successful exchange that yields an undecodable or already-expired
	// token is still a login failure from the form's point of view.
	claims, err := token.DecodeValid(bearer, store.now().Unix())
	if err != nil {
		return store.failLogin("Login could not establish a session", err)
	}

	// Persist before flipping state so a crash between the two leaves the
	// durable slot ahead of memory, never behind it.
	if err := store.slot.Write(context, bearer); err != nil {
		store.log.Warn("session_persist_failed", slog.Any("error", err))
		// In-memory session still proceeds; only restart continuity is lost.
	}

	store.mu.Lock()
	store.setAuthenticatedLocked(bearer, claims)
	store.initialized = true
	store.isLoading = false
	store.mu.Unlock()

	store.log.Info("session_established",
		slog.Int64("user_id", claims.UserID),
		slog.String("role", string(claims.Role)),
	)
	return nil
}

// failLogin records a login failure and returns the error for the form.
func (store *Store) failLogin(message string, cause error) error {

	// Prefer the server-reported message when the transport surfaced one.
	if ae := apperr.As(cause); ae != nil && ae.Code != "TRANSPORT_ERROR" && ae.Message != "" {
		message = ae.Message
	}

	store.mu.Lock()
	store.isLoading = false
	store.lastError = message
	store.mu.Unlock()

	store.log.Info("login_failed", slog.String("reason", message))
	return apperr.LoginFailed(message, cause)
}

/*
Logout clears the persisted slot and resets the session unconditionally.

Description: Never fails. A slot that cannot be cleared is logged and
forgotten — the in-memory session is reset regardless.

Parameters:
  - context: context.Context
*/
func (store *Store) Logout(context context.Context) {
	if err := store.slot.Clear(context); err != nil {
		store.log.Warn("session_slot_clear_failed", slog.Any("error", err))
	}

	store.mu.Lock()
	store.resetLocked()
	store.mu.Unlock()

	store.log.Info("session_cleared")
}

// # Identity Queries

/*
Identity returns the current viewer identity, deriving it on demand.

Description: Returns the cached identity when present. If a token exists but
identity was never derived (store constructed around a pre-filled slot before
Initialize ran), it derives and caches now. Detecting expiry here demotes the
session to anonymous, clearing the slot best-effort.

Parameters:
  - context: context.Context (used only for the best-effort slot clear)

Returns:
  - *Identity: Current viewer, or nil when anonymous
*/
func (store *Store) Identity(context context.Context) *Identity {
	store.mu.Lock()

	// Expiry check on every read keeps a long-lived process honest without
	// a background timer. The comparison is one int64.
	if store.claims != nil && store.claims.ExpiredAt(store.now().Unix()) {
		store.resetLocked()
		store.mu.Unlock()
		if err := store.slot.Clear(context); err != nil {
			store.log.Warn("session_slot_clear_failed", slog.Any("error", err))
		}
		store.log.Info("session_expired")
		return nil
	}

	if store.identity != nil {
		identity := store.identity
		store.mu.Unlock()
		return identity
	}

	// Derive-on-demand path: token present, identity not yet cached.
	if store.token != "" {
		claims, err := token.DecodeValid(store.token, store.now().Unix())
		if err == nil {
			store.setAuthenticatedLocked(store.token, claims)
			identity := store.identity
			store.mu.Unlock()
			return identity
		}
		store.resetLocked()
	}

	store.mu.Unlock()
	return nil
}

// Snapshot returns a point-in-time copy of the session state.
func (store *Store) Snapshot() State {
	store.mu.Lock()
	defer store.mu.Unlock()

	return State{
		Token:           store.token,
		Identity:        store.identity,
		IsAuthenticated: store.token != "" && store.identity != nil,
		IsLoading:       store.isLoading,
		LastError:       store.lastError,
		Checked:         store.initialized,
	}
}

// IsAuthenticated reports whether a usable session is present.
func (store *Store) IsAuthenticated() bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.token != "" && store.identity != nil
}

// Token returns the raw bearer token for transport injection, or "".
func (store *Store) Token() string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.token
}

// UserID returns the viewer's numeric ID and whether one is present.
func (store *Store) UserID() (int64, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.identity == nil {
		return 0, false
	}
	return store.identity.UserID, true
}

// # Internal Transitions

// setAuthenticatedLocked installs a token/claims pair atomically.
// Caller must hold mu. This is the only writer of token+identity, which is
// what upholds the "both set or both nil" invariant.
func (store *Store) setAuthenticatedLocked(bearer string, claims *token.Claims) {
	store.token = bearer
	store.claims = claims
	store.identity = &Identity{
		Email:  claims.Subject,
		Role:   claims.Role,
		UserID: claims.UserID,
	}
	store.lastError = ""
}

// resetLocked returns the store to its initial anonymous shape.
// Caller must hold mu. The initialized flag survives: the session has been
// checked, it is simply anonymous now.
func (store *Store) resetLocked() {
	store.token = ""
	store.claims = nil
	store.identity = nil
	store.isLoading = false
	store.lastError = ""
}
