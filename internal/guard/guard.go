// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package guard decides whether a navigation target is permitted for the
current session, and where to redirect otherwise.

It is the contract between the client core and whatever routing layer embeds
it: the guard never renders and never throws — it returns a [Decision] that
the router translates into a placeholder, a redirect, or the protected
subtree.

# Architecture

One algorithm, three predicates. RequireAuthenticated, RequireAnonymous and
RequireRole differ only in the admission predicate and the denial target;
there is no per-variant control flow. An undecodable or expired token is not
a special "corrupt session" case — it reads as anonymous and flows through
the ordinary redirect path.
*/
package guard

import (
	"context"

	"github.com/taibuivan/yomira-client/internal/platform/constants"
	"github.com/taibuivan/yomira-client/internal/platform/sec"
	"github.com/taibuivan/yomira-client/internal/session"
)

// # Decisions

// Outcome is the guard's verdict for a navigation attempt.
type Outcome int

const (
	// Pending means the session has not been checked yet: render the neutral
	// placeholder. Deciding before the check completes is the bug this state
	// exists to prevent — neither the protected content nor a premature
	// redirect may appear first.
	Pending Outcome = iota

	// Allow admits the navigation: render the protected subtree.
	Allow

	// Redirect denies the navigation: route to [Decision.RedirectTo].
	Redirect
)

// Decision is the guard's full answer for one navigation attempt.
type Decision struct {
	// Outcome is the verdict.
	Outcome Outcome
	// RedirectTo is the denial destination, set only when Outcome is Redirect.
	RedirectTo string
	// ReturnTo carries the originally requested path so the router can come
	// back after a successful login. Empty when not applicable.
	ReturnTo string
}

// # Guard

// predicate admits or denies a checked session state.
type predicate func(state session.State) (admitted bool)

// denial picks the redirect destination for a failed predicate.
type denial func(state session.State, requestedPath string) Decision

// Guard evaluates one admission policy against the session store.
type Guard struct {
	session *session.Store
	admit   predicate
	deny    denial
}

// # Variants

// RequireAuthenticated admits only signed-in viewers. Denials redirect to
// the access-denied route carrying the requested path as ReturnTo.
func RequireAuthenticated(store *session.Store) *Guard {
	return &Guard{
		session: store,
		admit:   func(state session.State) bool { return state.IsAuthenticated },
		deny: func(_ session.State, requestedPath string) Decision {
			return Decision{
				Outcome:    Redirect,
				RedirectTo: constants.RouteDenied,
				ReturnTo:   requestedPath,
			}
		},
	}
}

// RequireAnonymous is the mirror guard for login/registration routes:
// signed-in viewers are sent home.
func RequireAnonymous(store *session.Store) *Guard {
	return &Guard{
		session: store,
		admit:   func(state session.State) bool { return !state.IsAuthenticated },
		deny: func(session.State, string) Decision {
			return Decision{Outcome: Redirect, RedirectTo: constants.RouteHome}
		},
	}
}

// RequireRole admits signed-in viewers whose role meets or exceeds the
// target per the platform hierarchy. The destination distinguishes "not
// signed in" from "signed in, insufficient role"; the guard logic does not.
func RequireRole(store *session.Store, role sec.UserRole) *Guard {
	return &Guard{
		session: store,
		admit: func(state session.State) bool {
			return state.IsAuthenticated && state.Identity.Role.AtLeast(role)
		},
		deny: func(state session.State, requestedPath string) Decision {
			if !state.IsAuthenticated {
				return Decision{
					Outcome:    Redirect,
					RedirectTo: constants.RouteDenied,
					ReturnTo:   requestedPath,
				}
			}
			return Decision{Outcome: Redirect, RedirectTo: constants.RouteRoleDenied}
		},
	}
}

// # Evaluation

/*
Check initializes the session if needed and returns the verdict.

Description: The blocking entry point, called when the router mounts a
guarded route. Initialize runs first — its error, if any, is deliberately
discarded: unreadable storage reads as anonymous and takes the redirect
path, because guards never fail.

Parameters:
  - context: context.Context
  - requestedPath: string (forwarded as ReturnTo on auth denials)

Returns:
  - Decision: Allow or Redirect (never Pending — the check has completed)
*/
func (guard *Guard) Check(context context.Context, requestedPath string) Decision {
	_ = guard.session.Initialize(context)
	return guard.decide(guard.session.Snapshot(), requestedPath)
}

/*
Peek returns the verdict without triggering initialization.

Description: The non-blocking read for render loops. Until some caller has
completed [Check] (or the session store's Initialize), it returns Pending so
the router shows the neutral placeholder instead of guessing.

Parameters:
  - requestedPath: string

Returns:
  - Decision: Pending, Allow, or Redirect
*/
func (guard *Guard) Peek(requestedPath string) Decision {
	state := guard.session.Snapshot()
	if !state.Checked {
		return Decision{Outcome: Pending}
	}
	return guard.decide(state, requestedPath)
}

// decide applies the predicate to a checked snapshot.
func (guard *Guard) decide(state session.State, requestedPath string) Decision {
	if guard.admit(state) {
		return Decision{Outcome: Allow}
	}
	return guard.deny(state, requestedPath)
}
