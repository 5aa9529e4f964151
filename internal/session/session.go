// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements the client-side session layer: the single source
of truth for "who is the current viewer".

It owns the bearer token, the identity derived from it, and the persisted
token slot. Every other part of the client (route guard, interaction stores,
transport bearer injection) reads identity from here and never decodes
tokens itself.

# Architecture

  - Store: Orchestrates initialize/login/logout and identity queries.
  - Authenticator: Abstracted interface for the auth API collaborator.
  - storage.Slot: The persisted token slot (file, redis, or memory).

The store is a process-wide singleton by convention, but it is constructed
through [New] with injected dependencies so tests substitute fresh instances.
*/
package session

import (
	"context"

	"github.com/taibuivan/yomira-client/internal/platform/sec"
)

// # Domain Entities

// Identity is the viewer identity derived from a valid bearer token.
//
// It is never stored redundantly: it can always be re-derived from the token,
// and it is cleared in the same transition that clears the token.
type Identity struct {
	Email  string       `json:"email"`
	Role   sec.UserRole `json:"role"`
	UserID int64        `json:"user_id"`
}

// State is a point-in-time snapshot of the session.
//
// # Invariant
//
// IsAuthenticated == (Token != "" && Identity != nil). The store maintains
// this by only ever writing token and identity in the same transition.
type State struct {
	// Token is the raw bearer token, empty when anonymous.
	Token string
	// Identity is the derived viewer identity, nil when anonymous.
	Identity *Identity
	// IsAuthenticated mirrors the token/identity pair.
	IsAuthenticated bool
	// IsLoading is true while a login round trip is in flight.
	IsLoading bool
	// LastError is the most recent user-visible login failure message.
	LastError string
	// Checked is true once Initialize has completed at least once. The route
	// guard renders its neutral placeholder until this is set.
	Checked bool
}

// # Collaborators

// Authenticator is the contract with the external auth API.
type Authenticator interface {

	/*
		Login exchanges credentials for a bearer token.

		Parameters:
		  - context: context.Context
		  - email: string
		  - password: string

		Returns:
		  - string: Bearer token issued by the platform
		  - error: Server-reported rejection or transport failures
	*/
	Login(context context.Context, email, password string) (string, error)
}

// # Field Identifiers

// Form field names used for login validation details.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)
