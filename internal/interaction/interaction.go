// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package interaction implements the per-entity relationship state cache shared
by every "does the viewer X this?" feature: likes, favorites, watched marks,
follows, and comment votes.

Historically the web frontend hand-copied this store once per relationship
kind, each copy drifting in how it handled races and rollback. This package
is the single parametrized implementation: one [Store] type, instantiated
per kind at startup.

# Architecture

  - Store: Generic relationship cache with optimistic toggle and rollback.
  - Counts: Independent numeric counters, mutated in lockstep with toggles.
  - Collaborator: Abstracted interface over the per-kind REST endpoints.

# Scoping

Each store holds two maps. The authoritative map is the signed-in viewer's
own relationships — the only map toggles ever write. The transient map holds
whatever other user's relationships were last fetched for profile display; it
is replaced wholesale per fetch and never written back to the server.
*/
package interaction

import "context"

// # Relationship State

// State is a per-entity relationship value.
//
// Two-state kinds (favorite, watched, follow) only ever use Unset and
// Positive. Tri-state kinds (like, comment vote) use all three, where
// Positive/Negative model reviewed pairs such as like/dislike.
type State string

const (
	// Unset means no relationship exists.
	Unset State = "unset"
	// Positive is the set / liked / upvoted state.
	Positive State = "positive"
	// Negative is the disliked / downvoted state (tri-state kinds only).
	Negative State = "negative"
)

// IsSet reports whether the state represents any active relationship.
func (s State) IsSet() bool { return s == Positive || s == Negative }

// # Relationship Kinds

// Kind names one relationship family. It parameterizes store construction
// and appears in REST paths and error messages.
type Kind string

const (
	KindLike        Kind = "like"
	KindFavorite    Kind = "favorite"
	KindWatched     Kind = "watched"
	KindFollow      Kind = "follow"
	KindCommentVote Kind = "comment_vote"
)

// TriState reports whether the kind uses the Negative state.
func (k Kind) TriState() bool {
	return k == KindLike || k == KindCommentVote
}

// # Wire Shapes

// EntityState is one entity's relationship state as exchanged with the API.
type EntityState struct {
	EntityID int64 `json:"entity_id"`
	State    State `json:"state"`
}

// # Collaborator

// Collaborator is the contract with one relationship kind's REST endpoints.
type Collaborator interface {

	/*
		Fetch returns every relationship the subject user holds for this kind.

		Parameters:
		  - context: context.Context
		  - subjectUserID: int64

		Returns:
		  - []EntityState: Complete relationship list for the subject
		  - error: Transport failures
	*/
	Fetch(context context.Context, subjectUserID int64) ([]EntityState, error)

	/*
		Toggle flips the viewer's relationship for one entity. The server
		decides and returns the resulting state — the client never tells the
		server which direction to flip.

		Parameters:
		  - context: context.Context
		  - entityID: int64

		Returns:
		  - EntityState: The definitive post-toggle state
		  - error: Transport failures
	*/
	Toggle(context context.Context, entityID int64) (EntityState, error)
}

// Viewer supplies the current session's user ID for self/other scoping.
// Satisfied by [session.Store]; a fixed stub satisfies it in tests.
type Viewer interface {
	UserID() (int64, bool)
}
