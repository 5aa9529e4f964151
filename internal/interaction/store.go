// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package interaction

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taibuivan/yomira-client/internal/platform/apperr"
)

// # Interaction Store

// Store is the generic relationship cache for one [Kind].
//
// # Concurrency
//
// All maps are guarded by mu; network calls run outside the lock. Per-entity
// toggles are serialized by the in-flight set (at most one outstanding toggle
// per entity id); toggles on different ids proceed independently. Fetches are
// not serialized against anything — each one wholesale-replaces its target
// map, guarded by a generation ticket so a superseded fetch is dropped.
type Store struct {
	kind   Kind
	api    Collaborator
	viewer Viewer
	log    *slog.Logger

	// positive/negative are the count aggregators for the two polarities.
	// Two-state kinds never touch negative.
	positive *Counts
	negative *Counts

	mu sync.Mutex

	// authoritative holds the signed-in viewer's own relationships. Unset
	// entries are absent rather than stored.
	authoritative map[int64]State
	// authSeq is the generation ticket for the authoritative map: bumped
	// when a fetch for it is issued and on Reset. A completion whose ticket
	// is stale applies nothing.
	authSeq uint64
	// resetSeq counts Reset calls only. A toggle that fails after a Reset
	// must not hand its rollback movements to counters that were already
	// cleared.
	resetSeq uint64

	// transient holds the last-fetched relationships of some other user,
	// for profile display only.
	transient map[int64]State
	// transientSubject is the user the transient map currently describes.
	transientSubject int64
	transientSeq     uint64

	// inflight guards against double-submit: entity ids with an outstanding
	// toggle round trip.
	inflight map[int64]struct{}
}

// NewStore constructs the cache for one relationship kind.
//
// api may be nil for kinds reachable with no entity endpoint; such a store
// degrades to pure local cycling on toggle (the server never confirms, so
// the optimistic value simply stands).
func NewStore(kind Kind, api Collaborator, viewer Viewer, log *slog.Logger) *Store {
	return &Store{
		kind:          kind,
		api:           api,
		viewer:        viewer,
		log:           log.With(slog.String("interaction", string(kind))),
		positive:      NewCounts(),
		negative:      NewCounts(),
		authoritative: make(map[int64]State),
		transient:     make(map[int64]State),
		inflight:      make(map[int64]struct{}),
	}
}

// Kind returns the relationship kind this store caches.
func (store *Store) Kind() Kind { return store.kind }

// PositiveCounts returns the aggregator for set/liked totals.
func (store *Store) PositiveCounts() *Counts { return store.positive }

// NegativeCounts returns the aggregator for disliked/downvoted totals.
// Meaningless (always zero) for two-state kinds.
func (store *Store) NegativeCounts() *Counts { return store.negative }

// # Fetch

/*
FetchForViewer loads the relationship list for a subject user.

Description: When the subject is the signed-in viewer, the result replaces
the authoritative map; otherwise it replaces the transient map. The branch
exists because state fetched for someone else's profile must never be
mistaken for, or merged into, the viewer's own editable relationships. The
subject routing is decided at call time, so a late response can only ever
overwrite the map it was aimed at.

Parameters:
  - context: context.Context
  - subjectUserID: int64

Returns:
  - error: Transport failures (the targeted map is left untouched)
*/
func (store *Store) FetchForViewer(context context.Context, subjectUserID int64) error {
	if store.api == nil {
		// Degraded store: nothing to fetch from.
		return nil
	}

	// Route by the requested subject, closed over now.
	selfID, signedIn := store.viewer.UserID()
	forSelf := signedIn && subjectUserID == selfID

	// Take a generation ticket before issuing the request. Any later fetch
	// for the same map (or a Reset) invalidates this ticket.
	store.mu.Lock()
	var ticket uint64
	if forSelf {
		store.authSeq++
		ticket = store.authSeq
	} else {
		store.transientSeq++
		ticket = store.transientSeq
	}
	store.mu.Unlock()

	list, err := store.api.Fetch(context, subjectUserID)
	if err != nil {
		return err
	}

	// Wholesale replacement of the targeted map.
	loaded := make(map[int64]State, len(list))
	for _, entry := range list {
		if entry.State.IsSet() {
			loaded[entry.EntityID] = entry.State
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if forSelf {
		if ticket != store.authSeq {
			// A newer self-fetch or a Reset superseded this response.
			store.log.Debug("stale_fetch_dropped", slog.Int64("subject", subjectUserID))
			return nil
		}
		store.authoritative = loaded
		return nil
	}

	if ticket != store.transientSeq {
		store.log.Debug("stale_fetch_dropped", slog.Int64("subject", subjectUserID))
		return nil
	}
	store.transient = loaded
	store.transientSubject = subjectUserID
	return nil
}

// # Toggle

/*
Toggle optimistically flips the viewer's relationship for one entity.

Description: A no-op while a toggle for the same entity is already in flight
(rapid double-clicks). The local value flips immediately and the counters
move in lockstep; the server's returned state then overwrites the optimistic
guess — the server is authoritative on conflict, since it may reflect
concurrent changes from another session. On network failure the value and
the performed counter movements revert, leaving both exactly as they read
before the toggle.

Parameters:
  - context: context.Context
  - entityID: int64

Returns:
  - error: apperr.ToggleFailed after rollback; nil on success or no-op
*/
func (store *Store) Toggle(context context.Context, entityID int64) error {
	store.mu.Lock()

	// Double-submit guard: one outstanding toggle per entity.
	if _, busy := store.inflight[entityID]; busy {
		store.mu.Unlock()
		return nil
	}

	previous := store.stateLocked(entityID)
	optimistic := store.nextState(previous)

	// Optimistic application: value and counters move together. The counter
	// movements that actually occurred are recorded so a rollback reverses
	// exactly those — a decrement that clamped at zero performed nothing.
	store.writeLocked(entityID, optimistic)
	steps := store.applyCountDelta(entityID, previous, optimistic)

	if store.api == nil {
		// Degraded fallback: local cycling only, nothing to reconcile.
		store.mu.Unlock()
		return nil
	}

	store.inflight[entityID] = struct{}{}
	ticket := store.authSeq
	epoch := store.resetSeq
	store.mu.Unlock()

	confirmed, err := store.api.Toggle(context, entityID)

	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.inflight, entityID)

	// If the authoritative map was replaced or reset while the call was in
	// flight, that replacement already carries (or deliberately dropped) the
	// server truth; touching the new map with this result would corrupt it.
	if ticket != store.authSeq {
		// A superseding fetch replaces the map but never touches the
		// counters, so a failed toggle still owes its optimistic movements
		// back. After a Reset the counters were cleared and owe nothing.
		if err != nil && epoch == store.resetSeq {
			store.revertCountSteps(steps)
		}
		return nil
	}

	if err != nil {
		// Symmetric rollback: the value reverts, and only the counter
		// movements that were performed are reversed.
		store.writeLocked(entityID, previous)
		store.revertCountSteps(steps)
		store.log.Warn("toggle_rolled_back",
			slog.Int64("entity_id", entityID),
			slog.Any("error", err),
		)
		return apperr.ToggleFailed(string(store.kind), err)
	}

	// Server wins over the optimistic guess.
	if confirmed.State != optimistic {
		store.applyCountDelta(entityID, optimistic, confirmed.State)
	}
	store.writeLocked(entityID, confirmed.State)
	return nil
}

// nextState computes the optimistic flip target.
func (store *Store) nextState(current State) State {
	if store.kind.TriState() {
		// Reviewed-pair cycle: unset -> positive -> negative -> unset.
		switch current {
		case Positive:
			return Negative
		case Negative:
			return Unset
		default:
			return Positive
		}
	}
	if current.IsSet() {
		return Unset
	}
	return Positive
}

// # Reads

// IsSet reports whether the viewer's own relationship for the entity is
// active. Reads the authoritative map only — transient (other-user) data
// must never leak into "is the viewer's own relationship" queries.
func (store *Store) IsSet(entityID int64) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.stateLocked(entityID).IsSet()
}

// StateOf returns the viewer's own relationship state for the entity,
// defaulting to Unset. Authoritative map only.
func (store *Store) StateOf(entityID int64) State {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.stateLocked(entityID)
}

// DisplayStateFor returns the last-fetched relationship state of another
// user, for profile rendering. Returns Unset when the transient map
// currently describes a different subject.
func (store *Store) DisplayStateFor(subjectUserID, entityID int64) State {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.transientSubject != subjectUserID {
		return Unset
	}
	if state, ok := store.transient[entityID]; ok {
		return state
	}
	return Unset
}

// # Lifecycle

// Reset clears both maps, the in-flight markers, and the counters; called on
// logout. Generation tickets advance so responses still in flight from the
// previous session apply nothing.
func (store *Store) Reset() {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.authoritative = make(map[int64]State)
	store.transient = make(map[int64]State)
	store.transientSubject = 0
	store.inflight = make(map[int64]struct{})
	store.authSeq++
	store.transientSeq++
	store.resetSeq++
	store.positive.Reset()
	store.negative.Reset()
}

// # Internal Helpers

// stateLocked reads the authoritative state, defaulting to Unset.
// Caller must hold mu.
func (store *Store) stateLocked(entityID int64) State {
	if state, ok := store.authoritative[entityID]; ok {
		return state
	}
	return Unset
}

// writeLocked stores an authoritative state, keeping Unset entries absent.
// Caller must hold mu.
func (store *Store) writeLocked(entityID int64, state State) {
	if state.IsSet() {
		store.authoritative[entityID] = state
	} else {
		delete(store.authoritative, entityID)
	}
}

// countStep is one performed counter movement, recorded so a failed toggle
// reverses exactly what happened.
type countStep struct {
	counter  *Counts
	entityID int64
	delta    int
}

// applyCountDelta moves the polarity counters for a from→to transition and
// returns the movements that actually occurred (a clamped decrement is not
// recorded). A Positive↔Negative move issues two deltas against two
// different counters.
func (store *Store) applyCountDelta(entityID int64, from, to State) []countStep {
	if from == to {
		return nil
	}
	var steps []countStep
	switch from {
	case Positive:
		if store.positive.Decrement(entityID) {
			steps = append(steps, countStep{store.positive, entityID, -1})
		}
	case Negative:
		if store.negative.Decrement(entityID) {
			steps = append(steps, countStep{store.negative, entityID, -1})
		}
	}
	switch to {
	case Positive:
		store.positive.Increment(entityID)
		steps = append(steps, countStep{store.positive, entityID, +1})
	case Negative:
		store.negative.Increment(entityID)
		steps = append(steps, countStep{store.negative, entityID, +1})
	}
	return steps
}

// revertCountSteps undoes recorded counter movements, newest first.
func (store *Store) revertCountSteps(steps []countStep) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if step.delta > 0 {
			step.counter.Decrement(step.entityID)
		} else {
			step.counter.Increment(step.entityID)
		}
	}
}
