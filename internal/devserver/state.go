// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devserver

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/yomira-client/internal/interaction"
	"github.com/taibuivan/yomira-client/internal/platform/sec"
)

// # Seeded Accounts

// Account is one seeded dev account.
type Account struct {
	ID           int64
	Email        string
	Role         sec.UserRole
	PasswordHash string
}

// devTokenTTL is how long a stub-issued token lives. Short enough that
// expiry handling gets exercised during a normal development day.
const devTokenTTL = 1 * time.Hour

// # Server State

// state is the in-memory world of the stub: accounts, relationships per
// kind per user, and a small catalog.
//
// # Concurrency
//
// One mutex over everything. The stub serves a single developer; contention
// is not a concern, correctness under the client's concurrent toggles is.
type state struct {
	mu       sync.Mutex
	accounts map[string]*Account

	// relationships[kind][userID][entityID] = state
	relationships map[interaction.Kind]map[int64]map[int64]interaction.State

	catalog []Comic
}

// Comic is one catalog entry served by the stub's search endpoint.
type Comic struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	FavoriteCount int64  `json:"favorite_count"`
	LikeCount     int64  `json:"like_count"`
	WatchedCount  int64  `json:"watched_count"`
}

// newState builds the seeded world.
func newState(accounts []*Account, catalog []Comic) *state {
	s := &state{
		accounts:      make(map[string]*Account, len(accounts)),
		relationships: make(map[interaction.Kind]map[int64]map[int64]interaction.State),
		catalog:       catalog,
	}
	for _, account := range accounts {
		s.accounts[account.Email] = account
	}
	for _, kind := range kindsByGroup {
		s.relationships[kind] = make(map[int64]map[int64]interaction.State)
	}
	return s
}

// findAccount looks an account up by email.
func (s *state) findAccount(email string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[email]
	return account, ok
}

// listRelationships snapshots one user's relationships for a kind.
func (s *state) listRelationships(kind interaction.Kind, userID int64) []interaction.EntityState {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.relationships[kind][userID]
	list := make([]interaction.EntityState, 0, len(entries))
	for entityID, entityState := range entries {
		list = append(list, interaction.EntityState{EntityID: entityID, State: entityState})
	}
	return list
}

// toggleRelationship advances one relationship the way the production
// backend does: two-state kinds flip, tri-state kinds cycle
// unset → positive → negative → unset. Returns the resulting state —
// the server decides, the client never sends a direction.
func (s *state) toggleRelationship(kind interaction.Kind, userID, entityID int64) interaction.EntityState {
	s.mu.Lock()
	defer s.mu.Unlock()

	userMap := s.relationships[kind][userID]
	if userMap == nil {
		userMap = make(map[int64]interaction.State)
		s.relationships[kind][userID] = userMap
	}

	current, ok := userMap[entityID]
	if !ok {
		current = interaction.Unset
	}

	var next interaction.State
	if kind.TriState() {
		switch current {
		case interaction.Positive:
			next = interaction.Negative
		case interaction.Negative:
			next = interaction.Unset
		default:
			next = interaction.Positive
		}
	} else {
		if current.IsSet() {
			next = interaction.Unset
		} else {
			next = interaction.Positive
		}
	}

	if next == interaction.Unset {
		delete(userMap, entityID)
	} else {
		userMap[entityID] = next
	}
	return interaction.EntityState{EntityID: entityID, State: next}
}

// searchCatalog returns entries whose slug contains the normalized query.
// An empty query returns everything.
func (s *state) searchCatalog(normalizedQuery string) []Comic {
	s.mu.Lock()
	defer s.mu.Unlock()

	if normalizedQuery == "" {
		return append([]Comic(nil), s.catalog...)
	}
	matches := []Comic{}
	for _, comic := range s.catalog {
		if strings.Contains(comic.Slug, normalizedQuery) {
			matches = append(matches, comic)
		}
	}
	return matches
}

// # Token Minting

// mintToken issues an HS256 dev token with the platform claim shape
// (sub/role/id/exp). The client core never checks the signature, but signing
// keeps stub tokens structurally identical to production ones.
func mintToken(account *Account, secret []byte, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  account.Email,
		"role": string(account.Role),
		"id":   account.ID,
		"exp":  now.Add(devTokenTTL).Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("devserver: failed to sign token: %w", err)
	}
	return signed, nil
}
