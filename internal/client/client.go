// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package client is the composition root of the Yomira client core.

It builds the session store, the five interaction stores, and their
collaborators from one [config.Config], and owns the cross-store lifecycle
rules (logout resets every relationship cache). Embedding frontends hold one
[*Client] for the life of the process and read all state through it — this is
the dependency-injected accessor that replaces ad hoc module globals.
*/
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-client/internal/catalog"
	"github.com/taibuivan/yomira-client/internal/guard"
	"github.com/taibuivan/yomira-client/internal/interaction"
	"github.com/taibuivan/yomira-client/internal/platform/config"
	"github.com/taibuivan/yomira-client/internal/platform/constants"
	redisplatform "github.com/taibuivan/yomira-client/internal/platform/redis"
	"github.com/taibuivan/yomira-client/internal/platform/sec"
	"github.com/taibuivan/yomira-client/internal/platform/storage"
	"github.com/taibuivan/yomira-client/internal/session"
	"github.com/taibuivan/yomira-client/internal/transport"
)

// # Client

// Client bundles every process-wide store of the client core.
type Client struct {
	// Session is the identity source of truth.
	Session *session.Store

	// Per-kind interaction stores.
	Likes        *interaction.Store
	Favorites    *interaction.Store
	Watched      *interaction.Store
	Follows      *interaction.Store
	CommentVotes *interaction.Store

	// Catalog is the list read-side that seeds the count aggregators.
	Catalog *catalog.Service

	log   *slog.Logger
	redis *goredis.Client
}

// # Construction

/*
New wires the full client core from configuration.

Description: Builds the token slot for the configured backend, the throttled
transport, the session store, and one interaction store per relationship
kind. The transport's bearer source is wired back to the session store after
construction (the two reference each other at runtime, not at import time).

Parameters:
  - context: context.Context (used for the redis connectivity check)
  - cfg: *config.Config
  - log: *slog.Logger

Returns:
  - *Client: Ready-to-use client core
  - error: Storage backend construction failures
*/
func New(context context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {

	// ── 1. Token Slot ─────────────────────────────────────────────────────
	var slot storage.Slot
	var redisClient *goredis.Client

	switch cfg.TokenStorage {
	case config.StorageMemory:
		slot = storage.NewMemorySlot()
	case config.StorageRedis:
		connected, err := redisplatform.NewClient(context, cfg.RedisURL, log)
		if err != nil {
			return nil, fmt.Errorf("client: redis token slot: %w", err)
		}
		redisClient = connected
		slot = storage.NewRedisSlot(connected, constants.TokenSlotKey)
	default:
		slot = storage.NewFileSlot(cfg.ProfileDir, constants.DefaultTokenFileName)
	}

	// ── 2. Transport ──────────────────────────────────────────────────────
	api := transport.NewClient(cfg.APIBaseURL, time.Duration(cfg.RequestTimeoutSeconds)*time.Second, log)

	// ── 3. Session ────────────────────────────────────────────────────────
	sessionStore := session.New(transport.NewAuthAPI(api), slot, log)
	api.SetBearerSource(sessionStore)

	// ── 4. Interaction Stores ─────────────────────────────────────────────
	buildStore := func(kind interaction.Kind) *interaction.Store {
		return interaction.NewStore(kind, transport.NewRelationshipAPI(api, kind), sessionStore, log)
	}

	c := &Client{
		Session:      sessionStore,
		Likes:        buildStore(interaction.KindLike),
		Favorites:    buildStore(interaction.KindFavorite),
		Watched:      buildStore(interaction.KindWatched),
		Follows:      buildStore(interaction.KindFollow),
		CommentVotes: buildStore(interaction.KindCommentVote),
		log:          log,
		redis:        redisClient,
	}

	// ── 5. Catalog Read-Side ──────────────────────────────────────────────
	c.Catalog = catalog.NewService(
		transport.NewCatalogAPI(api),
		c.Favorites.PositiveCounts(),
		c.Likes.PositiveCounts(),
		c.Watched.PositiveCounts(),
	)

	return c, nil
}

// # Lifecycle

// Stores returns every interaction store for uniform iteration.
func (c *Client) Stores() []*interaction.Store {
	return []*interaction.Store{c.Likes, c.Favorites, c.Watched, c.Follows, c.CommentVotes}
}

// Logout clears the session and resets every relationship cache.
//
// The reset is unconditional: relationship state belongs to the viewer who
// fetched it and must not survive into the next sign-in.
func (c *Client) Logout(context context.Context) {
	c.Session.Logout(context)
	for _, store := range c.Stores() {
		store.Reset()
	}
	c.log.Info("client_state_reset")
}

// RefreshViewerRelationships reloads the authoritative map of every store
// for the signed-in viewer. Typically called right after login.
func (c *Client) RefreshViewerRelationships(context context.Context) error {
	userID, signedIn := c.Session.UserID()
	if !signedIn {
		return nil
	}
	for _, store := range c.Stores() {
		if err := store.FetchForViewer(context, userID); err != nil {
			return fmt.Errorf("client: refresh %s: %w", store.Kind(), err)
		}
	}
	return nil
}

// Close releases backend connections (redis slot, if configured).
func (c *Client) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// # Guards

// RequireAuthenticated returns the signed-in-only guard over this session.
func (c *Client) RequireAuthenticated() *guard.Guard {
	return guard.RequireAuthenticated(c.Session)
}

// RequireAnonymous returns the signed-out-only guard over this session.
func (c *Client) RequireAnonymous() *guard.Guard {
	return guard.RequireAnonymous(c.Session)
}

// RequireRole returns the role-gated guard over this session.
func (c *Client) RequireRole(role sec.UserRole) *guard.Guard {
	return guard.RequireRole(c.Session, role)
}
