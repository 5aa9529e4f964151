// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package devserver is an in-memory Yomira API stand-in for offline client
development and integration tests.

It serves exactly the endpoints the client core's transport layer calls —
login, per-kind relationship fetch/toggle, catalog search — with the same
envelope shapes and the same server-authoritative toggle semantics as the
production backend, so client code exercised against the stub behaves
identically against the real thing.

Architecture:

  - chi router with the shared middleware chain (trace, log, recover, auth).
  - All state in memory; restart resets the world to its seed.
  - Tokens are HS256-signed with a throwaway process-local secret.
*/
package devserver

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-client/internal/interaction"
	"github.com/taibuivan/yomira-client/internal/platform/apperr"
	"github.com/taibuivan/yomira-client/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-client/internal/platform/middleware"
	"github.com/taibuivan/yomira-client/internal/platform/respond"
	"github.com/taibuivan/yomira-client/internal/platform/sec"
	"github.com/taibuivan/yomira-client/pkg/slug"
)

// # Route Groups

// kindsByGroup maps REST path segments back to relationship kinds.
// Inverse of the transport layer's table; both sides live in this repo, so
// drift shows up as a failing integration test.
var kindsByGroup = map[string]interaction.Kind{
	"likes":         interaction.KindLike,
	"favorites":     interaction.KindFavorite,
	"watched":       interaction.KindWatched,
	"follows":       interaction.KindFollow,
	"comment-votes": interaction.KindCommentVote,
}

// # Server

// Server is the runnable stub.
type Server struct {
	router *chi.Mux
	state  *state
	secret []byte
	log    *slog.Logger

	httpServer *http.Server
}

// New constructs a stub with the default seed: three accounts (member,
// moderator, admin) and a small catalog.
func New(log *slog.Logger) (*Server, error) {
	accounts, err := seedAccounts()
	if err != nil {
		return nil, err
	}
	return NewWithSeed(log, accounts, seedCatalog()), nil
}

// NewWithSeed constructs a stub over caller-provided world state.
func NewWithSeed(log *slog.Logger, accounts []*Account, catalog []Comic) *Server {
	secret := make([]byte, 32)
	// A fresh random secret per process: stub tokens are worthless anywhere else.
	_, _ = rand.Read(secret)

	server := &Server{
		state:  newState(accounts, catalog),
		secret: secret,
		log:    log,
	}
	server.router = server.routes()
	return server
}

// routes builds the chi router with the shared middleware chain.
func (server *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(server.log))
	r.Use(middleware.PanicRecovery(server.log))
	r.Use(middleware.Authenticate())

	r.Post("/auth/login", server.handleLogin)
	r.Get("/users/{userID}/{group}", server.handleFetchRelationships)
	r.Post("/{group}/{entityID}/toggle", server.handleToggle)
	r.Get("/comics", server.handleSearchComics)

	return r
}

// Router exposes the handler for httptest-based integration tests.
func (server *Server) Router() http.Handler {
	return server.router
}

// # Lifecycle

// ListenAndServe starts the stub on the given address, blocking.
func (server *Server) ListenAndServe(addr string) error {
	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           server.router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	server.log.Info("devserver_listening", slog.String("addr", addr))
	return server.httpServer.ListenAndServe()
}

// Shutdown stops the stub gracefully.
func (server *Server) Shutdown(context context.Context) error {
	if server.httpServer == nil {
		return nil
	}
	return server.httpServer.Shutdown(context)
}

// # Handlers

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (server *Server) handleLogin(writer http.ResponseWriter, request *http.Request) {
	input := loginRequest{}
	if err := decodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, ok := server.state.findAccount(input.Login)
	// Generic message either way to match production's enumeration guard.
	if !ok || !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		respond.Error(writer, request, apperr.LoginFailed("Invalid login credentials", nil))
		return
	}

	bearer, err := mintToken(account, server.secret, time.Now())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"access_token": bearer,
		"token_type":   "Bearer",
	})
}

func (server *Server) handleFetchRelationships(writer http.ResponseWriter, request *http.Request) {
	kind, ok := kindsByGroup[chi.URLParam(request, "group")]
	if !ok {
		respond.Error(writer, request, apperr.Transport("NOT_FOUND", "Unknown relationship kind", nil))
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(request, "userID"), 10, 64)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("User ID must be numeric"))
		return
	}

	respond.OK(writer, server.state.listRelationships(kind, userID))
}

func (server *Server) handleToggle(writer http.ResponseWriter, request *http.Request) {
	claims := ctxutil.GetClaims(request.Context())
	if claims == nil {
		respond.Error(writer, request, apperr.Transport("UNAUTHORIZED", "Authentication required", nil))
		return
	}

	kind, ok := kindsByGroup[chi.URLParam(request, "group")]
	if !ok {
		respond.Error(writer, request, apperr.Transport("NOT_FOUND", "Unknown relationship kind", nil))
		return
	}

	entityID, err := strconv.ParseInt(chi.URLParam(request, "entityID"), 10, 64)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Entity ID must be numeric"))
		return
	}

	respond.OK(writer, server.state.toggleRelationship(kind, claims.UserID, entityID))
}

func (server *Server) handleSearchComics(writer http.ResponseWriter, request *http.Request) {
	query := slug.From(request.URL.Query().Get("query"))
	respond.OK(writer, server.state.searchCatalog(query))
}

// decodeJSON decodes a request body, mapping failures to a validation error.
func decodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return apperr.ValidationError("Invalid JSON payload")
	}
	return nil
}

// # Seed Data

// seedAccounts builds the default dev accounts. Passwords are hashed with
// the same bcrypt pipeline the production backend uses.
func seedAccounts() ([]*Account, error) {
	seeds := []struct {
		id       int64
		email    string
		role     sec.UserRole
		password string
	}{
		{1, "admin@yomira.dev", sec.RoleAdmin, "admin-dev-pass"},
		{2, "mod@yomira.dev", sec.RoleModerator, "mod-dev-pass"},
		{7, "asuka@yomira.dev", sec.RoleMember, "read-more-comics"},
	}

	accounts := make([]*Account, 0, len(seeds))
	for _, seed := range seeds {
		hash, err := sec.HashPassword(seed.password)
		if err != nil {
			return nil, fmt.Errorf("devserver: seed account %s: %w", seed.email, err)
		}
		accounts = append(accounts, &Account{
			ID:           seed.id,
			Email:        seed.email,
			Role:         seed.role,
			PasswordHash: hash,
		})
	}
	return accounts, nil
}

// seedCatalog builds a small searchable catalog with denormalized totals.
func seedCatalog() []Comic {
	return []Comic{
		{ID: 42, Title: "Tower of Dawn", Slug: "tower-of-dawn", FavoriteCount: 1280, LikeCount: 3410, WatchedCount: 560},
		{ID: 43, Title: "Moonlit Scans", Slug: "moonlit-scans", FavoriteCount: 87, LikeCount: 412, WatchedCount: 33},
		{ID: 44, Title: "Café Étoile", Slug: "cafe-etoile", FavoriteCount: 305, LikeCount: 990, WatchedCount: 120},
	}
}
