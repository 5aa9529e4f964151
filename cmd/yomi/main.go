// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command yomi is a terminal frontend over the Yomira client core.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Wire the client core (token slot, transport, stores).
//  4. Dispatch the subcommand.
//
// No business logic lives here. All wiring is explicit constructor injection.
//
// # Subcommands
//
//	yomi login <email> <password>     Establish a session
//	yomi logout                       Clear the session and all caches
//	yomi whoami                       Print the current identity
//	yomi toggle <kind> <entity-id>    Flip a relationship (like|favorite|watched|follow|comment_vote)
//	yomi state <kind> <entity-id>     Print the viewer's relationship state and counts
//	yomi search <query>               Search the catalog (seeds counters)
//	yomi serve-dev [addr]             Run the offline API stub
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-client/internal/client"
	"github.com/taibuivan/yomira-client/internal/devserver"
	"github.com/taibuivan/yomira-client/internal/interaction"
	"github.com/taibuivan/yomira-client/internal/platform/config"
	"github.com/taibuivan/yomira-client/internal/platform/constants"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// serve-dev needs no client core; handle it before wiring one.
	if os.Args[1] == "serve-dev" {
		runDevServer(log)
		return
	}

	// ── 3. Client Core ────────────────────────────────────────────────────
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	core, err := client.New(startupCtx, cfg, log)
	must(log, err, "wire client core")
	defer func() {
		if cerr := core.Close(); cerr != nil {
			log.Error("client close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Dispatch ───────────────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultRequestTimeout*2)
	defer cancel()

	if err := dispatch(ctx, core, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// dispatch routes a subcommand to the client core.
func dispatch(ctx context.Context, core *client.Client, command string, args []string) error {
	switch command {

	case "login":
		if len(args) != 2 {
			return errors.New("usage: yomi login <email> <password>")
		}
		if err := core.Session.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		// Warm the relationship caches for the fresh session.
		if err := core.RefreshViewerRelationships(ctx); err != nil {
			return err
		}
		identity := core.Session.Identity(ctx)
		fmt.Printf("signed in as %s (%s)\n", identity.Email, identity.Role)
		return nil

	case "logout":
		core.Logout(ctx)
		fmt.Println("signed out")
		return nil

	case "whoami":
		if err := core.Session.Initialize(ctx); err != nil {
			return err
		}
		identity := core.Session.Identity(ctx)
		if identity == nil {
			fmt.Println("anonymous")
			return nil
		}
		fmt.Printf("%s (%s, user %d)\n", identity.Email, identity.Role, identity.UserID)
		return nil

	case "toggle":
		store, entityID, err := storeArgs(ctx, core, args)
		if err != nil {
			return err
		}
		if err := store.Toggle(ctx, entityID); err != nil {
			return err
		}
		fmt.Printf("%s %d -> %s\n", store.Kind(), entityID, store.StateOf(entityID))
		return nil

	case "state":
		store, entityID, err := storeArgs(ctx, core, args)
		if err != nil {
			return err
		}
		fmt.Printf("%s %d: %s (+%d/-%d)\n",
			store.Kind(), entityID, store.StateOf(entityID),
			store.PositiveCounts().Get(entityID), store.NegativeCounts().Get(entityID))
		return nil

	case "search":
		if len(args) != 1 {
			return errors.New("usage: yomi search <query>")
		}
		results, err := core.Catalog.Search(ctx, args[0])
		if err != nil {
			return err
		}
		for _, comic := range results {
			fmt.Printf("%-6d %-30s favorites=%d likes=%d\n",
				comic.ID, comic.Title, comic.FavoriteCount, comic.LikeCount)
		}
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// storeArgs resolves the <kind> <entity-id> argument pair against the core,
// initializing the session first so toggles see the restored viewer.
func storeArgs(ctx context.Context, core *client.Client, args []string) (*interaction.Store, int64, error) {
	if len(args) != 2 {
		return nil, 0, errors.New("usage: yomi <command> <kind> <entity-id>")
	}

	if err := core.Session.Initialize(ctx); err != nil {
		return nil, 0, err
	}

	var store *interaction.Store
	for _, candidate := range core.Stores() {
		if candidate.Kind() == interaction.Kind(args[0]) {
			store = candidate
			break
		}
	}
	if store == nil {
		return nil, 0, fmt.Errorf("unknown kind %q", args[0])
	}

	entityID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("entity id must be numeric: %w", err)
	}
	return store, entityID, nil
}

// runDevServer starts the offline stub and blocks until a signal.
func runDevServer(log *slog.Logger) {
	addr := ":8080"
	if len(os.Args) > 2 {
		addr = os.Args[2]
	}

	server, err := devserver.New(log)
	must(log, err, "seed dev server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("dev server stopped cleanly")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  yomi login <email> <password>
  yomi logout
  yomi whoami
  yomi toggle <kind> <entity-id>
  yomi state <kind> <entity-id>
  yomi search <query>
  yomi serve-dev [addr]`)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
