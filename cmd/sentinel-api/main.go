package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentinelcore/inehss/internal/api"
	"github.com/sentinelcore/inehss/internal/config"
	"github.com/sentinelcore/inehss/internal/db"
	"github.com/sentinelcore/inehss/internal/logging"
	"github.com/sentinelcore/inehss/internal/platform"
	"github.com/sentinelcore/inehss/internal/realtime"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "create-user" {
		createUser(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	hub := realtime.NewHub()

	srv := api.NewServer(logger, pool, hub, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting sentinel API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

// createUser provisions an account with a fresh API key. Bootstrap tooling;
// the API itself never issues accounts.
func createUser(args []string) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address")
	staff := fs.Bool("staff", false, "Grant staff privileges")
	fs.Parse(args)

	if *username == "" {
		fmt.Fprintln(os.Stderr, "error: --username is required")
		fmt.Fprintln(os.Stderr, "usage: sentinel-api create-user --username <name> [--email <addr>] [--staff]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	rawKey := make([]byte, 32)
	if _, err := rand.Read(rawKey); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to generate API key: %v\n", err)
		os.Exit(1)
	}
	key := hex.EncodeToString(rawKey)
	hash := sha256.Sum256([]byte(key))

	id := platform.NewID()
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, email, is_staff, api_key_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		id, *username, *email, *staff, hex.EncodeToString(hash[:]),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully.\n\n")
	fmt.Printf("  Username: %s\n", *username)
	fmt.Printf("  ID:       %s\n", id)
	fmt.Printf("  Staff:    %v\n", *staff)
	fmt.Printf("  API key:  %s\n\n", key)
	fmt.Printf("Save this key - it will not be shown again.\n")
}
