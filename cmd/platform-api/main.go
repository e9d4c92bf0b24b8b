package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desslyhub/platform/internal/api"
	"github.com/desslyhub/platform/internal/config"
	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/db"
	"github.com/desslyhub/platform/internal/logging"
	"github.com/desslyhub/platform/internal/policy"
	"github.com/desslyhub/platform/internal/vault"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "create-user":
			createUser(os.Args[2:])
			return
		case "create-token":
			createToken(os.Args[2:])
			return
		}
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

	v, err := vault.New(cfg.VaultKey, cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vault")
	}

	pol := policy.New(cfg.PolicyPath, logger)

	srv := api.NewServer(logger, pool, cfg, pol, v)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting platform API server")
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

func createUser(args []string) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "Username for the new user (required)")
	fs.Parse(args)

	if *username == "" {
		fmt.Fprintln(os.Stderr, "error: --username is required")
		fmt.Fprintln(os.Stderr, "usage: platform-api create-user --username <name>")
		os.Exit(1)
	}

	_, pool := mustConnect()
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := core.NewUserService(pool)
	user, err := svc.Create(ctx, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully.\n\n")
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  UUID:     %s\n", user.ID)
}

func createToken(args []string) {
	fs := flag.NewFlagSet("create-token", flag.ExitOnError)
	name := fs.String("name", "", "Name for the token (required)")
	userID := fs.String("user", "", "UUID of the owning user (required)")
	level := fs.Int("level", 0, "Access level (0, 1, or 2)")
	fs.Parse(args)

	if *name == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "error: --name and --user are required")
		fmt.Fprintln(os.Stderr, "usage: platform-api create-token --name <name> --user <uuid> [--level 0|1|2]")
		os.Exit(1)
	}

	cfg, pool := mustConnect()
	defer pool.Close()

	v, err := vault.New(cfg.VaultKey, cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize vault: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := core.NewAPITokenService(pool, v)
	tok, rawSecret, err := svc.Issue(ctx, *name, *userID, *level, nil, "cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API token created successfully.\n\n")
	fmt.Printf("  Name:   %s\n", tok.Name)
	fmt.Printf("  UUID:   %s\n", tok.ID)
	fmt.Printf("  Level:  %d\n", tok.AccessLevel)
	fmt.Printf("  Token:  %s\n\n", rawSecret)
	fmt.Printf("Save this token, it will not be shown again.\n")
}

func mustConnect() (*config.Config, *pgxpool.Pool) {
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
	return cfg, pool
}
