package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/playlist/internal/api"
	"github.com/erazemk/playlist/internal/auth"
	"github.com/erazemk/playlist/internal/config"
	"github.com/erazemk/playlist/internal/db"
	"github.com/erazemk/playlist/internal/imaging"
	"github.com/erazemk/playlist/internal/store"
)

func main() {
	fs := flag.NewFlagSet("playlist", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var coversDir string
	fs.StringVar(&coversDir, "covers", "", "")

	var resetPassword bool
	fs.BoolVar(&resetPassword, "reset-password", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: playlist [flags]

Flags:
  -c, -config <path>      YAML config file (default: ./playlist.yaml if present)
  -d, -db <path>          SQLite database path (default: playlist.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         rotating log file (default: stdout/stderr only)
      -covers <dir>       cover image directory (default: covers)
      -reset-password     generate a new owner password and exit
  -h, -help               show this help and exit

Every setting can also be given as a PLAYLIST_* environment variable,
e.g. PLAYLIST_DB or PLAYLIST_LOG_PATH.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db", "d":
			cfg.DBPath = dbPath
		case "addr", "a":
			cfg.Addr = addr
		case "log", "l":
			cfg.Log.Path = logPath
		case "covers":
			cfg.CoversDir = coversDir
		}
	})

	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	if err := run(cfg, resetPassword); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, resetPassword bool) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	ctx := context.Background()
	if err := ensureOwnerPassword(ctx, database, resetPassword); err != nil {
		return err
	}
	if resetPassword {
		return nil
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(api.Options{
		DB:          database,
		JWTSecret:   jwtSecret,
		TokenExpiry: cfg.TokenExpiry,
		Covers:      &imaging.Covers{Dir: cfg.CoversDir},
	}))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "covers", cfg.CoversDir)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// ensureOwnerPassword creates the owner password on first run, or replaces it
// when reset is set, and prints the new password once.
func ensureOwnerPassword(ctx context.Context, database *sql.DB, reset bool) error {
	hash, err := store.GetPasswordHash(ctx, database)
	if err != nil {
		return err
	}
	if hash != "" && !reset {
		return nil
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err = auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := store.SetPasswordHash(ctx, database, hash); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}

	printPassword(password, reset)
	return nil
}

func printPassword(password string, reset bool) {
	if reset {
		fmt.Println("Owner password reset.")
	} else {
		fmt.Println("Owner account created.")
	}
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It cannot be recovered, only reset with -reset-password.")
	fmt.Println("It can be changed after logging in.")
	fmt.Println()
}
