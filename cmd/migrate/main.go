// Command migrate manages the storefront database schema.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const usage = `Storefront database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  steps <n>             Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the current schema version
  force <version>       Record a version without running it (clears dirty state)
  create <name> [desc]  Create a new up/down migration pair
  list                  List migration files

Flags:
  -path string          Migrations directory (default: ./migrations)
  -log-level string     debug, info, warn or error (default: info)

The database is configured through SHOP_DATABASE_* environment variables.`

var errUsage = errors.New("invalid usage")

func main() {
	migrationsPath := flag.String("path", "migrations", "Path to migrations directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(flag.Args(), *migrationsPath, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
		}
		log.Error("Migration command failed", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func run(args []string, migrationsPath string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: command required", errUsage)
	}
	command, params := args[0], args[1:]

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to resolve migrations path: %w", err)
	}
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", absPath),
	)

	switch command {
	case "create":
		return createMigration(absPath, params, log)
	case "list":
		return listMigrations(absPath, log)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, absPath, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := intParam(params, "steps <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		n, err := intParam(params, "goto <version>")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: version must not be negative", errUsage)
		}
		return m.GoTo(uint(n))
	case "force":
		n, err := intParam(params, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(n)
	case "version":
		status, err := m.Status()
		if err != nil {
			return err
		}
		log.Info("Current migration version",
			zap.Uint("version", status.Version),
			zap.Bool("dirty", status.Dirty),
		)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func createMigration(dir string, params []string, log *zap.Logger) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: create <name> [description]", errUsage)
	}
	description := ""
	if len(params) > 1 {
		description = params[1]
	}

	mf, err := migration.CreateMigration(dir, params[0], description, time.Now())
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listMigrations(dir string, log *zap.Logger) error {
	names, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

func intParam(params []string, form string) (int, error) {
	if len(params) == 0 {
		return 0, fmt.Errorf("%w: %s", errUsage, form)
	}
	n, err := strconv.Atoi(params[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", errUsage, form, params[0])
	}
	return n, nil
}
