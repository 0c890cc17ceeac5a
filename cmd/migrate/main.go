package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/coderr/backend/internal/infrastructure/logger"
	"github.com/coderr/backend/internal/infrastructure/migration"
	"github.com/coderr/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		migrationsDir string
		logLevel      string
		fromDisk      bool
	)
	flag.StringVar(&migrationsDir, "path", defaultMigrationsDir, "Migrations directory used by create, list and -disk")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&fromDisk, "disk", false, "Read migrations from -path instead of the embedded set")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	absDir, err := filepath.Abs(migrationsDir)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}

	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		created, err := migration.CreateMigration(absDir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", created.Version),
			zap.String("up_file", created.UpPath),
			zap.String("down_file", created.DownPath),
		)
		return

	case "list":
		entries, err := migration.ListMigrations(absDir)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(entries) == 0 {
			log.Info("No migrations found", zap.String("path", absDir))
			return
		}
		for _, e := range entries {
			marker := ""
			if !e.Complete() {
				marker = " (missing up or down file)"
			}
			fmt.Printf("  %06d %s%s\n", e.Version, e.Name, marker)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatal("SQL migrations target postgres; sqlite schemas are created by the server on startup",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	src := migration.Source{FS: migrations.FS}
	if fromDisk {
		src = migration.Source{Dir: absDir}
	}
	m, err := migration.New(db, src, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, command, args[1:], log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func run(m *migration.Migrator, command string, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		n, err := intArg(args, "goto <version>")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("version must not be negative")
		}
		return m.GoTo(uint(n))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	case "force":
		n, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(n)
	case "drop":
		if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
			return fmt.Errorf("refusing to drop without -confirm")
		}
		return m.Drop()
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing argument, usage: migrate %s", usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Println(`Coderr database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Record a version without running it (fixes a dirty schema)
  drop -confirm         Drop every table
  create <name> [desc]  Write the next numbered up/down pair into -path
  list                  List migrations found in -path

Flags:
  -path string          Migrations directory (default: ./migrations)
  -disk                 Apply migrations from -path instead of the embedded set
  -log-level string     debug, info, warn, error (default: info)

Connection settings come from config.toml or CODERR_DATABASE_* variables.`)
}
