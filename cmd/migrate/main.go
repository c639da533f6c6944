package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/narkk-storefront/pkg/config"
	"github.com/angelmondragon/narkk-storefront/pkg/db"
	"github.com/angelmondragon/narkk-storefront/pkg/instance"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/migrate"
	"github.com/joho/godotenv"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

// dbCommand runs against the slot table database.
type dbCommand func(ctx context.Context, sqlDB *sql.DB, dialect string, opts options) error

var dbCommands = map[string]dbCommand{
	"up":     gooseCommand("up"),
	"down":   gooseCommand("down"),
	"status": gooseCommand("status"),
	"current": func(ctx context.Context, sqlDB *sql.DB, dialect string, _ options) error {
		current, err := migrate.CurrentVersion(ctx, sqlDB, dialect)
		if err != nil {
			return fmt.Errorf("reading db version: %w", err)
		}
		fmt.Println("current version:", current)
		return nil
	},
	"version": func(ctx context.Context, sqlDB *sql.DB, dialect string, opts options) error {
		if opts.version == "" {
			return errors.New("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dialect, opts.version)
	},
}

func gooseCommand(name string) dbCommand {
	return func(ctx context.Context, sqlDB *sql.DB, dialect string, _ options) error {
		if err := migrate.Run(ctx, sqlDB, dialect, name); err != nil {
			return fmt.Errorf("goose %s: %w", name, err)
		}
		return nil
	}
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|current|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory on disk (create and validate only)")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// create and validate only touch files on disk
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	command, ok := dbCommands[opts.cmd]
	if !ok {
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Storage.UsesDB() {
		return fmt.Errorf("%s must be %q to run migrations", config.EnvStorageBackend, config.StorageBackendDB)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Static:      map[string]string{"env": cfg.App.Env, "instance": instance.ID()},
	})
	ctx := logg.WithField(context.Background(), "cmd", opts.cmd)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	if err != nil {
		return fmt.Errorf("opening sql handle: %w", err)
	}

	ctx = logg.WithField(ctx, "dialect", dbClient.Dialect())
	logg.Info(ctx, "migrate ready")
	if err := command(ctx, sqlDB, dbClient.Dialect(), opts); err != nil {
		return err
	}
	logg.Info(ctx, "migrate done")
	return nil
}
