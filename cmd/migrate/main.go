// Package main provides a CLI for schema migrations and session retention.
//
// Usage:
//
//	migrate up
//	migrate down
//	migrate version
//	migrate prune [--older-than 720h] [--channel CHANNEL] [--dry-run]
//
// prune deletes ended sessions last updated before the cutoff. Sessions a
// channel still points at are kept so they can be resumed.
//
// Environment Variables:
//
//	DB_DSN: Database connection string (required)
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/onnwee/sokuji-bot/db"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down|version|prune [flags]")
		os.Exit(2)
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		slog.Error("DB_DSN environment variable is required")
		os.Exit(1)
	}
	database, err := db.Connect(dsn)
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()

	if err := run(context.Background(), database, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("migrate failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

// pruneOptions are the flags of the prune command.
type pruneOptions struct {
	OlderThan time.Duration
	Channel   string
	DryRun    bool
}

func parsePruneFlags(args []string) (pruneOptions, error) {
	var o pruneOptions
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	fs.DurationVar(&o.OlderThan, "older-than", 30*24*time.Hour, "Delete ended sessions not updated for this long")
	fs.StringVar(&o.Channel, "channel", "", "Prune one channel only (default: all channels)")
	fs.BoolVar(&o.DryRun, "dry-run", false, "Show what would be deleted without making changes")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.OlderThan <= 0 {
		return o, errors.New("--older-than must be positive")
	}
	return o, nil
}

func run(ctx context.Context, database *sql.DB, command string, args []string) error {
	switch command {
	case "up":
		return db.RunMigrations(database)
	case "down":
		return db.MigrateDown(database)
	case "version":
		v, dirty, err := db.GetMigrationVersion(database)
		if err != nil {
			return err
		}
		slog.Info("migration version", slog.Uint64("version", uint64(v)), slog.Bool("dirty", dirty))
		return nil
	case "prune":
		o, err := parsePruneFlags(args)
		if err != nil {
			return err
		}
		n, err := pruneSessions(ctx, database, time.Now().Add(-o.OlderThan), o.Channel, o.DryRun)
		if err != nil {
			return err
		}
		slog.Info("prune summary", slog.Int64("sessions", n), slog.Bool("dry_run", o.DryRun))
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

const pruneWhere = `
	FROM sokuji_sessions s
	WHERE s.is_ended
	  AND s.updated_at < $1
	  AND ($2 = '' OR s.channel_id = $2)
	  AND NOT EXISTS (SELECT 1 FROM sokuji_channels c WHERE c.session_id = s.id)`

// pruneSessions deletes ended sessions updated before cutoff and returns how
// many matched.
func pruneSessions(ctx context.Context, database *sql.DB, cutoff time.Time, channel string, dryRun bool) (int64, error) {
	if dryRun {
		var n int64
		if err := database.QueryRowContext(ctx, `SELECT COUNT(*)`+pruneWhere, cutoff, channel).Scan(&n); err != nil {
			return 0, fmt.Errorf("count sessions: %w", err)
		}
		return n, nil
	}
	res, err := database.ExecContext(ctx, `DELETE FROM sokuji_sessions WHERE id IN (SELECT s.id`+pruneWhere+`)`, cutoff, channel)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}
