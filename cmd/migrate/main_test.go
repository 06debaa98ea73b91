package main

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/onnwee/sokuji-bot/testutil"
)

func TestParsePruneFlags(t *testing.T) {
	o, err := parsePruneFlags(nil)
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if o.OlderThan != 720*time.Hour || o.DryRun || o.Channel != "" {
		t.Fatalf("unexpected defaults: %+v", o)
	}

	o, err = parsePruneFlags([]string{"--older-than", "48h", "--channel", "c1", "--dry-run"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if o.OlderThan != 48*time.Hour || !o.DryRun || o.Channel != "c1" {
		t.Fatalf("unexpected options: %+v", o)
	}

	if _, err := parsePruneFlags([]string{"--older-than", "0s"}); err == nil {
		t.Fatal("expected error for zero cutoff")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run(context.Background(), nil, "sideways", nil); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func insertSession(t *testing.T, database *sql.DB, id, channel string, ended bool, updated time.Time) {
	t.Helper()
	_, err := database.ExecContext(context.Background(),
		`INSERT INTO sokuji_sessions (id, channel_id, is_ended, record, updated_at) VALUES ($1, $2, $3, '{}', $4)`,
		id, channel, ended, updated)
	if err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
	t.Cleanup(func() {
		_, _ = database.ExecContext(context.Background(), `DELETE FROM sokuji_sessions WHERE id = $1`, id)
	})
}

func TestPruneSessions(t *testing.T) {
	database := testutil.SetupTestDB(t)
	ctx := context.Background()
	old := time.Now().Add(-72 * time.Hour)

	insertSession(t, database, "prune-old-ended", "prune-c1", true, old)
	insertSession(t, database, "prune-old-open", "prune-c1", false, old)
	insertSession(t, database, "prune-new-ended", "prune-c1", true, time.Now())
	insertSession(t, database, "prune-old-current", "prune-c2", true, old)
	if _, err := database.ExecContext(ctx, `INSERT INTO sokuji_channels (channel_id, session_id) VALUES ('prune-c2', 'prune-old-current')`); err != nil {
		t.Fatalf("insert channel: %v", err)
	}
	t.Cleanup(func() {
		_, _ = database.ExecContext(ctx, `DELETE FROM sokuji_channels WHERE channel_id = 'prune-c2'`)
	})

	cutoff := time.Now().Add(-24 * time.Hour)
	n, err := pruneSessions(ctx, database, cutoff, "prune-c1", true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if n != 1 {
		t.Fatalf("dry run matched %d sessions, want 1", n)
	}

	for _, channel := range []string{"prune-c1", "prune-c2"} {
		if _, err := pruneSessions(ctx, database, cutoff, channel, false); err != nil {
			t.Fatalf("prune %s: %v", channel, err)
		}
	}

	var left int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM sokuji_sessions WHERE id LIKE 'prune-%'`).Scan(&left); err != nil {
		t.Fatalf("count: %v", err)
	}
	if left != 3 {
		t.Fatalf("%d sessions left, want 3", left)
	}
}
