package db

import (
	"context"
	"database/sql"
	"testing"
)

var allTables = []string{
	"sokuji_sessions", "sokuji_channels", "sokuji_configs", "sokuji_widget_users",
	"latest_tracks", "track_overrides", "guild_profiles", "kv",
}

func cleanDatabase(t *testing.T, ctx context.Context, db *sql.DB) {
	t.Helper()
	for _, table := range append([]string{"schema_migrations"}, allTables...) {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`); err != nil {
			t.Fatalf("drop %s: %v", table, err)
		}
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_name = $1
	)`, table).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check table %s: %v", table, err)
	}
	return exists
}

// TestRunMigrations tests that migrations can be applied to an empty database
func TestRunMigrations(t *testing.T) {
	db := openTestDB(t)
	cleanDatabase(t, context.Background(), db)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	for _, table := range allTables {
		if !tableExists(t, db, table) {
			t.Errorf("table %s does not exist after migration", table)
		}
	}

	version, dirty, err := GetMigrationVersion(db)
	if err != nil {
		t.Fatalf("GetMigrationVersion() error = %v", err)
	}
	if dirty {
		t.Errorf("migration version is dirty")
	}
	if version != 2 {
		t.Errorf("migration version = %d, want 2", version)
	}

	// Running again is a no-op.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
}

// TestMigrationUpDown tests forward and backward migration
func TestMigrationUpDown(t *testing.T) {
	db := openTestDB(t)
	cleanDatabase(t, context.Background(), db)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	version, dirty, err := GetMigrationVersion(db)
	if err != nil {
		t.Fatalf("GetMigrationVersion() after down error = %v", err)
	}
	if dirty || version != 1 {
		t.Errorf("after down: version=%d dirty=%v, want 1 clean", version, dirty)
	}
	if tableExists(t, db, "latest_tracks") {
		t.Error("latest_tracks should be dropped by rolling back migration 2")
	}
	if !tableExists(t, db, "sokuji_sessions") {
		t.Error("sokuji_sessions should survive rolling back migration 2")
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() after rollback error = %v", err)
	}
	if !tableExists(t, db, "latest_tracks") {
		t.Error("latest_tracks missing after re-apply")
	}
}

// TestMigrateThenVersioned checks that the fallback schema and the versioned
// migrations agree: versioned migrations run cleanly on top of it.
func TestMigrateThenVersioned(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cleanDatabase(t, ctx, db)

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() on fallback schema error = %v", err)
	}
}
