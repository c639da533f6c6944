package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/narkk-storefront/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestRunAppliesStorageSlotsMigration(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)

	if err := Run(ctx, sqlDB, config.DBDriverSQLite, "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}

	if _, err := sqlDB.ExecContext(ctx, `INSERT INTO storage_slots (scope, slot_key, value) VALUES (?, ?, ?)`, "sess", "narkk-cart", []byte(`{"items":[]}`)); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}

	version, err := CurrentVersion(ctx, sqlDB, config.DBDriverSQLite)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != 20250301120000 {
		t.Fatalf("unexpected version %d", version)
	}

	if err := MigrateToVersion(ctx, sqlDB, config.DBDriverSQLite, "0"); err != nil {
		t.Fatalf("migrate down to 0: %v", err)
	}
	if _, err := sqlDB.ExecContext(ctx, `SELECT 1 FROM storage_slots`); err == nil {
		t.Fatalf("expected storage_slots to be dropped")
	}
}

func TestRunRequiresDialect(t *testing.T) {
	if err := Run(context.Background(), openSQLite(t), "", "up"); err == nil {
		t.Fatal("expected missing dialect error")
	}
	if err := Run(context.Background(), nil, config.DBDriverSQLite, "up"); err == nil {
		t.Fatal("expected missing db error")
	}
}

func TestShippedMigrationsAreValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations invalid: %v", err)
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Slot Owner!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_slot_owner.sql") {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected missing down marker error")
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected empty sanitized name error")
	}
}
