package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// SetupTestDB starts a disposable Postgres container, applies every up
// migration, and returns an open handle. Container and handle are torn down
// with the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("clubfunds_test"),
		postgres.WithUsername("clubfunds"),
		postgres.WithPassword("clubfunds"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrateUp(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// migrateUp applies migrations/*.up.sql in lexical order. go test runs with
// the package directory as its working directory, so walk upward until the
// migrations directory appears.
func migrateUp(db *sql.DB) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	for range 10 {
		if info, err := os.Stat(filepath.Join(root, "migrations")); err == nil && info.IsDir() {
			break
		}
		root = filepath.Dir(root)
	}

	files, err := filepath.Glob(filepath.Join(root, "migrations", "*.up.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no up migrations found from %s", root)
	}
	sort.Strings(files)

	for _, f := range files {
		stmts, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}
		if _, err := db.Exec(string(stmts)); err != nil {
			return fmt.Errorf("apply %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}
