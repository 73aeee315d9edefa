package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a throwaway postgres container, applies the schema
// and returns a ready pool. Teardown is registered on t.Cleanup.
func setupTestDB(t *testing.T) *Pool {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("kpi_test"),
		postgres.WithUsername("kpi"),
		postgres.WithPassword("kpi"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "container dsn")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "open pool")
	t.Cleanup(pool.Close)

	applySchema(t, ctx, pool)

	return pool
}

// applySchema runs the postgres migration files in lexical order. They
// are read from disk because the migrations package imports this one,
// so embedding them here would create an import cycle.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	dir := filepath.Join(repoRoot(t), "internal", "storage", "migrations", "postgres")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "read migrations dir")

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		ddl, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, "read migration %s", name)

		_, err = pool.Exec(ctx, string(ddl))
		require.NoError(t, err, "apply migration %s", name)
	}
}

// repoRoot walks upward from the working directory until it finds go.mod.
func repoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above working directory")
		}
		dir = parent
	}
}
