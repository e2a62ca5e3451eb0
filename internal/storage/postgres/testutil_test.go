package postgres

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schemaDir holds the SQL applied to every test database, relative to this package.
const schemaDir = "../migrations/postgres"

// newTestPool starts a throwaway PostgreSQL 15 container with the advisor schema
// loaded. The container is terminated when the test finishes.
func newTestPool(t *testing.T) *Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("advisor_test"),
		postgres.WithUsername("advisor"),
		postgres.WithPassword("advisor"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "open pool")
	t.Cleanup(pool.Close)

	loadSchema(t, pool)
	return pool
}

// loadSchema executes every schema file in lexical order.
func loadSchema(t *testing.T, pool *Pool) {
	t.Helper()

	schema := os.DirFS(schemaDir)
	names, err := fs.Glob(schema, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names, "no schema files under %s", schemaDir)

	for _, name := range names {
		body, err := fs.ReadFile(schema, name)
		require.NoError(t, err, "read %s", name)
		_, err = pool.Exec(context.Background(), string(body))
		require.NoError(t, err, "apply %s", name)
	}
}

func ptr[T any](v T) *T {
	return &v
}
