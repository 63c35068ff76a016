// Package testdb connects integration tests to a disposable Postgres database.
package testdb

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/volunteer-board/internal/db"
	"go.uber.org/zap"
	"os"
	"testing"
)

const URLEnv = "VOLUNTEER_TEST_DATABASE_URL"

// New returns a pool for the database named by VOLUNTEER_TEST_DATABASE_URL with all
// migrations applied and every table emptied. The test is skipped when the
// variable is unset.
func New(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(URLEnv)
	if url == "" {
		t.Skipf("%s is not set", URLEnv)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, db.Migrate(ctx, pool, zap.NewNop()))

	_, err = pool.Exec(ctx, "TRUNCATE requests, posts")
	require.NoError(t, err)

	return pool
}
