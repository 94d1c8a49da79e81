package repository

import (
	"context"
	"os"
	"testing"

	"github.com/Bigdanydan/dj-calendar-pro/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TEST_DATABASE_URL and skips the test when it is
// not set.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping PostgreSQL tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.EnsureSchema(ctx, pool))
	return pool
}

func TestEventRepository(t *testing.T) {
	pool := newTestPool(t)

	runStoreContract(t, func(t *testing.T) eventStore {
		_, err := pool.Exec(context.Background(), `TRUNCATE events RESTART IDENTITY`)
		require.NoError(t, err)
		return NewEventRepository(pool)
	})
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	pool := newTestPool(t)
	assert.NoError(t, database.EnsureSchema(context.Background(), pool))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%fabric%`, likePattern("fabric"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, likePattern(`c:\dir`))
}
