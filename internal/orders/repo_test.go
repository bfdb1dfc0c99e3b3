package orders

import (
	"context"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE order_items, orders`)
	require.NoError(t, err)
	return &Repo{DB: pool}
}

func TestRepoInsertAndFindByUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.Insert(ctx, 11, []Item{{"p1", 2}, {"p2", 1}})
	require.NoError(t, err)
	_, err = r.Insert(ctx, 11, []Item{{"p3", 5}})
	require.NoError(t, err)
	_, err = r.Insert(ctx, 12, []Item{{"p1", 1}})
	require.NoError(t, err)

	got, total, err := r.FindByUser(ctx, 11, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, []Item{{"p1", 2}, {"p2", 1}}, got[0].Items)

	got, _, err = r.FindByUser(ctx, 11, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepoFindByUserZeroLimitMeansAll(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := r.Insert(ctx, 21, []Item{{"p1", i + 1}})
		require.NoError(t, err)
	}

	got, total, err := r.FindByUser(ctx, 21, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, got, 3)
}
