package orders

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMemoryLedgerCopiesItems(t *testing.T) {
	l := NewMemoryLedger()
	items := []Item{{"p1", 1}}
	o, err := l.Insert(context.Background(), 1, items)
	require.NoError(t, err)
	items[0].Qty = 99

	got, _, err := l.FindByUser(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, o.ID, got[0].ID)
	assert.Equal(t, 1, got[0].Items[0].Qty)
	assert.Equal(t, got[0].CreatedAt, got[0].UpdatedAt)
}

func TestMemoryLedgerZeroLimitMeansAll(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := l.Insert(ctx, 1, []Item{{"p1", i + 1}})
		require.NoError(t, err)
	}

	got, total, err := l.FindByUser(ctx, 1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Items[0].Qty)
}
