package orders

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"testing"
)

type staticProducts map[string]inventory.Product

func (s staticProducts) FindByIDs(_ context.Context, ids []string) (map[string]inventory.Product, error) {
	out := map[string]inventory.Product{}
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type brokenProducts struct{}

func (brokenProducts) FindByIDs(context.Context, []string) (map[string]inventory.Product, error) {
	return nil, apperr.Persistence("inventory.FindByIDs", errors.New("timeout"))
}

func TestListByUserEnrichesAndTotals(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	_, _ = ledger.Insert(ctx, 1, []Item{{"p1", 2}, {"p2", 1}})
	_, _ = ledger.Insert(ctx, 2, []Item{{"p1", 9}})

	q := &Query{Ledger: ledger, Products: staticProducts{
		"p1": {ID: "p1", Name: "Red Shirt", Price: 12.5},
		"p2": {ID: "p2", Name: "Cap", Price: 5},
	}}

	views, total, err := q.ListByUser(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, views, 1)
	assert.InDelta(t, 30.0, views[0].TotalPrice, 1e-9)
	assert.Equal(t, []ItemView{
		{ProductID: "p1", ProductName: "Red Shirt", Qty: 2},
		{ProductID: "p2", ProductName: "Cap", Qty: 1},
	}, views[0].Items)
}

func TestListByUserFlagsUnresolvedProducts(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	_, _ = ledger.Insert(ctx, 1, []Item{{"p1", 2}, {"gone", 3}})

	core, logs := observer.New(zap.WarnLevel)
	q := &Query{Ledger: ledger, Products: staticProducts{"p1": {ID: "p1", Name: "Red Shirt", Price: 10}}, Log: zap.New(core)}

	views, _, err := q.ListByUser(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, views[0].Items, 2)
	assert.Equal(t, ItemView{ProductID: "gone", Qty: 3, Unavailable: true}, views[0].Items[1])
	assert.InDelta(t, 20.0, views[0].TotalPrice, 1e-9)
	assert.Equal(t, 1, logs.FilterMessage("order references unknown product").Len())
}

func TestListByUserPaginates(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	for i := 0; i < 25; i++ {
		_, _ = ledger.Insert(ctx, 5, []Item{{"p1", i + 1}})
	}
	q := &Query{Ledger: ledger, Products: staticProducts{}}

	views, total, err := q.ListByUser(ctx, 5, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, views, 5)
	assert.Equal(t, 21, views[0].Items[0].Qty)

	views, total, err = q.ListByUser(ctx, 99, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, views)
}

func TestListByUserErrors(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	_, _ = ledger.Insert(ctx, 1, []Item{{"p1", 1}})

	_, _, err := (&Query{Ledger: ledger, Products: staticProducts{}}).ListByUser(ctx, 0, 10, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = (&Query{Ledger: ledger, Products: brokenProducts{}}).ListByUser(ctx, 1, 10, 0)
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
}
