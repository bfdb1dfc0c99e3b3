package orders

import (
	"context"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	"github.com/ariefcatur/go-shop-orders.git/internal/logx"
	"go.uber.org/zap"
)

type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]inventory.Product, error)
}

// Query is the read side of the ledger. Items are enriched with the product as
// it exists at read time.
type Query struct {
	Ledger   Ledger
	Products ProductLookup
	Log      *zap.Logger
}

// ListByUser returns one page of userID's orders and the unpaginated count.
// An item whose product no longer resolves stays in the list flagged
// Unavailable and does not count towards TotalPrice.
func (q *Query) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]OrderView, int, error) {
	if userID <= 0 {
		return nil, 0, apperr.Validation("orders.ListByUser", "userId must be a positive integer")
	}
	orders, total, err := q.Ledger.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var ids []string
	seen := map[string]bool{}
	for _, o := range orders {
		for _, it := range o.Items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
	}
	products, err := q.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	log := logx.FromContext(ctx, q.Log)
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{ID: o.ID, UserID: o.UserID, CreatedAt: o.CreatedAt, Items: make([]ItemView, 0, len(o.Items))}
		for _, it := range o.Items {
			p, ok := products[it.ProductID]
			if !ok {
				log.Warn("order references unknown product", zap.String("order_id", o.ID), zap.String("product_id", it.ProductID))
				v.Items = append(v.Items, ItemView{ProductID: it.ProductID, Qty: it.Qty, Unavailable: true})
				continue
			}
			v.Items = append(v.Items, ItemView{ProductID: p.ID, ProductName: p.Name, Qty: it.Qty})
			v.TotalPrice += p.Price * float64(it.Qty)
		}
		views = append(views, v)
	}
	return views, total, nil
}
