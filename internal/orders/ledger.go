package orders

import "context"

// Ledger is the append-only store of placed orders. FindByUser treats
// limit <= 0 as "no limit", like inventory.Filter.
type Ledger interface {
	Insert(ctx context.Context, userID int64, items []Item) (Order, error)
	FindByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error)
}
