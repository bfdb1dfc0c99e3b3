package inventory

import (
	"context"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
)

// Store owns product records and their stock.
//
// Reserve and Release are atomic per product: two concurrent reservations that
// together exceed the stock never both succeed.
type Store interface {
	FindByName(ctx context.Context, name string, partial bool) ([]Product, error)
	FindBySize(ctx context.Context, size string) ([]Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	Create(ctx context.Context, n NewProduct) (Product, error)
	Reserve(ctx context.Context, id string, qty int) (Reservation, error)
	Release(ctx context.Context, r Reservation) (Product, error)
	List(ctx context.Context, f Filter) ([]Product, int, error)
}

func parseSizeFilter(op, raw string) (Size, error) {
	sz, ok := ParseSize(raw)
	if !ok {
		return "", apperr.Validation(op, "invalid size value, must be one of %v", allSizes)
	}
	return sz, nil
}

func checkReserve(op string, p Product, qty int) error {
	if qty > p.TotalQuantity {
		return apperr.InsufficientStock(op, "insufficient stock for product %s", p.ID)
	}
	return nil
}
