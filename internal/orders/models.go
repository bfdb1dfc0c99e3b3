package orders

import "time"

type Order struct {
	ID        string
	UserID    int64
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	ProductID string
	Qty       int
}

// ItemInput is one requested line before validation.
type ItemInput struct {
	ProductID string
	Qty       int
}

// ItemView is an order line enriched with the product as it is now.
type ItemView struct {
	ProductID   string
	ProductName string
	Qty         int
	Unavailable bool // product reference no longer resolves
}

type OrderView struct {
	ID         string
	UserID     int64
	Items      []ItemView
	TotalPrice float64
	CreatedAt  time.Time
}
