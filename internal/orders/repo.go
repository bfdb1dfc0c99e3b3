package orders

import (
	"context"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres Ledger: one row in orders plus one row per item in
// order_items, written in a single transaction.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, userID int64, items []Item) (Order, error) {
	const op = "orders.Insert"
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, apperr.Persistence(op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := Order{ID: uuid.NewString(), UserID: userID, Items: append([]Item(nil), items...)}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id) VALUES ($1, $2)
		RETURNING created_at, updated_at`, o.ID, userID,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, apperr.Persistence(op, err)
	}

	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`INSERT INTO order_items(order_id, position, product_id, qty) VALUES ($1,$2,$3,$4)`,
			o.ID, i, it.ProductID, it.Qty)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return Order{}, apperr.Persistence(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, apperr.Persistence(op, err)
	}
	return o, nil
}

// pageLimit maps limit <= 0 to LIMIT NULL (no limit).
func pageLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (r *Repo) FindByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error) {
	const op = "orders.FindByUser"
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence(op, err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, created_at, updated_at FROM orders
		WHERE user_id=$1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`, userID, pageLimit(limit), offset)
	if err != nil {
		return nil, 0, apperr.Persistence(op, err)
	}
	out := []Order{}
	idx := map[string]int{}
	ids := []string{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, 0, apperr.Persistence(op, err)
		}
		idx[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Persistence(op, err)
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	items, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, qty FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, 0, apperr.Persistence(op, err)
	}
	defer items.Close()
	for items.Next() {
		var (
			orderID string
			it      Item
		)
		if err := items.Scan(&orderID, &it.ProductID, &it.Qty); err != nil {
			return nil, 0, apperr.Persistence(op, err)
		}
		o := &out[idx[orderID]]
		o.Items = append(o.Items, it)
	}
	if err := items.Err(); err != nil {
		return nil, 0, apperr.Persistence(op, err)
	}
	return out, total, nil
}
