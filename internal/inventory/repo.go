package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"strings"
)

const productCols = `id, name, price, sizes, total_quantity, created_at, updated_at`

// Repo is the Postgres-backed Store. Stock changes run in one transaction with
// the product row locked (SELECT ... FOR UPDATE).
type Repo struct{ DB *pgxpool.Pool }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p     Product
		sizes []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &sizes, &p.TotalQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
		return Product{}, fmt.Errorf("decode sizes of %s: %w", p.ID, err)
	}
	return p, nil
}

func (r *Repo) query(ctx context.Context, op, where string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products `+where, args...)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Persistence(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return out, nil
}

func (r *Repo) FindByName(ctx context.Context, name string, partial bool) ([]Product, error) {
	if partial {
		return r.query(ctx, "inventory.FindByName",
			`WHERE strpos(lower(name), lower($1)) > 0 ORDER BY created_at, id`, name)
	}
	return r.query(ctx, "inventory.FindByName", `WHERE lower(name) = lower($1) ORDER BY created_at, id`, name)
}

func sizeContains(sz Size) string {
	b, _ := json.Marshal([]map[string]Size{{"size": sz}})
	return string(b)
}

func (r *Repo) FindBySize(ctx context.Context, size string) ([]Product, error) {
	const op = "inventory.FindBySize"
	sz, err := parseSizeFilter(op, size)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, op, `WHERE sizes @> $1::jsonb ORDER BY created_at, id`, sizeContains(sz))
}

func (r *Repo) FindByID(ctx context.Context, id string) (Product, error) {
	const op = "inventory.FindByID"
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, apperr.NotFound(op, "product with id %s not found", id)
	}
	if err != nil {
		return Product{}, apperr.Persistence(op, err)
	}
	return p, nil
}

func (r *Repo) FindByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ps, err := r.query(ctx, "inventory.FindByIDs", `WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, n NewProduct) (Product, error) {
	const op = "inventory.Create"
	n, err := n.normalize()
	if err != nil {
		return Product{}, err
	}

	// cek nama dulu biar pesan error jelas; unique index tetap jadi penjaga terakhir
	existing, err := r.FindByName(ctx, n.Name, false)
	if err != nil {
		return Product{}, err
	}
	if len(existing) > 0 {
		return Product{}, apperr.Conflict(op, "product with this name already exists")
	}

	sizes, err := json.Marshal(n.Sizes)
	if err != nil {
		return Product{}, apperr.Persistence(op, err)
	}
	p := Product{ID: uuid.NewString(), Name: n.Name, Price: n.Price, Sizes: n.Sizes, TotalQuantity: sumSizes(n.Sizes)}
	err = r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, price, sizes, total_quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Price, sizes, p.TotalQuantity,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, apperr.Conflict(op, "product with this name already exists")
		}
		return Product{}, apperr.Persistence(op, err)
	}
	return p, nil
}

// withTx runs fn in a transaction. *apperr.Error values returned by fn pass
// through untouched; anything else becomes a persistence error.
func (r *Repo) withTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Persistence(op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperr.Persistence(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Persistence(op, err)
	}
	return nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, op, id string) (Product, error) {
	p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, apperr.NotFound(op, "product with id %s not found", id)
	}
	return p, err
}

func writeStock(ctx context.Context, tx pgx.Tx, p *Product) error {
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		UPDATE products SET sizes=$2, total_quantity=$3, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		p.ID, sizes, p.TotalQuantity,
	).Scan(&p.UpdatedAt)
}

func (r *Repo) Reserve(ctx context.Context, id string, qty int) (Reservation, error) {
	const op = "inventory.Reserve"
	if qty < 1 {
		return Reservation{}, apperr.Validation(op, "quantity must be at least 1")
	}

	var res Reservation
	err := r.withTx(ctx, op, func(tx pgx.Tx) error {
		p, err := lockProduct(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if err := checkReserve(op, p, qty); err != nil {
			return err
		}
		left, drawn := draw(p.Sizes, qty)
		p.Sizes = left
		p.TotalQuantity -= qty
		if err := writeStock(ctx, tx, &p); err != nil {
			return err
		}
		res = Reservation{Product: p, Quantity: qty, Drawn: drawn}
		return nil
	})
	return res, err
}

func (r *Repo) Release(ctx context.Context, res Reservation) (Product, error) {
	const op = "inventory.Release"
	var out Product
	err := r.withTx(ctx, op, func(tx pgx.Tx) error {
		p, err := lockProduct(ctx, tx, op, res.Product.ID)
		if err != nil {
			return err
		}
		p.Sizes = restore(p.Sizes, res.Drawn)
		p.TotalQuantity += sumSizes(res.Drawn)
		if err := writeStock(ctx, tx, &p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Product, int, error) {
	const op = "inventory.List"
	var (
		conds []string
		args  []any
	)
	if f.Name != "" {
		args = append(args, f.Name)
		conds = append(conds, fmt.Sprintf("strpos(lower(name), lower($%d)) > 0", len(args)))
	}
	if f.Size != "" {
		sz, err := parseSizeFilter(op, string(f.Size))
		if err != nil {
			return nil, 0, err
		}
		args = append(args, sizeContains(sz))
		conds = append(conds, fmt.Sprintf("sizes @> $%d::jsonb", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence(op, err)
	}

	args = append(args, f.Offset)
	page := fmt.Sprintf(" ORDER BY created_at, id OFFSET $%d", len(args))
	if f.Limit > 0 {
		args = append(args, f.Limit)
		page += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	ps, err := r.query(ctx, op, where+page, args...)
	if err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}
