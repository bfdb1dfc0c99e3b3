package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"time"
)

// Incident is a flagged stock inconsistency: units reserved for a request that
// failed and could not be put back.
type Incident struct {
	ID        string
	EventID   string
	OrderRef  string
	ProductID string
	Quantity  int
	Drawn     []SizeStock
	Reason    string
	CreatedAt time.Time
}

type IncidentWriter interface {
	// Save returns false when an incident with the same EventID exists.
	Save(ctx context.Context, in Incident) (bool, error)
}

type IncidentRepo struct{ DB *pgxpool.Pool }

func (r *IncidentRepo) Save(ctx context.Context, in Incident) (bool, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	drawn, err := json.Marshal(in.Drawn)
	if err != nil {
		return false, fmt.Errorf("encode drawn: %w", err)
	}
	tag, err := r.DB.Exec(ctx, `
		INSERT INTO stock_incidents (id, event_id, order_ref, product_id, quantity, drawn, reason)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
		ON CONFLICT (event_id) DO NOTHING`,
		in.ID, in.EventID, in.OrderRef, in.ProductID, in.Quantity, string(drawn), in.Reason)
	if err != nil {
		return false, fmt.Errorf("insert incident: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListIncidents returns the newest incidents for a product, newest first.
func (r *IncidentRepo) ListIncidents(ctx context.Context, productID string, limit int) ([]Incident, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, event_id, order_ref, product_id, quantity, drawn, reason, created_at
		FROM stock_incidents WHERE product_id = $1
		ORDER BY created_at DESC, id LIMIT $2`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Incident
	for rows.Next() {
		var (
			in    Incident
			drawn []byte
		)
		if err := rows.Scan(&in.ID, &in.EventID, &in.OrderRef, &in.ProductID, &in.Quantity, &drawn, &in.Reason, &in.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(drawn, &in.Drawn); err != nil {
			return nil, fmt.Errorf("decode drawn of %s: %w", in.ID, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
