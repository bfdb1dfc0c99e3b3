package orders

import (
	"context"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	"github.com/ariefcatur/go-shop-orders.git/internal/logx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"strings"
	"time"
)

const placeOp = "orders.PlaceOrder"

var tracer = otel.Tracer("github.com/ariefcatur/go-shop-orders.git/internal/orders")

// Inventory is the part of inventory.Store the workflow needs.
type Inventory interface {
	Reserve(ctx context.Context, id string, qty int) (inventory.Reservation, error)
	Release(ctx context.Context, r inventory.Reservation) (inventory.Product, error)
}

// Placer runs the order placement workflow:
//
//	RECEIVED -> VALIDATING -> RESERVING -> COMMITTING -> COMPLETED
//
// with exits to REJECTED (client error) or FAILED (server error). Stock taken
// by a request that does not complete is put back before PlaceOrder returns.
type Placer struct {
	Inventory Inventory
	Ledger    Ledger
	Events    Events // nil = NopEvents
	Log       *zap.Logger

	// CompensationTimeout bounds the stock restore after a failure; it runs
	// detached from the request context. Zero means 10s.
	CompensationTimeout time.Duration
}

// placement is the state of one PlaceOrder call.
type placement struct {
	ref      string
	status   Status
	log      *zap.Logger
	reserved []inventory.Reservation
}

func (pl *placement) to(next Status) {
	if !CanTransition(pl.status, next) {
		pl.log.DPanic("illegal placement transition", zap.String("from", string(pl.status)), zap.String("to", string(next)))
	}
	pl.log.Debug("placement state", zap.String("from", string(pl.status)), zap.String("to", string(next)))
	pl.status = next
}

func (p *Placer) events() Events {
	if p.Events == nil {
		return NopEvents{}
	}
	return p.Events
}

// PlaceOrder validates the request, reserves every item in request order and
// appends the order to the ledger. The first failing item decides the error.
func (p *Placer) PlaceOrder(ctx context.Context, userID int64, items []ItemInput) (Order, error) {
	ctx, span := tracer.Start(ctx, placeOp, trace.WithAttributes(
		attribute.Int64("order.user_id", userID),
		attribute.Int("order.items", len(items)),
	))
	defer span.End()

	ref := logx.RequestID(ctx)
	if ref == "" {
		ref = uuid.NewString()
	}
	pl := &placement{
		ref:    ref,
		status: StatusReceived,
		log:    logx.FromContext(ctx, p.Log).With(zap.String("order_ref", ref), zap.Int64("user_id", userID)),
	}

	o, err := p.run(ctx, pl, userID, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.Message(err))
		if apperr.KindOf(err) == apperr.KindPersistence {
			pl.to(StatusFailed)
			pl.log.Error("order placement failed", zap.Error(err))
		} else {
			pl.to(StatusRejected)
			pl.log.Info("order rejected", zap.String("kind", string(apperr.KindOf(err))), zap.String("reason", apperr.Message(err)))
		}
		return Order{}, err
	}

	pl.to(StatusCompleted)
	span.SetAttributes(attribute.String("order.id", o.ID))
	pl.log.Info("order placed", zap.String("order_id", o.ID))
	p.events().OrderPlaced(ctx, o)
	return o, nil
}

func (p *Placer) run(ctx context.Context, pl *placement, userID int64, items []ItemInput) (Order, error) {
	pl.to(StatusValidating)
	lines, err := validateOrder(userID, items)
	if err != nil {
		return Order{}, err
	}

	pl.to(StatusReserving)
	for _, it := range lines {
		res, err := p.Inventory.Reserve(ctx, it.ProductID, it.Qty)
		if err != nil {
			p.compensate(ctx, pl)
			return Order{}, err
		}
		pl.reserved = append(pl.reserved, res)
	}

	pl.to(StatusCommitting)
	o, err := p.Ledger.Insert(ctx, userID, lines)
	if err != nil {
		p.compensate(ctx, pl)
		return Order{}, apperr.Persistence(placeOp, err)
	}
	return o, nil
}

// compensate puts back everything reserved so far, newest first. A failed
// restore is logged and reported as an incident; it never masks the error
// that caused the compensation.
func (p *Placer) compensate(ctx context.Context, pl *placement) {
	timeout := p.CompensationTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	for i := len(pl.reserved) - 1; i >= 0; i-- {
		r := pl.reserved[i]
		if _, err := p.Inventory.Release(ctx, r); err != nil {
			pl.log.Error("CRITICAL: stock restore failed, inventory inconsistent",
				zap.String("product_id", r.Product.ID), zap.Int("qty", r.Quantity), zap.Error(err))
			p.events().RestoreFailed(ctx, pl.ref, r, err)
			continue
		}
		pl.log.Info("stock restored", zap.String("product_id", r.Product.ID), zap.Int("qty", r.Quantity))
	}
	pl.reserved = nil
}

func validateOrder(userID int64, items []ItemInput) ([]Item, error) {
	if userID <= 0 {
		return nil, apperr.Validation(placeOp, "userId must be a positive integer")
	}
	if len(items) == 0 {
		return nil, apperr.Validation(placeOp, "items must not be empty")
	}
	seen := make(map[string]bool, len(items))
	lines := make([]Item, 0, len(items))
	for i, it := range items {
		id := strings.TrimSpace(it.ProductID)
		if id == "" {
			return nil, apperr.Validation(placeOp, "item %d: productId is required", i)
		}
		if it.Qty < 1 {
			return nil, apperr.Validation(placeOp, "item %d: quantity must be at least 1", i)
		}
		if seen[id] {
			return nil, apperr.Validation(placeOp, "duplicate product %s in order", id)
		}
		seen[id] = true
		lines = append(lines, Item{ProductID: id, Qty: it.Qty})
	}
	return lines, nil
}
