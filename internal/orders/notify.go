package orders

import (
	"context"
	"github.com/ariefcatur/go-shop-orders.git/internal/events"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"time"
)

// Events receives the workflow's outward notifications. Implementations must
// not block the request for long and never fail it.
type Events interface {
	OrderPlaced(ctx context.Context, o Order)
	RestoreFailed(ctx context.Context, ref string, r inventory.Reservation, cause error)
}

type NopEvents struct{}

func (NopEvents) OrderPlaced(context.Context, Order) {}

func (NopEvents) RestoreFailed(context.Context, string, inventory.Reservation, error) {}

type publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

// KafkaEvents publishes envelopes (v1) to order.placed and
// inventory.restore_failed.
type KafkaEvents struct {
	Placed    publisher
	Incidents publisher
	Service   string
	Log       *zap.Logger
}

func (k *KafkaEvents) envelope(ctx context.Context, eventType, correlation string, payload any) events.Envelope {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		CorrelationID: correlation,
		Payload:       kafkax.MustMarshal(payload),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev.TraceID = sc.TraceID().String()
	}
	return ev
}

func (k *KafkaEvents) OrderPlaced(ctx context.Context, o Order) {
	items := make([]events.ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	ev := k.envelope(ctx, events.EventOrderPlaced, o.ID, events.OrderPlacedPayload{
		OrderID: o.ID, UserID: o.UserID, Items: items,
	})
	if err := k.Placed.Publish(ctx, events.PartitionKey(o.ID), kafkax.MustMarshal(ev), kafkax.EventHeaders(ev.EventType)...); err != nil {
		k.Log.Warn("publish order placed", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (k *KafkaEvents) RestoreFailed(ctx context.Context, ref string, r inventory.Reservation, cause error) {
	drawn := make([]events.SizeQty, 0, len(r.Drawn))
	for _, d := range r.Drawn {
		drawn = append(drawn, events.SizeQty{Size: string(d.Size), Qty: d.Quantity})
	}
	ev := k.envelope(ctx, events.EventInventoryRestoreFail, ref, events.InventoryRestoreFailedPayload{
		OrderRef:  ref,
		ProductID: r.Product.ID,
		Qty:       r.Quantity,
		Drawn:     drawn,
		Reason:    cause.Error(),
	})
	if err := k.Incidents.Publish(ctx, events.PartitionKey(ref), kafkax.MustMarshal(ev), kafkax.EventHeaders(ev.EventType)...); err != nil {
		// last resort: log line is the only record left
		k.Log.Error("publish restore failure", zap.String("order_ref", ref), zap.String("product_id", r.Product.ID),
			zap.Int("qty", r.Quantity), zap.Error(err))
	}
}
