package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-orders.git/internal/events"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const dedupService = "inventory"

// IncidentService records inventory.restore_failed events so an operator can
// reconcile stock by hand.
type IncidentService struct {
	Incidents IncidentWriter
	Redis     *redis.Client // optional; stock_incidents.event_id is unique anyway
	Log       *zap.Logger
}

// HandleRestoreFailed: dipasang sebagai handler consumer.
func (s *IncidentService) HandleRestoreFailed(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah sukses; commit saja
		s.Log.Error("malformed envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != events.EventInventoryRestoreFail {
		return nil
	}

	if s.Redis != nil {
		first, err := redisx.MarkProcessed(ctx, s.Redis, dedupService, env.EventID)
		if err != nil {
			return fmt.Errorf("dedup %s: %w", env.EventID, err)
		}
		if !first {
			return nil
		}
	}

	if err := s.record(ctx, env); err != nil {
		if s.Redis != nil {
			// lepas tanda supaya redelivery bisa mencoba lagi
			_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyDedup, dedupService, env.EventID)).Err()
		}
		return err
	}
	return nil
}

func (s *IncidentService) record(ctx context.Context, env events.Envelope) error {
	p, err := kafkax.UnwrapPayload[events.InventoryRestoreFailedPayload](env.Payload)
	if err == nil && p.ProductID == "" {
		err = errors.New("missing product_id")
	}
	if err != nil {
		s.Log.Error("malformed restore failure payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	in := Incident{
		EventID:   env.EventID,
		OrderRef:  p.OrderRef,
		ProductID: p.ProductID,
		Quantity:  p.Qty,
		Reason:    p.Reason,
	}
	for _, d := range p.Drawn {
		in.Drawn = append(in.Drawn, SizeStock{Size: Size(d.Size), Quantity: d.Qty})
	}

	created, err := s.Incidents.Save(ctx, in)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	s.Log.Error("stock incident recorded",
		zap.String("event_id", env.EventID),
		zap.String("order_ref", p.OrderRef),
		zap.String("product_id", p.ProductID),
		zap.Int("qty", p.Qty),
		zap.String("trace_id", env.TraceID),
		zap.String("reason", p.Reason))
	return nil
}
