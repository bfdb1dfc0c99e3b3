package orders

import (
	"context"
	"github.com/google/uuid"
	"sync"
	"time"
)

// MemoryLedger is the in-process Ledger for STORE_DRIVER=memory and tests.
type MemoryLedger struct {
	mu     sync.RWMutex
	orders []Order
	now    func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{now: func() time.Time { return time.Now().UTC() }}
}

func (l *MemoryLedger) Insert(_ context.Context, userID int64, items []Item) (Order, error) {
	now := l.now()
	o := Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     append([]Item(nil), items...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.mu.Lock()
	l.orders = append(l.orders, o)
	l.mu.Unlock()
	return o, nil
}

func (l *MemoryLedger) FindByUser(_ context.Context, userID int64, limit, offset int) ([]Order, int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var mine []Order
	for _, o := range l.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	total := len(mine)
	if offset >= total {
		return []Order{}, total, nil
	}
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}
	out := make([]Order, 0, end-offset)
	for _, o := range mine[offset:end] {
		o.Items = append([]Item(nil), o.Items...)
		out = append(out, o)
	}
	return out, total, nil
}

// Len reports how many orders were stored.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}
