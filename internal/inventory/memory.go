package inventory

import (
	"context"
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"github.com/google/uuid"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-process Store used by STORE_DRIVER=memory and tests.
// Each product carries its own mutex; the map lock is never held while a
// product lock is being waited on by a writer.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*memEntry
	order []string
	now   func() time.Time
}

type memEntry struct {
	name string // immutable, readable without mu
	mu   sync.Mutex
	p    Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]*memEntry{}, now: func() time.Time { return time.Now().UTC() }}
}

func (s *MemoryStore) entry(id string) (*memEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	return e, ok
}

func (e *memEntry) snapshot() Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.p.clone()
}

// scan visits products in creation order.
func (s *MemoryStore) scan(keep func(Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Product
	for _, id := range s.order {
		if p := s.byID[id].snapshot(); keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func matchName(p Product, name string, partial bool) bool {
	if partial {
		return strings.Contains(strings.ToLower(p.Name), strings.ToLower(name))
	}
	return strings.EqualFold(p.Name, name)
}

func hasSize(p Product, sz Size) bool {
	for _, s := range p.Sizes {
		if s.Size == sz {
			return true
		}
	}
	return false
}

func (s *MemoryStore) FindByName(_ context.Context, name string, partial bool) ([]Product, error) {
	return s.scan(func(p Product) bool { return matchName(p, name, partial) }), nil
}

func (s *MemoryStore) FindBySize(_ context.Context, size string) ([]Product, error) {
	sz, err := parseSizeFilter("inventory.FindBySize", size)
	if err != nil {
		return nil, err
	}
	return s.scan(func(p Product) bool { return hasSize(p, sz) }), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Product, error) {
	e, ok := s.entry(id)
	if !ok {
		return Product{}, apperr.NotFound("inventory.FindByID", "product with id %s not found", id)
	}
	return e.snapshot(), nil
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	for _, id := range ids {
		if e, ok := s.entry(id); ok {
			out[id] = e.snapshot()
		}
	}
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, n NewProduct) (Product, error) {
	n, err := n.normalize()
	if err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byID {
		if strings.EqualFold(e.name, n.Name) {
			return Product{}, apperr.Conflict("inventory.Create", "product with this name already exists")
		}
	}

	now := s.now()
	p := Product{
		ID:            uuid.NewString(),
		Name:          n.Name,
		Price:         n.Price,
		Sizes:         n.Sizes,
		TotalQuantity: sumSizes(n.Sizes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.byID[p.ID] = &memEntry{name: p.Name, p: p}
	s.order = append(s.order, p.ID)
	return p.clone(), nil
}

func (s *MemoryStore) Reserve(_ context.Context, id string, qty int) (Reservation, error) {
	const op = "inventory.Reserve"
	if qty < 1 {
		return Reservation{}, apperr.Validation(op, "quantity must be at least 1")
	}
	e, ok := s.entry(id)
	if !ok {
		return Reservation{}, apperr.NotFound(op, "product with id %s not found", id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkReserve(op, e.p, qty); err != nil {
		return Reservation{}, err
	}
	left, drawn := draw(e.p.Sizes, qty)
	e.p.Sizes = left
	e.p.TotalQuantity -= qty
	e.p.UpdatedAt = s.now()
	return Reservation{Product: e.p.clone(), Quantity: qty, Drawn: drawn}, nil
}

func (s *MemoryStore) Release(_ context.Context, r Reservation) (Product, error) {
	const op = "inventory.Release"
	e, ok := s.entry(r.Product.ID)
	if !ok {
		return Product{}, apperr.NotFound(op, "product with id %s not found", r.Product.ID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.p.Sizes = restore(e.p.Sizes, r.Drawn)
	e.p.TotalQuantity += sumSizes(r.Drawn)
	e.p.UpdatedAt = s.now()
	return e.p.clone(), nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Product, int, error) {
	if f.Size != "" {
		sz, err := parseSizeFilter("inventory.List", string(f.Size))
		if err != nil {
			return nil, 0, err
		}
		f.Size = sz
	}
	all := s.scan(func(p Product) bool {
		if f.Name != "" && !matchName(p, f.Name, true) {
			return false
		}
		return f.Size == "" || hasSize(p, f.Size)
	})

	total := len(all)
	if f.Offset >= total {
		return []Product{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < total {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], total, nil
}
