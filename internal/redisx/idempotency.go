package redisx

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
)

const pending = "pending"

var ErrInFlight = errors.New("request with this idempotency key is still in progress")

// Idempotency remembers the order id produced for a client-supplied
// Idempotency-Key so a retried POST /orders does not place a second order.
type Idempotency struct {
	Redis *redis.Client
}

// Begin claims key. It returns the stored order id when the key already
// completed, ErrInFlight when another request holds it, or "" when the caller
// now owns the key and must call Complete or Abort.
func (i *Idempotency) Begin(ctx context.Context, key string) (string, error) {
	k := fmt.Sprintf(KeyIdemOrderCreate, key)
	ok, err := i.Redis.SetNX(ctx, k, pending, TTLPending).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return "", nil
	}
	v, err := i.Redis.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// expired between SETNX and GET; treat as in flight, client retries
		return "", ErrInFlight
	case err != nil:
		return "", err
	case v == pending:
		return "", ErrInFlight
	}
	return v, nil
}

func (i *Idempotency) Complete(ctx context.Context, key, orderID string) error {
	return i.Redis.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), orderID, TTLIdempotency).Err()
}

// Abort releases key so the client may retry a failed request.
func (i *Idempotency) Abort(ctx context.Context, key string) error {
	return i.Redis.Del(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Err()
}

// MarkProcessed returns true the first time (service, id) is seen.
func MarkProcessed(ctx context.Context, rdb *redis.Client, service, id string) (bool, error) {
	return rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Result()
}
