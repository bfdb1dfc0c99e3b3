package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{idempotency_key} -> order_id | "pending"
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLPending     = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
