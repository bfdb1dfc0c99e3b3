package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced          = "OrderPlaced"
	EventInventoryRestoreFail = "InventoryRestoreFailed"
)

const (
	TopicOrderPlaced            = "order.placed"
	TopicInventoryRestoreFailed = "inventory.restore_failed"
)

// Partition key = order ref, supaya semua event 1 order maintain urutan.
func PartitionKey(orderRef string) []byte { return []byte(orderRef) }

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderPlacedPayload struct {
	OrderID string    `json:"order_id"`
	UserID  int64     `json:"user_id"`
	Items   []ItemQty `json:"items"`
}

type SizeQty struct {
	Size string `json:"size"`
	Qty  int    `json:"qty"`
}

// InventoryRestoreFailedPayload flags stock that was reserved for a request
// which then failed, and could not be put back.
type InventoryRestoreFailedPayload struct {
	OrderRef  string    `json:"order_ref"` // request id; no order exists for failed placements
	ProductID string    `json:"product_id"`
	Qty       int       `json:"qty"`
	Drawn     []SizeQty `json:"drawn"`
	Reason    string    `json:"reason"`
}
