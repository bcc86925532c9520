package domain

import (
	"encoding/json"
	"time"
)

const (
	SyncStatusPending    = "pending"
	SyncStatusProcessing = "processing"
	SyncStatusFailed     = "failed"
)

// Queue item types. The payload schema depends on the type.
const (
	SyncTypeTransaction = "transaction"
	SyncTypeStockAdjust = "stock_adjust"
	SyncTypeSetting     = "setting"
)

// SyncQueueItem is one durable outbound mutation awaiting transmission to
// the system of record. Items are replayed strictly in creation order; the
// numeric ID comes from the storage bucket sequence and defines that order.
type SyncQueueItem struct {
	ID        uint64          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    string          `json:"status"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
