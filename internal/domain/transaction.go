package domain

import (
	"time"
)

const (
	TransactionStatusOffline = "offline"
	TransactionStatusSynced  = "synced"
)

// TransactionLine is one sold item on an offline ticket.
type TransactionLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// OfflineTransaction is a sale captured while the cloud backend is
// unreachable. OfflineID is generated locally and is disjoint from any
// server assigned transaction id; it is the reconciliation key after sync.
type OfflineTransaction struct {
	OfflineID     string            `json:"offline_id"`
	OutletID      string            `json:"outlet_id"`
	Lines         []TransactionLine `json:"lines"`
	Subtotal      float64           `json:"subtotal"`
	Tax           float64           `json:"tax"`
	Total         float64           `json:"total"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}
