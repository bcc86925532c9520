package domain

import (
	"time"
)

// Product is a locally cached catalog entry. The cache is replaced by id
// whenever the remote catalog is fetched; the UI never writes products.
type Product struct {
	ID         string    `json:"id" csv:"id"`
	OutletID   string    `json:"outlet_id" csv:"outlet_id"`
	SKU        string    `json:"sku" csv:"sku"`
	Barcode    string    `json:"barcode" csv:"barcode"`
	Name       string    `json:"name" csv:"name"`
	Price      float64   `json:"price" csv:"price"`
	Active     bool      `json:"active" csv:"active"`
	NameTokens []string  `json:"name_tokens" csv:"-"`
	LastSync   time.Time `json:"last_sync" csv:"-"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
