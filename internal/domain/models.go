package domain

import "time"

// Product is a catalog entry. Prices are integer minor units (cents)
// so totals never accumulate floating error.
type Product struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	PriceMinor  int64  `db:"price_minor" json:"priceMinor"`

	// NFTCollection is empty for ungated products. Non-empty means the
	// purchasing wallet must hold a token from the collection.
	NFTCollection string `db:"nft_collection" json:"nftCollection,omitempty"`
	Active        bool   `db:"active" json:"active"`
	CreatedAt     string `db:"created_at" json:"-"`
	UpdatedAt     string `db:"updated_at" json:"-"`
}

// Gated reports whether purchase requires NFT ownership.
func (p Product) Gated() bool { return p.NFTCollection != "" }

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}

// SnapshotItem is one cart line frozen at checkout time.
type SnapshotItem struct {
	ProductID     string `json:"productId"`
	Title         string `json:"title"`
	Qty           int    `json:"qty"`
	UnitMinor     int64  `json:"unitMinor"`
	NFTCollection string `json:"nftCollection,omitempty"`
}

// CartSnapshot captures the full cart state at the moment checkout is
// initiated, so later cart edits never leak into an in-flight checkout.
// Items keep their insertion order.
type CartSnapshot struct {
	SessionID  string         `json:"sessionId"`
	Items      []SnapshotItem `json:"items"`
	TotalMinor int64          `json:"totalMinor"`
	CapturedAt time.Time      `json:"capturedAt"`
}

func (s CartSnapshot) Empty() bool { return len(s.Items) == 0 }
