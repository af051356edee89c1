package models

import "time"

// InventoryItem is site-scoped stock (uniforms, books, materials). Stock is
// only decremented inside the sale transaction and never goes negative.
type InventoryItem struct {
	ID        string    `db:"id" json:"id"`
	SiteID    string    `db:"site_id" json:"site_id"`
	Name      string    `db:"name" json:"name"`
	Stock     int       `db:"stock" json:"stock"`
	UnitPrice float64   `db:"unit_price" json:"unit_price"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InventorySale records a completed sale. Total is the unit price at sale
// time multiplied by quantity.
type InventorySale struct {
	ID        string    `db:"id" json:"id"`
	ItemID    string    `db:"item_id" json:"item_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	UnitPrice float64   `db:"unit_price" json:"unit_price"`
	Total     float64   `db:"total" json:"total"`
	SoldAt    time.Time `db:"sold_at" json:"sold_at"`
}

// InventoryFilter scopes inventory listings.
type InventoryFilter struct {
	SiteID   string
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
