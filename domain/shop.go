package domain

import "time"

// ShopItem is a catalog entry managed by admins.
type ShopItem struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Price       float64   `bson:"price" json:"price"`
	Category    string    `bson:"category" json:"category"`
	InStock     bool      `bson:"in_stock" json:"in_stock"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// PurchaseStatus defines the possible states of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Purchase records a purchase request. ItemName and Price are snapshots
// taken when the purchase was created.
type Purchase struct {
	ID        string         `bson:"_id" json:"id"`
	UserID    string         `bson:"user_id" json:"user_id"`
	Username  string         `bson:"username" json:"minecraft_username"`
	ItemID    string         `bson:"item_id" json:"item_id"`
	ItemName  string         `bson:"item_name" json:"item_name"`
	Price     float64        `bson:"price" json:"price"`
	Status    PurchaseStatus `bson:"status" json:"status"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}

// PurchaseTotals summarizes the purchases collection. Revenue excludes
// cancelled purchases and is informational only.
type PurchaseTotals struct {
	Count   int64   `bson:"count" json:"total_purchases"`
	Revenue float64 `bson:"revenue" json:"total_revenue"`
}
