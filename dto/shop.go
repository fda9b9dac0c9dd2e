package dto

// ShopItemRequest defines the payload for creating or updating a shop item.
// InStock defaults to true when omitted.
type ShopItemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	InStock     *bool    `json:"in_stock,omitempty"`
}

// PriceOrZero returns the price, treating a missing value as zero.
func (r ShopItemRequest) PriceOrZero() float64 {
	if r.Price == nil {
		return 0
	}
	return *r.Price
}

// InStockOrDefault returns the stock flag, treating a missing value as true.
func (r ShopItemRequest) InStockOrDefault() bool {
	if r.InStock == nil {
		return true
	}
	return *r.InStock
}
