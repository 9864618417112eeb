package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartLine is a cart entry joined with the live product row.
type CartLine struct {
	CartEntry
	ProductName    string          `json:"product_name"`
	ShopID         uuid.UUID       `json:"shop_id"`
	Price          decimal.Decimal `json:"price"`
	LineTotal      decimal.Decimal `json:"line_total"`
	IsAvailable    bool            `json:"is_available"`
	AvailableStock int             `json:"available_stock"`
	StockWarning   bool            `json:"stock_warning"`
}

type CartSummary struct {
	Items       []*CartLine     `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
