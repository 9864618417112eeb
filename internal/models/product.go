package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ShopID        uuid.UUID       `json:"shop_id" db:"shop_id"`
	CategoryID    *uuid.UUID      `json:"category_id" db:"category_id"`
	Name          string          `json:"name" db:"name"`
	Description   *string         `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	ImageURL      *string         `json:"image_url" db:"image_url"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	IsAvailable   bool            `json:"is_available" db:"is_available"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type ProductFilter struct {
	ShopID        *uuid.UUID
	CategoryID    *uuid.UUID
	AvailableOnly bool
	Skip          int
	Limit         int
}

// LowStockProduct is a row of the periodic low-stock report.
type LowStockProduct struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ShopID        uuid.UUID `json:"shop_id"`
	ShopName      string    `json:"shop_name"`
	StockQuantity int       `json:"stock_quantity"`
}

// ProductInput carries create and partial-update fields; nil means unchanged.
type ProductInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	CategoryID    *string          `json:"category_id"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	IsAvailable   *bool            `json:"is_available"`
}
