package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = map[OrderStatus]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusPreparing: true,
	OrderStatusReady:     true,
	OrderStatusDelivered: true,
	OrderStatusCancelled: true,
}

func (s OrderStatus) Valid() bool {
	return validOrderStatuses[s]
}

type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CustomerID      uuid.UUID       `json:"customer_id" db:"customer_id"`
	ShopID          uuid.UUID       `json:"shop_id" db:"shop_id"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status          OrderStatus     `json:"status" db:"status"`
	DeliveryAddress string          `json:"delivery_address" db:"delivery_address"`
	Notes           *string         `json:"notes" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Items           []*OrderItem    `json:"items" db:"-"`
}

// OrderFilter narrows ListOrders. CustomerID and OwnerID are set by the
// caller's access policy, never from request input.
type OrderFilter struct {
	CustomerID *uuid.UUID
	OwnerID    *uuid.UUID
	ShopID     *uuid.UUID
	Status     *OrderStatus
	Skip       int
	Limit      int
}

type PlaceOrderRequest struct {
	ShopID          string  `json:"shop_id"`
	DeliveryAddress string  `json:"delivery_address"`
	Notes           *string `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
