package models

import (
	"time"

	"github.com/google/uuid"
)

type Shop struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	CategoryID  *uuid.UUID `json:"category_id" db:"category_id"`
	Address     string     `json:"address" db:"address"`
	Phone       *string    `json:"phone" db:"phone"`
	Email       *string    `json:"email" db:"email"`
	ImageURL    *string    `json:"image_url" db:"image_url"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type ShopFilter struct {
	CategoryID *uuid.UUID
	OwnerID    *uuid.UUID
	ActiveOnly bool
	Skip       int
	Limit      int
}

// ShopInput carries create and partial-update fields; nil means unchanged.
type ShopInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	IsActive    *bool   `json:"is_active"`
}
