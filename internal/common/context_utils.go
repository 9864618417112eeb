package common

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"cityshops/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type contextKey string

const PrincipalKey contextKey = "principal"

const (
	DefaultPageSize      = 50
	DefaultOrderPageSize = 100
	MaxPageSize          = 1000
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	if len(idStr) != 36 {
		return uuid.Nil, fmt.Errorf("%s must be exactly 36 characters (including hyphens)", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s contains invalid characters: %v", fieldName, err)
	}

	return id, nil
}

// ValidateOptionalUUID parses an optional query parameter.
func ValidateOptionalUUID(idStr, fieldName string) (*uuid.UUID, error) {
	if strings.TrimSpace(idStr) == "" {
		return nil, nil
	}
	id, err := ValidateUUID(idStr, fieldName)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ValidatePositiveInteger validates positive integer values with upper bounds
func ValidatePositiveInteger(value int, fieldName string, maxValue int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value > maxValue {
		return fmt.Errorf("%s cannot exceed %d", fieldName, maxValue)
	}
	return nil
}

// ValidatePrice checks a money amount is positive and fits NUMERIC(10,2).
func ValidatePrice(value decimal.Decimal, fieldName string) error {
	if !value.IsPositive() {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value.GreaterThanOrEqual(decimal.NewFromInt(100_000_000)) {
		return fmt.Errorf("%s cannot exceed 99999999.99", fieldName)
	}
	if !value.Equal(value.Round(2)) {
		return fmt.Errorf("%s cannot have more than 2 decimal places", fieldName)
	}
	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateOptionalString validates optional string fields
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		if len(*value) > maxLength {
			return fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
		}
		*value = strings.TrimSpace(*value)
	}
	return nil
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}

// ValidateOrderStatus validates order status values
func ValidateOrderStatus(status string) (models.OrderStatus, error) {
	s := models.OrderStatus(strings.TrimSpace(status))
	if !s.Valid() {
		return "", fmt.Errorf("order status must be one of: pending, confirmed, preparing, ready, delivered, cancelled")
	}
	return s, nil
}

// GetPrincipalFromContext extracts the authenticated caller from the request context
func GetPrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok
}

// WithPrincipal stores the caller on ctx.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// ValidatePaginationParams clamps limit to (0, MaxPageSize] and rejects
// absurd offsets.
func ValidatePaginationParams(limit, offset, defaultLimit int) (int, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, fmt.Errorf("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}
