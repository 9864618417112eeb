package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxCartQuantity = 10000

type CartServiceInterface interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartEntry, error)
	UpdateItem(ctx context.Context, userID, entryID uuid.UUID, quantity int) (*models.CartEntry, error)
	RemoveItem(ctx context.Context, userID, entryID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartSummary, error)
}

type cartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) CartServiceInterface {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func validateCartQuantity(quantity int) error {
	if err := common.ValidatePositiveInteger(quantity, "quantity", maxCartQuantity); err != nil {
		return common.InvalidRequest("Quantity must be positive").WithDetail("quantity", err.Error())
	}
	return nil
}

func notEnoughStock(available int) error {
	return common.InvalidRequest("Not enough stock").WithDetail("available", strconv.Itoa(available))
}

func (s *cartService) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("product")
		}
		return nil, common.Internal("get product", err)
	}
	return product, nil
}

// AddItem adds quantity to the user's entry for the product. The combined
// quantity may not exceed current stock.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartEntry, error) {
	if err := validateCartQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, common.InvalidRequest(fmt.Sprintf("product %s is not available", product.Name))
	}

	existing := 0
	entry, err := s.cartRepo.GetByProduct(ctx, userID, productID)
	switch {
	case err == nil:
		existing = entry.Quantity
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, common.Internal("get cart entry", err)
	}

	if existing+quantity > product.StockQuantity {
		return nil, notEnoughStock(product.StockQuantity)
	}

	entry, err = s.cartRepo.Upsert(ctx, userID, productID, quantity)
	if err != nil {
		return nil, common.Internal("add cart item", err)
	}
	return entry, nil
}

// UpdateItem replaces the quantity. Zero is rejected; use RemoveItem.
func (s *cartService) UpdateItem(ctx context.Context, userID, entryID uuid.UUID, quantity int) (*models.CartEntry, error) {
	if err := validateCartQuantity(quantity); err != nil {
		return nil, err
	}

	entry, err := s.cartRepo.GetByID(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("cart item")
		}
		return nil, common.Internal("get cart entry", err)
	}

	product, err := s.loadProduct(ctx, entry.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.StockQuantity {
		return nil, notEnoughStock(product.StockQuantity)
	}

	entry, err = s.cartRepo.UpdateQuantity(ctx, userID, entryID, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("cart item")
		}
		return nil, common.Internal("update cart item", err)
	}
	return entry, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, entryID uuid.UUID) error {
	if err := s.cartRepo.Delete(ctx, userID, entryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.NotFound("cart item")
		}
		return common.Internal("remove cart item", err)
	}
	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.cartRepo.Clear(ctx, userID); err != nil {
		return common.Internal("clear cart", err)
	}
	return nil
}

// GetCart joins entries with live product data. Prices and stock are read
// now, not when the item was added.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartSummary, error) {
	lines, err := s.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, common.Internal("get cart", err)
	}

	summary := &models.CartSummary{Items: lines, TotalAmount: decimal.Zero}
	for _, line := range lines {
		line.LineTotal = line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		line.StockWarning = line.Quantity > line.AvailableStock
		summary.TotalAmount = summary.TotalAmount.Add(line.LineTotal)
	}
	summary.TotalItems = len(lines)
	return summary, nil
}
