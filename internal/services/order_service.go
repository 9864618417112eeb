package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"cityshops/internal/caching"
	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderServiceInterface defines the interface for order service operations
type OrderServiceInterface interface {
	// PlaceOrder turns the customer's cart entries for one shop into a
	// pending order in a single transaction.
	PlaceOrder(ctx context.Context, principal models.Principal, shopID uuid.UUID, deliveryAddress string, notes *string) (*models.Order, error)
	ListOrders(ctx context.Context, principal models.Principal, filter *models.OrderFilter) ([]*models.Order, error)
	GetOrder(ctx context.Context, principal models.Principal, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, principal models.Principal, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	txm   repositories.TxManager
	store *repositories.Store
	cache caching.CacheService
}

// maxOrderTotal is the first amount that no longer fits orders.total_amount.
var maxOrderTotal = decimal.New(1, 12)

// NewOrderService creates a new order service instance. store serves reads
// outside transactions; txm opens the transaction for PlaceOrder.
func NewOrderService(txm repositories.TxManager, store *repositories.Store, cache caching.CacheService) OrderServiceInterface {
	return &orderService{
		txm:   txm,
		store: store,
		cache: cache,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, principal models.Principal, shopID uuid.UUID, deliveryAddress string, notes *string) (*models.Order, error) {
	policy, err := PolicyFor(principal, s.store.Shops)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPlaceOrder(); err != nil {
		return nil, err
	}

	deliveryAddress = strings.TrimSpace(deliveryAddress)
	if deliveryAddress == "" {
		return nil, common.InvalidRequest("delivery address is required")
	}
	if err := common.ValidateOptionalString(notes, "notes", 1000); err != nil {
		return nil, common.InvalidRequest(err.Error())
	}

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      principal.UserID,
		ShopID:          shopID,
		Status:          models.OrderStatusPending,
		DeliveryAddress: deliveryAddress,
		Notes:           notes,
	}

	err = s.txm.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Shops.GetByID(ctx, shopID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return common.NotFound("shop")
			}
			return common.Internal("load shop", err)
		}

		entries, err := tx.Carts.ListForShop(ctx, principal.UserID, shopID)
		if err != nil {
			return common.Internal("load cart", err)
		}
		if len(entries) == 0 {
			return common.InvalidRequest("cart has no items from this shop")
		}

		productIDs := make([]uuid.UUID, 0, len(entries))
		for _, entry := range entries {
			productIDs = append(productIDs, entry.ProductID)
		}
		slices.SortFunc(productIDs, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

		products, err := tx.Products.LockByIDs(ctx, productIDs)
		if err != nil {
			return err
		}

		total := decimal.Zero
		cartIDs := make([]uuid.UUID, 0, len(entries))
		for _, entry := range entries {
			product, ok := products[entry.ProductID]
			if !ok {
				return common.NotFound("product")
			}
			if !product.IsAvailable {
				return common.InvalidRequest(fmt.Sprintf("product %s is not available", product.Name)).
					WithDetail("product", product.Name)
			}
			if product.StockQuantity < entry.Quantity {
				return common.InvalidRequest(fmt.Sprintf("insufficient stock for %s", product.Name)).
					WithDetail("product", product.Name).
					WithDetail("requested", strconv.Itoa(entry.Quantity)).
					WithDetail("available", strconv.Itoa(product.StockQuantity))
			}

			item := &models.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				Quantity:    entry.Quantity,
				Price:       product.Price,
				ProductName: product.Name,
			}
			total = total.Add(item.Subtotal())
			order.Items = append(order.Items, item)
			cartIDs = append(cartIDs, entry.ID)
		}
		if total.GreaterThanOrEqual(maxOrderTotal) {
			return common.InvalidRequest("order total is too large, split the cart into smaller orders").
				WithDetail("total", total.StringFixed(2))
		}
		order.TotalAmount = total

		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := tx.OrderItems.Create(ctx, item); err != nil {
				return err
			}
		}
		for _, item := range order.Items {
			if err := tx.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repositories.ErrStockConflict) {
					return common.Conflict(fmt.Sprintf("stock for %s changed, please retry", item.ProductName))
				}
				return err
			}
		}
		deleted, err := tx.Carts.DeleteByIDs(ctx, principal.UserID, cartIDs)
		if err != nil {
			return fmt.Errorf("failed to clear ordered cart items: %w", err)
		}
		if deleted != int64(len(cartIDs)) {
			return common.Conflict("cart changed while placing the order, please retry")
		}
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("place order", err)
	}

	for _, item := range order.Items {
		if err := s.cache.DeleteProduct(ctx, item.ProductID); err != nil {
			slog.WarnContext(ctx, "failed to invalidate product cache", "product_id", item.ProductID, "error", err)
		}
	}

	slog.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"shop_id", order.ShopID,
		"customer_id", order.CustomerID,
		"items", len(order.Items),
		"total", order.TotalAmount.StringFixed(2),
	)

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, principal models.Principal, filter *models.OrderFilter) ([]*models.Order, error) {
	policy, err := PolicyFor(principal, s.store.Shops)
	if err != nil {
		return nil, err
	}

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, common.InvalidRequest(fmt.Sprintf("invalid status %q", *filter.Status))
	}

	limit, skip, err := common.ValidatePaginationParams(filter.Limit, filter.Skip, common.DefaultOrderPageSize)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}
	filter.Limit, filter.Skip = limit, skip

	if err := policy.ScopeOrders(ctx, filter); err != nil {
		return nil, err
	}

	orders, err := s.store.Orders.List(ctx, filter)
	if err != nil {
		return nil, common.Internal("list orders", err)
	}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, principal models.Principal, orderID uuid.UUID) (*models.Order, error) {
	policy, err := PolicyFor(principal, s.store.Shops)
	if err != nil {
		return nil, err
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanViewOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus sets any of the six statuses; transitions are not restricted.
func (s *orderService) UpdateOrderStatus(ctx context.Context, principal models.Principal, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	policy, err := PolicyFor(principal, s.store.Shops)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageOrders(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, common.InvalidRequest(fmt.Sprintf("invalid status %q", status))
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdateOrderStatus(ctx, order); err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = status
	if err := s.store.Orders.UpdateStatus(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("order")
		}
		return nil, common.Internal("update order status", err)
	}

	slog.InfoContext(ctx, "order status updated", "order_id", order.ID, "from", previous, "to", status)

	if err := s.attachItems(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("order")
		}
		return nil, common.Internal("get order", err)
	}
	return order, nil
}

func (s *orderService) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.store.OrderItems.ListByOrderIDs(ctx, ids)
	if err != nil {
		return common.Internal("load order items", err)
	}
	for _, o := range orders {
		o.Items = items[o.ID]
		if o.Items == nil {
			o.Items = []*models.OrderItem{}
		}
	}
	return nil
}

// classifyStoreError keeps application errors and maps lock or constraint
// failures raised by concurrent writers to Conflict.
func classifyStoreError(operation string, err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if repositories.IsSerializationFailure(err) || repositories.IsCheckViolation(err) {
		return &common.AppError{Kind: common.KindConflict, Message: "concurrent update detected, please retry", Err: err}
	}
	return common.Internal(operation, err)
}
