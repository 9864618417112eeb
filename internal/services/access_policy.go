package services

import (
	"context"

	"cityshops/internal/common"
	"cityshops/internal/models"

	"github.com/google/uuid"
)

// ShopOwnership answers whether a user owns a shop.
type ShopOwnership interface {
	IsOwnedBy(ctx context.Context, shopID, ownerID uuid.UUID) (bool, error)
}

// AccessPolicy holds the per-role authorization rules. Obtain one with PolicyFor.
type AccessPolicy interface {
	Principal() models.Principal
	CanPlaceOrder() error
	// CanManageOrders is the role-level check for order status updates.
	CanManageOrders() error
	// ScopeOrders restricts filter to the orders the principal may see.
	ScopeOrders(ctx context.Context, filter *models.OrderFilter) error
	CanViewOrder(ctx context.Context, order *models.Order) error
	CanUpdateOrderStatus(ctx context.Context, order *models.Order) error
	CanCreateShop() error
	CanManageShop(shop *models.Shop) error
	CanManageCategories() error
}

func PolicyFor(p models.Principal, shops ShopOwnership) (AccessPolicy, error) {
	switch p.Role {
	case models.RoleCustomer:
		return &customerPolicy{principal: p}, nil
	case models.RoleShopOwner:
		return &shopOwnerPolicy{principal: p, shops: shops}, nil
	default:
		return nil, common.Unauthorized("unknown role")
	}
}

type customerPolicy struct {
	principal models.Principal
}

func (c *customerPolicy) Principal() models.Principal { return c.principal }

func (c *customerPolicy) CanPlaceOrder() error { return nil }

func (c *customerPolicy) CanManageOrders() error {
	return common.Forbidden("only shop owners can manage orders")
}

func (c *customerPolicy) ScopeOrders(_ context.Context, filter *models.OrderFilter) error {
	id := c.principal.UserID
	filter.CustomerID = &id
	filter.OwnerID = nil
	return nil
}

func (c *customerPolicy) CanViewOrder(_ context.Context, order *models.Order) error {
	if order.CustomerID != c.principal.UserID {
		return common.Forbidden("not authorized to access this order")
	}
	return nil
}

func (c *customerPolicy) CanUpdateOrderStatus(context.Context, *models.Order) error {
	return c.CanManageOrders()
}

func (c *customerPolicy) CanCreateShop() error {
	return common.Forbidden("only shop owners can create shops")
}

func (c *customerPolicy) CanManageShop(*models.Shop) error {
	return common.Forbidden("not authorized to manage this shop")
}

func (c *customerPolicy) CanManageCategories() error {
	return common.Forbidden("only shop owners can manage categories")
}

type shopOwnerPolicy struct {
	principal models.Principal
	shops     ShopOwnership
}

func (o *shopOwnerPolicy) Principal() models.Principal { return o.principal }

func (o *shopOwnerPolicy) CanPlaceOrder() error {
	return common.Forbidden("only customers can place orders")
}

func (o *shopOwnerPolicy) CanManageOrders() error { return nil }

func (o *shopOwnerPolicy) owns(ctx context.Context, shopID uuid.UUID) error {
	owned, err := o.shops.IsOwnedBy(ctx, shopID, o.principal.UserID)
	if err != nil {
		return common.Internal("check shop ownership", err)
	}
	if !owned {
		return common.Forbidden("not authorized to access this shop's orders")
	}
	return nil
}

func (o *shopOwnerPolicy) ScopeOrders(ctx context.Context, filter *models.OrderFilter) error {
	if filter.ShopID != nil {
		if err := o.owns(ctx, *filter.ShopID); err != nil {
			return err
		}
	}
	id := o.principal.UserID
	filter.OwnerID = &id
	filter.CustomerID = nil
	return nil
}

func (o *shopOwnerPolicy) CanViewOrder(ctx context.Context, order *models.Order) error {
	return o.owns(ctx, order.ShopID)
}

func (o *shopOwnerPolicy) CanUpdateOrderStatus(ctx context.Context, order *models.Order) error {
	return o.owns(ctx, order.ShopID)
}

func (o *shopOwnerPolicy) CanCreateShop() error { return nil }

func (o *shopOwnerPolicy) CanManageShop(shop *models.Shop) error {
	if shop.OwnerID != o.principal.UserID {
		return common.Forbidden("not authorized to manage this shop")
	}
	return nil
}

func (o *shopOwnerPolicy) CanManageCategories() error { return nil }
