package handlers

import (
	"fmt"
	"net/http"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles order-related HTTP requests
type OrderHandlers struct {
	orderService services.OrderServiceInterface
	shopService  services.ShopServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface, shopService services.ShopServiceInterface) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
		shopService:  shopService,
	}
}

// PlaceOrder handles POST /v1/orders
func (h *OrderHandlers) PlaceOrder(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	var req models.PlaceOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}
	shopID, err := common.ValidateUUID(req.ShopID, "shop_id")
	if err != nil {
		return common.SendAppError(c, common.InvalidRequest(err.Error()))
	}

	order, err := h.orderService.PlaceOrder(c.Request().Context(), principal, shopID, req.DeliveryAddress, req.Notes)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /v1/orders?shop_id=&status=&skip=&limit=
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	shopID, err := queryID(c, "shop_id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	filter := &models.OrderFilter{ShopID: shopID, Skip: skip, Limit: limit}
	if v := c.QueryParam("status"); v != "" {
		status, err := common.ValidateOrderStatus(v)
		if err != nil {
			return common.SendAppError(c, common.InvalidRequest(err.Error()))
		}
		filter.Status = &status
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), principal, filter)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), principal, id)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /v1/orders/:id
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	var req models.UpdateOrderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}

	status, err := common.ValidateOrderStatus(req.Status)
	if err != nil {
		return common.SendAppError(c, common.InvalidRequest(err.Error()))
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), principal, id, status)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetReceipt handles GET /v1/orders/:id/receipt and streams a PDF
func (h *OrderHandlers) GetReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	order, err := h.orderService.GetOrder(ctx, principal, id)
	if err != nil {
		return common.SendAppError(c, err)
	}
	shop, err := h.shopService.GetShop(ctx, order.ShopID)
	if err != nil && !common.IsKind(err, common.KindNotFound) {
		return common.SendAppError(c, err)
	}

	pdfBytes, err := renderReceipt(order, shop)
	if err != nil {
		return common.SendAppError(c, common.Internal("generate receipt", err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=receipt-%s.pdf", order.ID.String()))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}
