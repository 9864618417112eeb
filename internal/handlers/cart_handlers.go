package handlers

import (
	"net/http"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/labstack/echo/v4"
)

// CartHandlers serves the caller's own cart; entries are never addressed
// across users.
type CartHandlers struct {
	cartService services.CartServiceInterface
}

func NewCartHandlers(cartService services.CartServiceInterface) *CartHandlers {
	return &CartHandlers{cartService: cartService}
}

// GetCart handles GET /v1/cart
func (h *CartHandlers) GetCart(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	summary, err := h.cartService.GetCart(c.Request().Context(), principal.UserID)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// AddItem handles POST /v1/cart/items
func (h *CartHandlers) AddItem(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	var req models.AddCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}
	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return common.SendAppError(c, common.InvalidRequest(err.Error()))
	}

	entry, err := h.cartService.AddItem(c.Request().Context(), principal.UserID, productID, req.Quantity)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// UpdateItem handles PUT /v1/cart/items/:id
func (h *CartHandlers) UpdateItem(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	entryID, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	var req models.UpdateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}

	entry, err := h.cartService.UpdateItem(c.Request().Context(), principal.UserID, entryID, req.Quantity)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// RemoveItem handles DELETE /v1/cart/items/:id
func (h *CartHandlers) RemoveItem(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	entryID, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	if err := h.cartService.RemoveItem(c.Request().Context(), principal.UserID, entryID); err != nil {
		return common.SendAppError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearCart handles DELETE /v1/cart
func (h *CartHandlers) ClearCart(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	if err := h.cartService.ClearCart(c.Request().Context(), principal.UserID); err != nil {
		return common.SendAppError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
