package handlers

import (
	"net/http"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/labstack/echo/v4"
)

// ShopHandlers handles shop and shop image requests
type ShopHandlers struct {
	shopService services.ShopServiceInterface
}

func NewShopHandlers(shopService services.ShopServiceInterface) *ShopHandlers {
	return &ShopHandlers{shopService: shopService}
}

// CreateShop handles POST /v1/shops
func (h *ShopHandlers) CreateShop(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	var input models.ShopInput
	if err := bindJSON(c, &input); err != nil {
		return common.SendAppError(c, err)
	}

	shop, err := h.shopService.CreateShop(c.Request().Context(), principal, &input)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusCreated, shop)
}

// GetShop handles GET /v1/shops/:id
func (h *ShopHandlers) GetShop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	shop, err := h.shopService.GetShop(c.Request().Context(), id)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}

// ListShops handles GET /v1/shops?category_id=&active_only=&skip=&limit=
func (h *ShopHandlers) ListShops(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	categoryID, err := queryID(c, "category_id")
	if err != nil {
		return common.SendAppError(c, err)
	}
	activeOnly, err := queryBool(c, "active_only", true)
	if err != nil {
		return common.SendAppError(c, err)
	}

	shops, err := h.shopService.ListShops(c.Request().Context(), &models.ShopFilter{
		CategoryID: categoryID,
		ActiveOnly: activeOnly,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, shops)
}

// ListMyShops handles GET /v1/shops/mine, including inactive shops
func (h *ShopHandlers) ListMyShops(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	ownerID := principal.UserID
	shops, err := h.shopService.ListShops(c.Request().Context(), &models.ShopFilter{
		OwnerID: &ownerID,
		Skip:    skip,
		Limit:   limit,
	})
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, shops)
}

// UpdateShop handles PUT /v1/shops/:id
func (h *ShopHandlers) UpdateShop(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	var input models.ShopInput
	if err := bindJSON(c, &input); err != nil {
		return common.SendAppError(c, err)
	}

	shop, err := h.shopService.UpdateShop(c.Request().Context(), principal, id, &input)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}

// DeleteShop handles DELETE /v1/shops/:id
func (h *ShopHandlers) DeleteShop(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	if err := h.shopService.DeleteShop(c.Request().Context(), principal, id); err != nil {
		return common.SendAppError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadShopImage handles POST /v1/shops/:id/image (multipart field "image")
func (h *ShopHandlers) UploadShopImage(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	upload, closeFn, err := readImage(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	defer closeFn()

	shop, err := h.shopService.UploadShopImage(c.Request().Context(), principal, id, upload)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}
