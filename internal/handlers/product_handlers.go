package handlers

import (
	"net/http"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/labstack/echo/v4"
)

// ProductHandlers handles product-related HTTP requests
type ProductHandlers struct {
	productService services.ProductServiceInterface
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductServiceInterface) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// CreateProduct handles POST /v1/shops/:id/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	shopID, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	var input models.ProductInput
	if err := bindJSON(c, &input); err != nil {
		return common.SendAppError(c, err)
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), principal, shopID, &input)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListProducts handles GET /v1/products?shop_id=&category_id=&available_only=&skip=&limit=
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	shopID, err := queryID(c, "shop_id")
	if err != nil {
		return common.SendAppError(c, err)
	}
	categoryID, err := queryID(c, "category_id")
	if err != nil {
		return common.SendAppError(c, err)
	}
	availableOnly, err := queryBool(c, "available_only", false)
	if err != nil {
		return common.SendAppError(c, err)
	}

	products, err := h.productService.ListProducts(c.Request().Context(), &models.ProductFilter{
		ShopID:        shopID,
		CategoryID:    categoryID,
		AvailableOnly: availableOnly,
		Skip:          skip,
		Limit:         limit,
	})
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// UpdateProduct handles PUT /v1/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	var input models.ProductInput
	if err := bindJSON(c, &input); err != nil {
		return common.SendAppError(c, err)
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), principal, id, &input)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /v1/products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	if err := h.productService.DeleteProduct(c.Request().Context(), principal, id); err != nil {
		return common.SendAppError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadProductImage handles POST /v1/products/:id/image
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
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

	product, err := h.productService.UploadProductImage(c.Request().Context(), principal, id, upload)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}
