package handlers

import (
	"net/http"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/labstack/echo/v4"
)

type CategoryHandlers struct {
	categoryService services.CategoryServiceInterface
}

func NewCategoryHandlers(categoryService services.CategoryServiceInterface) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

// CreateCategory handles POST /v1/categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	var input models.CategoryInput
	if err := bindJSON(c, &input); err != nil {
		return common.SendAppError(c, err)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), principal, &input)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// GetCategory handles GET /v1/categories/:id
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), id)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// ListCategories handles GET /v1/categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	categories, err := h.categoryService.ListCategories(c.Request().Context(), limit, skip)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// UpdateCategory handles PUT /v1/categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	var input models.CategoryInput
	if err := bindJSON(c, &input); err != nil {
		return common.SendAppError(c, err)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), principal, id, &input)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /v1/categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendAppError(c, err)
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), principal, id); err != nil {
		return common.SendAppError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
