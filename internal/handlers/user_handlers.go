package handlers

import (
	"net/http"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/labstack/echo/v4"
)

type UserHandlers struct {
	userService services.UserServiceInterface
	authService services.AuthService
}

func NewUserHandlers(userService services.UserServiceInterface, authService services.AuthService) *UserHandlers {
	return &UserHandlers{userService: userService, authService: authService}
}

// UpdateProfile handles PUT /v1/users/me
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	var req models.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), principal.UserID, &req)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword handles PUT /v1/users/me/password
func (h *UserHandlers) ChangePassword(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}

	var req models.ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}

	if err := h.authService.ChangePassword(c.Request().Context(), principal.UserID, &req); err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}

// DeleteAccount handles DELETE /v1/users/me
func (h *UserHandlers) DeleteAccount(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	if err := h.userService.DeleteAccount(c.Request().Context(), principal.UserID); err != nil {
		return common.SendAppError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
