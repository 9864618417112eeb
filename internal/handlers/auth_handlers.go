package handlers

import (
	"net/http"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userService services.UserServiceInterface
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, userService services.UserServiceInterface) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userService: userService,
	}
}

// LoginResponse represents the login response
type LoginResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}

	user, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login handles POST /v1/auth/login with a username or email
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}

	user, err := h.authService.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		return common.SendAppError(c, err)
	}
	tokens, err := h.authService.GenerateTokens(ctx, user)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, LoginResponse{TokenResponse: *tokens, User: user})
}

// Refresh handles POST /v1/auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req models.RefreshTokenRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}

	tokens, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /v1/auth/logout by revoking the refresh token
func (h *AuthHandlers) Logout(c echo.Context) error {
	var req models.RefreshTokenRequest
	if err := bindJSON(c, &req); err != nil {
		return common.SendAppError(c, err)
	}
	if err := h.authService.RevokeRefreshToken(c.Request().Context(), req.RefreshToken); err != nil {
		return common.SendAppError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return common.SendAppError(c, err)
	}
	user, err := h.userService.GetProfile(c.Request().Context(), principal.UserID)
	if err != nil {
		return common.SendAppError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
