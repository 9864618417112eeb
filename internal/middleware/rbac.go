package middleware

import (
	"slices"

	"cityshops/internal/common"
	"cityshops/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole admits only principals holding one of roles. It must run
// after JWTMiddleware.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return common.SendAppError(c, common.Unauthorized("User not authenticated"))
			}
			if !slices.Contains(roles, principal.Role) {
				return common.SendAppError(c, common.Forbidden("Insufficient permissions"))
			}
			return next(c)
		}
	}
}
