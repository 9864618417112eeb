package middleware

import (
	"cityshops/internal/common"
	"cityshops/internal/services"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenContextKey = "user"

// JWTMiddleware verifies the bearer token and attaches the caller's
// Principal to the request context.
func JWTMiddleware(keyfunc jwt.Keyfunc) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		KeyFunc:    keyfunc,
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.AccessClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendAppError(c, common.Unauthorized("missing or invalid token"))
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(attachPrincipal(next))
	}
}

func attachPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return common.SendAppError(c, common.Unauthorized("missing or invalid token"))
		}
		claims, ok := token.Claims.(*services.AccessClaims)
		if !ok {
			return common.SendAppError(c, common.Unauthorized("invalid claims"))
		}

		principal, err := services.PrincipalFromClaims(claims)
		if err != nil {
			return common.SendAppError(c, err)
		}

		c.SetRequest(c.Request().WithContext(common.WithPrincipal(c.Request().Context(), principal)))
		return next(c)
	}
}
