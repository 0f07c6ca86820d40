package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CookieAuth authenticates JSON API requests from the session cookie and
// places the principal on the request context. Requests without a valid
// token get a 401; page-path redirects are the route guard's job.
func CookieAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			claims, err := VerifyToken(secret, token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
