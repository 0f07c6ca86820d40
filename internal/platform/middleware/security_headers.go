package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets security response headers on every request. The
// server renders pages as well as JSON, so the CSP allows same-origin
// resources but nothing else; patient data must never be cached.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
