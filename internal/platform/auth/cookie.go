package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "auth-token"

// SetSessionCookie attaches the session cookie to the response.
// Secure is set only in production so local development over plain HTTP
// keeps working.
func SetSessionCookie(c echo.Context, token string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken reads the raw token from the request cookie, or "".
func sessionToken(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}
