package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Staff roles known to the route guard and the RBAC layer.
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleDoctor       = "doctor"
	RoleLaboratorian = "laboratorian"
)

// publicRoutes are reachable without a session. A path matches exactly
// or as a child of the route.
var publicRoutes = []string{"/", "/login", "/api/auth/login", "/api/auth/logout"}

// protectedPrefixes are the page trees that require a session.
var protectedPrefixes = []string{"/admin", "/reception", "/patients"}

// IsPublicRoute reports whether the path is on the public allow-list.
func IsPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

// IsProtectedRoute reports whether the path falls under a protected tree.
func IsProtectedRoute(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// DefaultLandingPath is where a role is sent when it may not view the
// page it asked for.
func DefaultLandingPath(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleReceptionist, RoleDoctor, RoleLaboratorian:
		return "/reception/queue"
	default:
		return "/"
	}
}

// hasAccess applies the role policy: admin goes anywhere; every other
// role may use the reception and patient trees but not the admin one.
func hasAccess(path, role string) bool {
	if role == RoleAdmin {
		return true
	}
	if strings.HasPrefix(path, "/reception") || strings.HasPrefix(path, "/patients") {
		return true
	}
	if strings.HasPrefix(path, "/admin") {
		return false
	}
	return true
}

// RouteGuard gates every page request. Public routes pass through;
// protected routes require a verified session cookie and a role allowed
// on the requested tree; anything else is untouched.
//
// The guard redirects rather than erroring because its subjects are
// browser page loads. A missing session keeps the originally requested
// path in the login redirect; a stale or forged cookie is cleared so the
// browser does not loop through failed verifications.
func RouteGuard(secret string, secureCookies bool, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if IsPublicRoute(path) {
				return next(c)
			}

			if !IsProtectedRoute(path) {
				return next(c)
			}

			token := sessionToken(c)
			if token == "" {
				return redirectToLogin(c, path)
			}

			if secret == "" {
				logger.Error().Msg("JWT_SECRET is not set")
				return redirectToLogin(c, path)
			}

			claims, err := VerifyToken(secret, token)
			if err != nil {
				ClearSessionCookie(c, secureCookies)
				return c.Redirect(http.StatusFound, "/login")
			}

			if !hasAccess(path, claims.Role) {
				return c.Redirect(http.StatusFound, DefaultLandingPath(claims.Role))
			}

			return next(c)
		}
	}
}

func redirectToLogin(c echo.Context, requested string) error {
	q := url.Values{}
	q.Set("redirect", requested)
	return c.Redirect(http.StatusFound, "/login?"+q.Encode())
}
