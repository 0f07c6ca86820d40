package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepulse/carepulse/internal/platform/auth"
)

// Handler exposes login, logout, session check and staff management.
type Handler struct {
	svc           *Service
	jwtSecret     string
	secureCookies bool
	logger        zerolog.Logger
}

func NewHandler(svc *Service, jwtSecret string, secureCookies bool, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, jwtSecret: jwtSecret, secureCookies: secureCookies, logger: logger}
}

// RegisterAuthRoutes mounts the session endpoints. Login and logout are
// public; the session check reads the cookie itself, so none of these
// sit behind CookieAuth.
func (h *Handler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
}

// RegisterAdminRoutes mounts staff management on the authenticated API.
func (h *Handler) RegisterAdminRoutes(api *echo.Group) {
	admins := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admins.POST("/users", h.CreateUser)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	u, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		h.logger.Error().Err(err).Msg("login failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "an error occurred during login")
	}

	token, err := auth.IssueToken(h.jwtSecret, u.ID, u.Username, u.Role)
	if err != nil {
		h.logger.Error().Err(err).Msg("issuing session token")
		return echo.NewHTTPError(http.StatusInternalServerError, "an error occurred during login")
	}

	auth.SetSessionCookie(c, token, h.secureCookies)
	return c.JSON(http.StatusOK, u.Public())
}

func (h *Handler) Logout(c echo.Context) error {
	auth.ClearSessionCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Me verifies the session cookie and confirms the user still exists in
// the users file before returning the principal.
func (h *Handler) Me(c echo.Context) error {
	cookie, err := c.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	claims, err := auth.VerifyToken(h.jwtSecret, cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	u, err := h.svc.GetByID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return c.JSON(http.StatusOK, u.Public())
}

func (h *Handler) CreateUser(c echo.Context) error {
	var acct NewAccount
	if err := c.Bind(&acct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Create(acct)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u.Public())
}
