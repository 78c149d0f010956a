package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/middleware"
	"github.com/iliyamo/appregistry/internal/repository"
	"github.com/iliyamo/appregistry/internal/utils"
)

// AuthHandler serves /v1/auth: POST logs in, PUT refreshes, DELETE logs
// out and GET echoes the verified claims.
type AuthHandler struct {
	Users        *repository.UserRepo
	Tokens       *utils.TokenService
	CookieSecure bool
}

func NewAuthHandler(users *repository.UserRepo, tokens *utils.TokenService, secure bool) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, CookieSecure: secure}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Serve dispatches on the request method.
func (h *AuthHandler) Serve(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
		return h.verify(c)
	case http.MethodPost:
		return h.login(c)
	case http.MethodPut:
		return h.refresh(c)
	case http.MethodDelete:
		return h.logout(c)
	}
	return apperr.MethodNotAllowed()
}

func (h *AuthHandler) setCookie(c echo.Context, value string, ttl time.Duration) {
	ck := &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl)
		ck.MaxAge = int(ttl / time.Second)
	} else {
		ck.Expires = time.Unix(0, 0)
		ck.MaxAge = -1
	}
	c.SetCookie(ck)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return apperr.Validation("Username and password are required")
	}

	u, ok, err := h.Users.GetByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return err
	}
	if !ok || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperr.Authentication("Invalid username or password")
	}

	claims := utils.Claims(u.Claims())
	claims["exp"] = h.Tokens.Expiry()
	token, err := h.Tokens.CreateToken(claims)
	if err != nil {
		return apperr.New(apperr.KindInternal, "could not sign token", err)
	}
	h.setCookie(c, token, h.Tokens.TTL())
	return respond(c, http.StatusOK, "Login successful", u)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	ck, err := c.Cookie(middleware.TokenCookie)
	if err != nil {
		return apperr.Authentication("Unauthorized")
	}
	token, ok := h.Tokens.VerifyAndRefreshToken(ck.Value)
	if !ok {
		return apperr.Authentication("Token is invalid")
	}
	h.setCookie(c, token, h.Tokens.TTL())
	return respond(c, http.StatusOK, "Token refreshed successfully", nil)
}

func (h *AuthHandler) logout(c echo.Context) error {
	h.setCookie(c, "", 0)
	return respond(c, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) verify(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return apperr.Authentication("Unauthorized")
	}
	return respond(c, http.StatusOK, "Token verified successfully", claims)
}
