package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/arturoeanton/codehub/internal/middleware"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/arturoeanton/codehub/internal/service"
	"github.com/gofiber/fiber/v3"
)

const (
	stateCookie     = "codehub_oauth_state"
	stateCookiePath = "/auth"
)

// AuthHandler handles sign-in, the OAuth2 callback and session endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	session      middleware.SessionConfig
	secureCookie bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, session middleware.SessionConfig, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, session: session, secureCookie: secureCookie}
}

// Register sets up auth routes.
func (h *AuthHandler) Register(app fiber.Router) {
	app.Get("/auth/signin", h.SignIn)
	app.Get("/auth/:provider/login", h.Login)
	app.Get("/auth/callback", h.Callback)

	app.Get("/api/auth/session", h.Session)
	app.Post("/api/auth/signout", h.SignOut)
}

type providerLink struct {
	Name     string `json:"name"`
	LoginURL string `json:"loginUrl"`
}

// SignIn lists the configured providers with their login URLs.
func (h *AuthHandler) SignIn(c fiber.Ctx) error {
	callback := safeCallback(c.Query("callbackUrl"))

	links := make([]providerLink, 0)
	for _, name := range h.authService.Providers() {
		links = append(links, providerLink{
			Name:     name,
			LoginURL: "/auth/" + name + "/login?callbackUrl=" + url.QueryEscape(callback),
		})
	}
	return c.JSON(fiber.Map{"providers": links, "callbackUrl": callback})
}

// Login redirects to the provider's consent screen. The state carries the
// provider, a nonce that must match the state cookie, and the callback URL.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	provider := c.Params("provider")
	nonce := generateState()
	state := provider + ":" + nonce + ":" + safeCallback(c.Query("callbackUrl"))

	authURL, err := h.authService.GetAuthURL(provider, state)
	if err != nil {
		return respondError(c, err)
	}

	h.setCookie(c, stateCookie, nonce, stateCookiePath, time.Now().Add(10*time.Minute))
	return c.Redirect().Status(fiber.StatusFound).To(authURL)
}

// Callback completes the OAuth2 flow, sets the session cookie and sends the
// user back to where sign-in started.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return respondError(c, errBadRequest("missing authorization code"))
	}

	parts := strings.SplitN(c.Query("state"), ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[1] != c.Cookies(stateCookie) {
		return respondError(c, errBadRequest("invalid state"))
	}
	provider, callback := parts[0], safeCallback(parts[2])

	token, _, err := h.authService.HandleCallback(c.Context(), provider, code)
	if err != nil {
		return respondError(c, err)
	}

	h.expireCookie(c, stateCookie, stateCookiePath)
	h.setCookie(c, h.session.Cookie, token, "/", time.Now().Add(h.session.ExpiresIn))
	return c.Redirect().Status(fiber.StatusFound).To(callback)
}

// Session returns the signed-in user.
func (h *AuthHandler) Session(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return respondError(c, port.ErrUnauthorized)
	}

	user, err := h.authService.CurrentUser(c.Context(), uc)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"name":      user.DisplayName(),
			"email":     user.Email,
			"avatarUrl": user.Avatar(),
		},
	})
}

// SignOut expires the session cookie.
func (h *AuthHandler) SignOut(c fiber.Ctx) error {
	h.expireCookie(c, h.session.Cookie, "/")
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) setCookie(c fiber.Ctx, name, value, cookiePath string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     cookiePath,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// expireCookie overwrites a cookie with an empty value and a past expiry.
// Browsers only drop it when the path matches the one it was set with.
func (h *AuthHandler) expireCookie(c fiber.Ctx, name, cookiePath string) {
	h.setCookie(c, name, "", cookiePath, time.Unix(0, 0))
}

// safeCallback only allows same-site paths, falling back to "/".
func safeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
