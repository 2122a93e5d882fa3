package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// DefaultProtectedPrefixes are the paths that require a signed-in user.
var DefaultProtectedPrefixes = []string{"/api/auth", "/dashboard", "/group", "/tasks"}

// GateConfig configures the auth gate.
type GateConfig struct {
	Session   SessionConfig
	SignInURL string
	Protected []string
}

// Gate attaches CORS headers to every response, answers preflight requests,
// and redirects anonymous requests for protected paths to the sign-in page.
//
// The headers are set by hand: fiber's cors middleware refuses a wildcard
// origin together with credentials.
func Gate(cfg GateConfig) fiber.Handler {
	protected := cfg.Protected
	if protected == nil {
		protected = DefaultProtectedPrefixes
	}

	return func(c fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Origin, Content-Type, Accept, Authorization")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}

		uc, err := ParseSession(c, cfg.Session)
		if err == nil {
			SetUserContext(c, uc)
		}

		if uc == nil && IsProtected(c.Path(), protected) {
			target := cfg.SignInURL + "?callbackUrl=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect().Status(fiber.StatusFound).To(target)
		}
		return c.Next()
	}
}

// IsProtected reports whether p is one of the prefixes or lies beneath one.
func IsProtected(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
