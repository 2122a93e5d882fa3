package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/gofiber/fiber/v3"
)

const userLocalsKey = "user"

// SessionConfig holds session token configuration.
type SessionConfig struct {
	Secret    string
	Issuer    string
	Cookie    string
	ExpiresIn time.Duration
}

// Claims represents the JWT payload.
type Claims struct {
	Subject   string `json:"sub"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Issuer    string `json:"iss"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// GenerateJWT creates a new signed session token for the given user.
func GenerateJWT(user *domain.User, cfg SessionConfig) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject:   user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		Issuer:    cfg.Issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(cfg.ExpiresIn).Unix(),
	}

	headerJSON, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON)
	return signingInput + "." + signHS256(signingInput, cfg.Secret), nil
}

// ValidateJWT checks signature, expiry and issuer and returns the claims.
func ValidateJWT(tokenStr string, cfg SessionConfig) (*Claims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("token format: %w", port.ErrTokenInvalid)
	}

	signingInput := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(signHS256(signingInput, cfg.Secret))) {
		return nil, fmt.Errorf("token signature: %w", port.ErrTokenInvalid)
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("token encoding: %w", port.ErrTokenInvalid)
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, fmt.Errorf("token claims: %w", port.ErrTokenInvalid)
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, port.ErrTokenExpired
	}
	if claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("token issuer: %w", port.ErrTokenInvalid)
	}
	return &claims, nil
}

func signHS256(input, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// tokenFromRequest reads the session cookie, then the Authorization header.
func tokenFromRequest(c fiber.Ctx, cookie string) string {
	if cookie != "" {
		if v := c.Cookies(cookie); v != "" {
			return v
		}
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ParseSession returns the UserContext carried by the request's session token.
func ParseSession(c fiber.Ctx, cfg SessionConfig) (*domain.UserContext, error) {
	token := tokenFromRequest(c, cfg.Cookie)
	if token == "" {
		return nil, port.ErrUnauthorized
	}

	claims, err := ValidateJWT(token, cfg)
	if err != nil {
		return nil, err
	}
	return &domain.UserContext{
		UserID:   claims.Subject,
		Username: claims.Username,
		Name:     claims.Name,
		Email:    claims.Email,
	}, nil
}

// SetUserContext stores the user in Fiber locals.
func SetUserContext(c fiber.Ctx, uc *domain.UserContext) {
	c.Locals(userLocalsKey, uc)
}

// GetUserContext extracts the UserContext from Fiber locals.
func GetUserContext(c fiber.Ctx) *domain.UserContext {
	u, ok := c.Locals(userLocalsKey).(*domain.UserContext)
	if !ok {
		return nil
	}
	return u
}

// RequireSession rejects requests without a valid session with 401.
// A UserContext already placed by Gate is reused.
func RequireSession(cfg SessionConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		if GetUserContext(c) != nil {
			return c.Next()
		}

		uc, err := ParseSession(c, cfg)
		if err != nil {
			msg := "unauthorized"
			if errors.Is(err, port.ErrTokenExpired) {
				msg = "session expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		SetUserContext(c, uc)
		return c.Next()
	}
}
