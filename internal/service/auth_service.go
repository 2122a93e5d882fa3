package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/middleware"
	"github.com/arturoeanton/codehub/internal/port"
)

// AuthService handles the authentication flow.
type AuthService struct {
	providers port.AuthProviderRegistry
	users     port.UserStore
	session   middleware.SessionConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(providers port.AuthProviderRegistry, users port.UserStore, session middleware.SessionConfig) *AuthService {
	return &AuthService{providers: providers, users: users, session: session}
}

// Providers returns the configured provider names, sorted.
func (s *AuthService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAuthURL returns the OAuth2 authorization URL for the given provider.
func (s *AuthService) GetAuthURL(providerName, state string) (string, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return "", fmt.Errorf("unknown provider %s: %w", providerName, port.ErrBadRequest)
	}
	return provider.AuthURL(state), nil
}

// HandleCallback exchanges the code, upserts the user and returns a session token.
func (s *AuthService) HandleCallback(ctx context.Context, providerName, code string) (string, *domain.User, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return "", nil, fmt.Errorf("unknown provider %s: %w", providerName, port.ErrBadRequest)
	}

	accessToken, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := provider.GetUserProfile(ctx, accessToken)
	if err != nil {
		return "", nil, fmt.Errorf("get profile: %w", err)
	}
	profile.AccessToken = accessToken

	user, err := s.users.UpsertUser(ctx, profile)
	if err != nil {
		return "", nil, fmt.Errorf("upsert user: %w", err)
	}

	token, err := middleware.GenerateJWT(user, s.session)
	if err != nil {
		return "", nil, fmt.Errorf("generate jwt: %w", err)
	}

	slog.Info("user authenticated", "user_id", user.ID, "provider", providerName)
	return token, user, nil
}

// CurrentUser loads the full user behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, uc *domain.UserContext) (*domain.User, error) {
	return s.users.GetUserByID(ctx, uc.UserID)
}
