package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// GitHubProvider implements port.AuthProvider for GitHub OAuth.
type GitHubProvider struct {
	oauth     *oauth2.Config
	newClient func(ctx context.Context, accessToken string) *github.Client
}

var _ port.AuthProvider = (*GitHubProvider)(nil)

// NewGitHubProvider creates a new GitHub OAuth provider.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		newClient: tokenClient,
	}
}

func tokenClient(ctx context.Context, accessToken string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// ProviderName returns "github".
func (g *GitHubProvider) ProviderName() string {
	return "github"
}

// AuthURL returns the GitHub OAuth consent screen URL.
func (g *GitHubProvider) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for an access token.
func (g *GitHubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("github: token exchange: %w", err)
	}
	return tok.AccessToken, nil
}

// GetUserProfile fetches the GitHub user profile using an access token.
func (g *GitHubProvider) GetUserProfile(ctx context.Context, accessToken string) (*domain.User, error) {
	client := g.newClient(ctx, accessToken)

	u, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("github: fetch profile: %w", err)
	}

	// private emails are only listed by /user/emails
	email := u.GetEmail()
	if email == "" {
		email = primaryEmail(ctx, client)
	}

	return &domain.User{
		Username:   u.GetLogin(),
		Name:       u.GetName(),
		Email:      email,
		AvatarURL:  u.GetAvatarURL(),
		Provider:   "github",
		ProviderID: strconv.FormatInt(u.GetID(), 10),
	}, nil
}

func primaryEmail(ctx context.Context, client *github.Client) string {
	emails, _, err := client.Users.ListEmails(ctx, nil)
	if err != nil {
		return ""
	}
	for _, e := range emails {
		if e.GetPrimary() && e.GetVerified() {
			return e.GetEmail()
		}
	}
	if len(emails) > 0 {
		return emails[0].GetEmail()
	}
	return ""
}
