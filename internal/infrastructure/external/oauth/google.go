package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	calendarReadonlyScope = "https://www.googleapis.com/auth/calendar.readonly"
	userInfoEmailScope    = "https://www.googleapis.com/auth/userinfo.email"
	userInfoURL           = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleProvider handles the Google Calendar OAuth2 flow
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// GoogleUserInfo is the subset of the Google profile needed for a calendar connection
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

// NewGoogleProvider creates a new Google OAuth provider with calendar read access
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return NewGoogleProviderWithEndpoint(clientID, clientSecret, redirectURL, google.Endpoint, userInfoURL)
}

// NewGoogleProviderWithEndpoint creates a provider against custom OAuth endpoints
func NewGoogleProviderWithEndpoint(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint, infoURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{calendarReadonlyScope, userInfoEmailScope},
			Endpoint:     endpoint,
		},
		userInfoURL: infoURL,
	}
}

// GetAuthURL returns the consent URL; offline access yields a refresh token
func (g *GoogleProvider) GetAuthURL(state string) string {
	return g.config.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode exchanges the authorization code for tokens
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// GetUserInfo retrieves the calendar owner's email
func (g *GoogleProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := g.config.Client(ctx, token)

	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user info: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	return &userInfo, nil
}

// RefreshToken obtains a new access token from a refresh token
func (g *GoogleProvider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	tokenSource := g.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return newToken, nil
}
