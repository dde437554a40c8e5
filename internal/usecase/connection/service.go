package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/external/oauth"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

// Service defines the calendar connection use case
type Service interface {
	BeginGoogleConnect(ctx context.Context, userID uuid.UUID) (*ConnectURL, error)
	CompleteGoogleConnect(ctx context.Context, state, code string) (*entities.CalendarConnection, error)
	Disconnect(ctx context.Context, userID uuid.UUID) error
}

// OAuthProvider is the Google consent flow
type OAuthProvider interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*oauth.GoogleUserInfo, error)
}

// StateIssuer issues and consumes one-time OAuth states
type StateIssuer interface {
	GenerateState(userID string) (string, error)
	ConsumeState(state string) (string, bool)
}

// TokenEncrypter encrypts tokens before they are stored
type TokenEncrypter interface {
	Encrypt(plaintext string) (string, error)
}

// ConnectURL is where the user is sent to grant calendar access
type ConnectURL struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// GoogleConnectService links a user's Google Calendar
type GoogleConnectService struct {
	connections repositories.CalendarConnectionRepository
	google      OAuthProvider
	states      StateIssuer
	cipher      TokenEncrypter
	logger      *zap.Logger
}

// Ensure GoogleConnectService implements Service
var _ Service = (*GoogleConnectService)(nil)

// NewGoogleConnectService creates a new connection service
func NewGoogleConnectService(
	connections repositories.CalendarConnectionRepository,
	google OAuthProvider,
	states StateIssuer,
	cipher TokenEncrypter,
	logger *zap.Logger,
) *GoogleConnectService {
	return &GoogleConnectService{
		connections: connections,
		google:      google,
		states:      states,
		cipher:      cipher,
		logger:      logger,
	}
}

// BeginGoogleConnect returns the consent URL with a state bound to userID
func (s *GoogleConnectService) BeginGoogleConnect(ctx context.Context, userID uuid.UUID) (*ConnectURL, error) {
	state, err := s.states.GenerateState(userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	return &ConnectURL{URL: s.google.GetAuthURL(state), State: state}, nil
}

// CompleteGoogleConnect exchanges the code and stores the encrypted tokens.
// The state carries the user, so the callback itself needs no session.
func (s *GoogleConnectService) CompleteGoogleConnect(ctx context.Context, state, code string) (*entities.CalendarConnection, error) {
	raw, ok := s.states.ConsumeState(state)
	if !ok {
		return nil, ucErrors.ErrOAuthStateInvalid
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, ucErrors.ErrOAuthStateInvalid
	}

	token, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrOAuthExchange, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ucErrors.ErrOAuthExchange)
	}

	conn := &entities.CalendarConnection{
		UserID:   userID,
		Provider: entities.CalendarProviderGoogle,
		IsActive: true,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		conn.TokenExpiresAt = &expiry
	}

	if info, err := s.google.GetUserInfo(ctx, token); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to fetch calendar owner", zap.String("user_id", userID.String()), zap.Error(err))
		}
	} else if info.Email != "" {
		email := info.Email
		conn.CalendarEmail = &email
	}

	if conn.AccessToken, err = s.cipher.Encrypt(token.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	// Google only returns a refresh token on first consent; keep the stored one otherwise
	if token.RefreshToken != "" {
		if conn.RefreshToken, err = s.cipher.Encrypt(token.RefreshToken); err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	} else if existing, err := s.connections.FindActive(ctx, userID, entities.CalendarProviderGoogle); err == nil {
		conn.RefreshToken = existing.RefreshToken
	}

	if err := s.connections.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
	}

	if s.logger != nil {
		s.logger.Info("calendar connected",
			zap.String("user_id", userID.String()),
			zap.String("provider", string(conn.Provider)),
			zap.Bool("has_refresh_token", conn.RefreshToken != ""),
		)
	}
	return conn, nil
}

// Disconnect deactivates the user's Google connection. Meetings are kept.
func (s *GoogleConnectService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if err := s.connections.Deactivate(ctx, userID, entities.CalendarProviderGoogle); err != nil {
		if errors.Is(err, entities.ErrConnectionNotFound) {
			return ucErrors.ErrNotConnected
		}
		return fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
	}
	if s.logger != nil {
		s.logger.Info("calendar disconnected", zap.String("user_id", userID.String()), zap.Time("at", time.Now().UTC()))
	}
	return nil
}
