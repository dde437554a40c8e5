package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/crypto"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

// CredentialAdapter loads a user's provider credentials and keeps them fresh
type CredentialAdapter struct {
	connections repositories.CalendarConnectionRepository
	cipher      TokenCipher
	refresher   TokenRefresher
	logger      *zap.Logger
	now         func() time.Time
}

// NewCredentialAdapter creates a new credential adapter
func NewCredentialAdapter(
	connections repositories.CalendarConnectionRepository,
	cipher TokenCipher,
	refresher TokenRefresher,
	logger *zap.Logger,
) *CredentialAdapter {
	return &CredentialAdapter{
		connections: connections,
		cipher:      cipher,
		refresher:   refresher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetCredentials loads and decrypts the user's active Google connection
func (a *CredentialAdapter) GetCredentials(ctx context.Context, userID uuid.UUID) (*entities.CalendarCredentials, error) {
	conn, err := a.connections.FindActive(ctx, userID, entities.CalendarProviderGoogle)
	if err != nil {
		if errors.Is(err, entities.ErrConnectionNotFound) {
			return nil, ucErrors.ErrNotConnected
		}
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
	}

	accessToken, err := a.decrypt(conn.AccessToken)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, ucErrors.ErrMissingToken
	}
	refreshToken, err := a.decrypt(conn.RefreshToken)
	if err != nil {
		return nil, err
	}

	return &entities.CalendarCredentials{
		ConnectionID: conn.ID,
		UserID:       conn.UserID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    conn.TokenExpiresAt,
	}, nil
}

// EnsureFresh refreshes expired credentials. On failure the stale credentials
// are discarded and ErrRefreshFailed is returned.
func (a *CredentialAdapter) EnsureFresh(ctx context.Context, creds *entities.CalendarCredentials) (*entities.CalendarCredentials, error) {
	if !creds.IsExpired(a.now()) {
		return creds, nil
	}
	if !creds.CanRefresh() {
		return nil, fmt.Errorf("%w: no refresh token", ucErrors.ErrRefreshFailed)
	}

	token, err := a.refresher.RefreshToken(ctx, creds.RefreshToken)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("calendar token refresh rejected",
				zap.String("user_id", creds.UserID.String()),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrRefreshFailed, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ucErrors.ErrRefreshFailed)
	}

	fresh := *creds
	fresh.AccessToken = token.AccessToken
	fresh.ExpiresAt = nil
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		fresh.ExpiresAt = &expiry
	}

	if err := a.persistRefreshed(ctx, &fresh); err != nil && a.logger != nil {
		// the fresh token is still usable for this pass
		a.logger.Error("failed to persist refreshed token",
			zap.String("user_id", creds.UserID.String()),
			zap.Error(err),
		)
	}
	return &fresh, nil
}

// Load returns usable credentials for the user
func (a *CredentialAdapter) Load(ctx context.Context, userID uuid.UUID) (*entities.CalendarCredentials, error) {
	creds, err := a.GetCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.EnsureFresh(ctx, creds)
}

func (a *CredentialAdapter) persistRefreshed(ctx context.Context, creds *entities.CalendarCredentials) error {
	encrypted, err := a.cipher.Encrypt(creds.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	return a.connections.UpdateAccessToken(ctx, creds.ConnectionID, encrypted, creds.ExpiresAt)
}

func (a *CredentialAdapter) decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	plain, err := a.cipher.Decrypt(value)
	if err != nil {
		if errors.Is(err, crypto.ErrKeyMissing) {
			return "", ucErrors.ErrDecryptionKeyMissing
		}
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return plain, nil
}
