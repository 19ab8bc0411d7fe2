package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/athlink/cli/pkg/api"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/store"
)

// Refresher exchanges a refresh token for a new access token
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) api.Envelope[api.RefreshResponse]
}

// TokenSink receives the refreshed token, normally the HTTP client
type TokenSink interface {
	SetAuthToken(token string)
}

// SessionRecovery handles automatic session recovery
type SessionRecovery struct {
	refresher  Refresher
	session    *store.SessionStore
	sink       TokenSink
	maxRetries int
	retryDelay time.Duration
}

// NewSessionRecovery creates a new session recovery handler
func NewSessionRecovery(refresher Refresher, session *store.SessionStore, sink TokenSink) *SessionRecovery {
	return &SessionRecovery{
		refresher:  refresher,
		session:    session,
		sink:       sink,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// RecoverSession attempts to recover an expired session
func (sr *SessionRecovery) RecoverSession(ctx context.Context) error {
	logger.Debug("Attempting to recover session")

	current := sr.session.Current()
	if current == nil || current.RefreshToken == "" {
		return apierrors.SessionExpiredError()
	}

	var lastErr error
	for attempt := 1; attempt <= sr.maxRetries; attempt++ {
		logger.Debug("Refreshing token", "attempt", attempt)

		env := sr.refresher.Refresh(ctx, current.RefreshToken)
		if env.Success {
			if err := sr.session.SetAccessToken(env.Data.AccessToken, env.Data.ExpiresIn); err != nil {
				logger.Error("Failed to save updated credentials", "error", err)
			}
			if sr.sink != nil {
				sr.sink.SetAuthToken(env.Data.AccessToken)
			}
			return nil
		}
		lastErr = env.Err()

		// a rejected refresh token will not get better with retries
		if IsSessionError(lastErr) {
			break
		}

		if attempt < sr.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sr.retryDelay):
			}
		}
	}

	return fmt.Errorf("failed to recover session - please log in again: %w", lastErr)
}

// IsSessionError checks if an error is a session-related error
func IsSessionError(err error) bool {
	if err == nil {
		return false
	}

	switch apierrors.CategorizeError(err).Type {
	case apierrors.ErrorTypeAuth, apierrors.ErrorTypeSessionExpired:
		return true
	}

	errMsg := err.Error()
	return errMsg == "401" ||
		errMsg == "unauthorized" ||
		errMsg == "session expired" ||
		errMsg == "token expired"
}

// HandleSessionError handles session-related errors with recovery.
// nil means the caller may retry with the refreshed session.
func (sr *SessionRecovery) HandleSessionError(ctx context.Context, err error) error {
	if !IsSessionError(err) {
		return err
	}

	logger.Debug("Handling session error with recovery")

	if recoveryErr := sr.RecoverSession(ctx); recoveryErr != nil {
		logger.Error("Session recovery failed", "error", recoveryErr)
		return fmt.Errorf("session expired: %w", recoveryErr)
	}

	return nil
}
