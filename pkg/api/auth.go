package api

import (
	"context"
	"net/http"

	"github.com/athlink/cli/pkg/logger"
)

// Login authenticates user with email and password
func (a *API) Login(ctx context.Context, email, password string) Envelope[LoginResponse] {
	logger.Debug("Attempting login", "email", email)

	env := send[LoginResponse](a.client.R(ctx).SetBody(LoginRequest{
		Email:    email,
		Password: password,
	}), http.MethodPost, "/api/v1/auth/login")

	if env.Success {
		logger.Debug("Login successful", "username", env.Data.User.Username)
	}
	return env
}

// Logout revokes the current session server-side
func (a *API) Logout(ctx context.Context) Envelope[struct{}] {
	logger.Debug("Logging out")
	return send[struct{}](a.client.R(ctx), http.MethodPost, "/api/v1/auth/logout")
}

// Refresh refreshes the access token using refresh token
func (a *API) Refresh(ctx context.Context, refreshToken string) Envelope[RefreshResponse] {
	logger.Debug("Refreshing access token")
	return send[RefreshResponse](a.client.R(ctx).SetBody(RefreshRequest{
		RefreshToken: refreshToken,
	}), http.MethodPost, "/api/v1/auth/refresh")
}

// Me gets the current authenticated user
func (a *API) Me(ctx context.Context) Envelope[User] {
	logger.Debug("Fetching current user")
	return send[User](a.client.R(ctx), http.MethodGet, "/api/v1/auth/me")
}

// VerifyEmail submits the code sent to the user's inbox
func (a *API) VerifyEmail(ctx context.Context, email, code string) Envelope[struct{}] {
	logger.Debug("Verifying email", "email", email)
	return send[struct{}](a.client.R(ctx).SetBody(map[string]string{
		"email": email,
		"code":  code,
	}), http.MethodPost, "/api/v1/auth/verify-email")
}

// ResendCode asks the server to send a new verification code
func (a *API) ResendCode(ctx context.Context, email string) Envelope[struct{}] {
	logger.Debug("Resending verification code", "email", email)
	return send[struct{}](a.client.R(ctx).SetBody(map[string]string{
		"email": email,
	}), http.MethodPost, "/api/v1/auth/resend-code")
}
