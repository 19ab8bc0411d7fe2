package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/athlink/cli/pkg/logger"
)

// GetUser retrieves a public profile
func (a *API) GetUser(ctx context.Context, userID int64) Envelope[User] {
	logger.Debug("Fetching user", "user_id", userID)
	return send[User](a.client.R(ctx), http.MethodGet, fmt.Sprintf("/api/v1/users/%d", userID))
}

// UpdateProfile updates the profile of userID and returns the stored user
func (a *API) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) Envelope[User] {
	logger.Debug("Updating profile", "user_id", userID)
	return send[User](a.client.R(ctx).SetBody(req), http.MethodPut, fmt.Sprintf("/api/v1/users/%d", userID))
}

// GetUserStatus reads the presence of userID
func (a *API) GetUserStatus(ctx context.Context, userID int64) Envelope[UserStatus] {
	logger.Debug("Fetching user status", "user_id", userID)
	return send[UserStatus](a.client.R(ctx), http.MethodGet, fmt.Sprintf("/api/v1/users/%d/status", userID))
}

// SearchUsers finds athletes and companies by name
func (a *API) SearchUsers(ctx context.Context, query string) Envelope[SearchResult] {
	logger.Debug("Searching users", "query", query)
	return send[SearchResult](a.client.R(ctx).SetQueryParam("q", query), http.MethodGet, "/api/v1/users/search")
}
