package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/athlink/cli/pkg/logger"
)

// GetDashboardStats retrieves the admin dashboard counters (admin only)
func (a *API) GetDashboardStats(ctx context.Context) Envelope[DashboardStats] {
	logger.Debug("Fetching dashboard stats")
	return send[DashboardStats](a.client.R(ctx), http.MethodGet, "/api/v1/admin/dashboard")
}

// GetUsers retrieves a page of users (admin only)
func (a *API) GetUsers(ctx context.Context, page int) Envelope[UserPage] {
	logger.Debug("Listing users", "page", page)

	req := a.client.R(ctx)
	if page > 0 {
		req.SetQueryParam("page", strconv.Itoa(page))
	}
	return send[UserPage](req, http.MethodGet, "/api/v1/admin/users")
}
