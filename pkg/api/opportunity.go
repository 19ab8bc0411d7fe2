package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/logger"
)

// CreateOpportunity publishes an opportunity for a company.
// The body is multipart: a JSON "opportunity" blob plus an optional image file.
func (a *API) CreateOpportunity(ctx context.Context, companyID int64, input OpportunityInput, image *Upload) Envelope[Opportunity] {
	logger.Debug("Creating opportunity", "company_id", companyID, "title", input.Title)

	fields, err := multipartFields("opportunity", input, image)
	if err != nil {
		return failed[Opportunity](0, apierrors.CategorizeError(err))
	}

	return send[Opportunity](a.client.R(ctx).SetMultipartFields(fields...),
		http.MethodPost, fmt.Sprintf("/api/v1/opportunities/create/%d", companyID))
}

// ListOpportunities retrieves a page of opportunities
func (a *API) ListOpportunities(ctx context.Context, filter OpportunityFilter) Envelope[OpportunityList] {
	logger.Debug("Listing opportunities", "page", filter.Page, "type", filter.Type)

	req := a.client.R(ctx)
	if filter.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(filter.Page))
	}
	if filter.Type != "" {
		req.SetQueryParam("type", string(filter.Type))
	}
	return send[OpportunityList](req, http.MethodGet, "/api/v1/opportunities")
}

// GetOpportunity retrieves a single opportunity
func (a *API) GetOpportunity(ctx context.Context, opportunityID int64) Envelope[Opportunity] {
	logger.Debug("Fetching opportunity", "opportunity_id", opportunityID)
	return send[Opportunity](a.client.R(ctx), http.MethodGet, fmt.Sprintf("/api/v1/opportunities/%d", opportunityID))
}
