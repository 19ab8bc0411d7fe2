package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/formatter"
	"github.com/samber/lo"
)

var opportunityTypes = []api.OpportunityType{
	api.OpportunityJob,
	api.OpportunityInternship,
	api.OpportunitySponsorship,
	api.OpportunityTryout,
}

// OpportunityService creates and browses opportunities
type OpportunityService struct {
	Env
}

func NewOpportunityService(env Env) *OpportunityService {
	return &OpportunityService{Env: env}
}

// ParseOpportunityType accepts any case; empty means no filter
func ParseOpportunityType(s string) (api.OpportunityType, error) {
	if s == "" {
		return "", nil
	}
	t := api.OpportunityType(strings.ToUpper(s))
	if !lo.Contains(opportunityTypes, t) {
		return "", fmt.Errorf("unknown opportunity type %q", s)
	}
	return t, nil
}

// Create publishes an opportunity. Missing fields are prompted for.
func (s *OpportunityService) Create(ctx context.Context, input api.OpportunityInput, deadline, imagePath string) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}
	if err := s.fill(&input, deadline); err != nil {
		return err
	}

	image, closeImage, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer closeImage()

	res := s.App.CreateOpportunity(ctx, input, image)
	if err := report(s.Out, res); err != nil {
		return err
	}
	return s.Out.PrintRecord("", res.Data, formatter.OpportunityFields(res.Data))
}

func (s *OpportunityService) fill(input *api.OpportunityInput, deadline string) error {
	var err error
	if input.Title == "" {
		if input.Title, err = s.In.Required("Title: "); err != nil {
			return err
		}
	}
	if input.Type == "" {
		labels := lo.Map(opportunityTypes, func(t api.OpportunityType, _ int) string { return string(t) })
		idx, err := s.In.Select("Opportunity type", labels)
		if err != nil {
			return err
		}
		input.Type = opportunityTypes[idx]
	}
	if input.Description == "" {
		if input.Description, err = s.In.Multiline("Description", 50); err != nil {
			return err
		}
	}
	if deadline != "" {
		t, err := time.Parse("2006-01-02", deadline)
		if err != nil {
			return fmt.Errorf("deadline must be YYYY-MM-DD: %w", err)
		}
		input.Deadline = &t
	}
	return nil
}

func (s *OpportunityService) List(ctx context.Context, filter api.OpportunityFilter) error {
	_, _ = s.App.Restore(ctx)
	if filter.Page < 1 {
		filter.Page = 1
	}

	list, err := s.App.Opportunities(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	title := fmt.Sprintf("Opportunities (page %d, %d total)", filter.Page, list.TotalCount)
	return s.Out.PrintList(title, list, formatter.OpportunityHeaders, formatter.OpportunityRows(list.Opportunities))
}

func (s *OpportunityService) Get(ctx context.Context, opportunityID int64) error {
	_, _ = s.App.Restore(ctx)

	opp, err := s.App.Opportunity(ctx, opportunityID)
	if err != nil {
		if api.IsNotFound(err) {
			s.Out.Error("Opportunity not found: %d", opportunityID)
		}
		return err
	}
	return s.Out.PrintRecord("", opp, formatter.OpportunityFields(opp))
}
