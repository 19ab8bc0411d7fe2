package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/athlink/cli/pkg/api"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/formatter"
	"github.com/athlink/cli/pkg/store"
)

// AdminService shows the admin dashboard
type AdminService struct {
	Env
}

func NewAdminService(env Env) *AdminService {
	return &AdminService{Env: env}
}

// Dashboard prints the platform totals
func (s *AdminService) Dashboard(ctx context.Context) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	s.App.Admin.SetTab(store.TabOverview)
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.Out.PrintRecord("Dashboard", st.Stats, formatter.StatsFields(*st.Stats))
}

// Users prints one page of accounts
func (s *AdminService) Users(ctx context.Context, page int) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	s.App.Admin.SetTab(store.TabUsers)
	s.App.Admin.SetPage(page)
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Users (page %d, %d total)", st.Page, st.Users.TotalCount)
	return s.Out.PrintList(title, st.Users, formatter.UserHeaders, formatter.UserRows(st.Users.Users))
}

func (s *AdminService) load(ctx context.Context) (store.AdminState, error) {
	s.App.Admin.Load(ctx, s.App.API)
	st := s.App.Admin.State()
	if st.Error != "" {
		s.Out.Error("%s", st.Error)
		return st, errors.New(st.Error)
	}
	return st, nil
}

func (s *AdminService) requireAdmin(ctx context.Context) error {
	me, err := s.requireUser(ctx)
	if err != nil {
		return err
	}
	if me.Role != api.RoleAdmin {
		return apierrors.ForbiddenError()
	}
	return nil
}
