package store

import (
	"context"
	"sync"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/logger"
)

// AdminTab is the visible section of the dashboard
type AdminTab string

const (
	TabOverview AdminTab = "overview"
	TabUsers    AdminTab = "users"
)

// AdminSource is the slice of the API the dashboard reads
type AdminSource interface {
	GetDashboardStats(ctx context.Context) api.Envelope[api.DashboardStats]
	GetUsers(ctx context.Context, page int) api.Envelope[api.UserPage]
}

// AdminState is a snapshot of the dashboard view
type AdminState struct {
	Tab     AdminTab
	Page    int
	Stats   *api.DashboardStats
	Users   *api.UserPage
	Loading bool
	Error   string
}

// AdminDashboardStore holds the admin dashboard
type AdminDashboardStore struct {
	mu    sync.Mutex
	state AdminState
	hub   hub[AdminState]
}

func NewAdminDashboardStore() *AdminDashboardStore {
	return &AdminDashboardStore{state: AdminState{Tab: TabOverview, Page: 1}}
}

// SetTab switches the visible section
func (s *AdminDashboardStore) SetTab(tab AdminTab) {
	s.update(func(st *AdminState) { st.Tab = tab })
}

// SetPage selects the user page loaded by the users tab
func (s *AdminDashboardStore) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.update(func(st *AdminState) { st.Page = page })
}

// Load fetches the data behind the current tab. Failures land in State().Error.
func (s *AdminDashboardStore) Load(ctx context.Context, src AdminSource) {
	var tab AdminTab
	var page int
	s.update(func(st *AdminState) {
		st.Loading = true
		st.Error = ""
		tab, page = st.Tab, st.Page
	})

	switch tab {
	case TabUsers:
		env := src.GetUsers(ctx, page)
		s.update(func(st *AdminState) {
			st.Loading = false
			if !env.Success {
				st.Error = env.FailureMessage()
				return
			}
			users := env.Data
			st.Users = &users
		})
	default:
		env := src.GetDashboardStats(ctx)
		s.update(func(st *AdminState) {
			st.Loading = false
			if !env.Success {
				st.Error = env.FailureMessage()
				return
			}
			stats := env.Data
			st.Stats = &stats
		})
	}

	if errMsg := s.State().Error; errMsg != "" {
		logger.Warn("Admin dashboard load failed", "tab", tab, "error", errMsg)
	}
}

// Clear resets the dashboard, used on logout
func (s *AdminDashboardStore) Clear() {
	s.update(func(st *AdminState) { *st = AdminState{Tab: TabOverview, Page: 1} })
}

func (s *AdminDashboardStore) State() AdminState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *AdminDashboardStore) Subscribe(fn func(AdminState)) func() {
	return s.hub.subscribe(fn)
}

func (s *AdminDashboardStore) update(fn func(*AdminState)) {
	s.mu.Lock()
	fn(&s.state)
	state := s.state
	s.mu.Unlock()

	s.hub.publish(state)
}
