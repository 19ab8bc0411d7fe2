package service

import (
	"context"
	"fmt"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/formatter"
	"github.com/athlink/cli/pkg/search"
)

// SearchService provides user search
type SearchService struct {
	Env
}

// NewSearchService creates a new search service
func NewSearchService(env Env) *SearchService {
	return &SearchService{Env: env}
}

// SearchUsers runs one search. A blank query prints nothing and makes no request.
func (ss *SearchService) SearchUsers(ctx context.Context, q string) error {
	_, _ = ss.App.Restore(ctx)

	if !search.Enabled(q) {
		ss.Out.Warning("Search query is empty")
		return nil
	}
	result, err := ss.App.Searcher().Search(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to search users: %w", err)
	}
	return ss.printResult(q, result)
}

// Interactive searches as lines are typed. Each line replaces the query;
// only queries left alone for the debounce interval are sent.
func (ss *SearchService) Interactive(ctx context.Context) error {
	_, _ = ss.App.Restore(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	live := ss.App.LiveSearch(ctx, func(o search.Outcome) {
		if o.Err != nil {
			ss.Out.Error("Search for %q failed: %v", o.Query, o.Err)
			return
		}
		_ = ss.printResult(o.Query, o.Result)
	})
	defer live.Stop()

	ss.Out.Info("Type to search, one query per line (Ctrl+D to quit)")
	for line := range ss.In.Lines(ctx) {
		live.Set(line)
	}
	live.Flush()
	return nil
}

func (ss *SearchService) printResult(q string, result api.SearchResult) error {
	if len(result.Users) == 0 {
		ss.Out.Line("No users found for %q", q)
		return nil
	}
	title := fmt.Sprintf("Search results for %q (%d found)", q, result.Total)
	return ss.Out.PrintList(title, result, formatter.UserHeaders, formatter.UserRows(result.Users))
}
