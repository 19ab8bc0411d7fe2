package service

import (
	"context"
	"fmt"

	"github.com/athlink/cli/pkg/formatter"
	"github.com/athlink/cli/pkg/logger"
)

// FollowService follows users and lists relationships
type FollowService struct {
	Env
}

func NewFollowService(env Env) *FollowService {
	return &FollowService{Env: env}
}

// SetFollowing follows (or unfollows) targetID as the signed-in user
func (s *FollowService) SetFollowing(ctx context.Context, targetID int64, follow bool) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}

	res, err := s.App.SetFollowing(ctx, targetID, follow)
	if err != nil {
		return err
	}
	logger.Debug("Follow state", "target", targetID, "following", res.Data, "invalidated", len(res.Invalidated))
	return report(s.Out, res)
}

// Toggle flips the relationship with targetID
func (s *FollowService) Toggle(ctx context.Context, targetID int64) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}

	toggle, err := s.App.FollowToggle(ctx, targetID)
	if err != nil {
		return err
	}
	res := toggle.Toggle(ctx)
	if err := report(s.Out, res); err != nil {
		return err
	}
	if res.Data {
		s.Out.Info("You now follow user %d", targetID)
	} else {
		s.Out.Info("You no longer follow user %d", targetID)
	}
	return nil
}

// Followers lists who follows userID; 0 means the signed-in user
func (s *FollowService) Followers(ctx context.Context, userID int64) error {
	userID, err := s.resolve(ctx, userID)
	if err != nil {
		return err
	}
	users, err := s.App.Followers(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch followers: %w", err)
	}
	title := fmt.Sprintf("%d follower%s", len(users), pluralize(len(users)))
	return s.Out.PrintList(title, users, formatter.UserHeaders, formatter.UserRows(users))
}

// Following lists who userID follows; 0 means the signed-in user
func (s *FollowService) Following(ctx context.Context, userID int64) error {
	userID, err := s.resolve(ctx, userID)
	if err != nil {
		return err
	}
	users, err := s.App.Following(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch following: %w", err)
	}
	title := fmt.Sprintf("Following %d user%s", len(users), pluralize(len(users)))
	return s.Out.PrintList(title, users, formatter.UserHeaders, formatter.UserRows(users))
}

func (s *FollowService) resolve(ctx context.Context, userID int64) (int64, error) {
	if userID != 0 {
		// public lists still go out with a token when there is one
		_, _ = s.App.Restore(ctx)
		return userID, nil
	}
	me, err := s.requireUser(ctx)
	if err != nil {
		return 0, err
	}
	return me.ID, nil
}
