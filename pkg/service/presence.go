package service

import (
	"context"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/formatter"
	"github.com/athlink/cli/pkg/logger"
)

// PresenceService shows whether users are online
type PresenceService struct {
	Env
}

// NewPresenceService creates a new presence service
func NewPresenceService(env Env) *PresenceService {
	return &PresenceService{Env: env}
}

// Status prints a user's current status once, over REST
func (ps *PresenceService) Status(ctx context.Context, userID int64) error {
	if _, err := ps.requireUser(ctx); err != nil {
		return err
	}

	status, err := ps.App.API.GetUserStatus(ctx, userID).Result()
	if err != nil {
		return err
	}
	ps.Out.Line("User %d: %s", userID, formatter.Presence(status.Status == api.StatusOnline))
	return nil
}

// Watch follows a user's status live until ctx is done
func (ps *PresenceService) Watch(ctx context.Context, userID int64) error {
	if _, err := ps.requireUser(ctx); err != nil {
		return err
	}

	if err := ps.App.ConnectSocket(ctx); err != nil {
		return err
	}

	watcher := ps.App.PresenceWatcher(ctx)
	defer watcher.Close()

	start := time.Now()
	watcher.OnChange(func(online bool) {
		logger.Debug("Presence changed", "user_id", userID, "online", online)
		ps.Out.Line("[%s] User %d: %s", time.Since(start).Round(time.Second), userID, formatter.Presence(online))
	})
	watcher.SetUserID(userID)

	ps.Out.Info("Watching user %d (Ctrl+C to stop)", userID)
	<-ctx.Done()
	return nil
}
