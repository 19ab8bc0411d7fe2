package service

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/formatter"
)

type ProfileService struct {
	Env
}

// NewProfileService creates a new profile service
func NewProfileService(env Env) *ProfileService {
	return &ProfileService{Env: env}
}

// ViewProfile shows a user's profile; 0 means the signed-in user
func (s *ProfileService) ViewProfile(ctx context.Context, userID int64) error {
	if userID == 0 {
		me, err := s.requireUser(ctx)
		if err != nil {
			return err
		}
		userID = me.ID
	} else {
		_, _ = s.App.Restore(ctx)
	}

	user, err := s.App.User(ctx, userID)
	if err != nil {
		if api.IsNotFound(err) {
			s.Out.Error("User not found: %d", userID)
		}
		return err
	}
	return s.Out.PrintRecord("", user, formatter.UserFields(user))
}

// UpdateProfile sends the changed fields. The local profile shows the edit
// at once and takes the server's copy when it answers.
func (s *ProfileService) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}
	if req == (api.UpdateProfileRequest{}) {
		s.Out.Warning("Nothing to update")
		return nil
	}

	res := s.App.UpdateProfile(ctx, req)
	if err := report(s.Out, res); err != nil {
		return err
	}
	return s.Out.PrintRecord("", res.Data, formatter.UserFields(res.Data))
}
