package app

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/mutation"
	"github.com/athlink/cli/pkg/notice"
)

// FollowToggle builds a toggle for the signed-in user and targetID,
// seeded with the current relationship from the server
func (a *App) FollowToggle(ctx context.Context, targetID int64) (*mutation.FollowToggle, error) {
	me, ok := a.Session.User()
	if !ok {
		return nil, apierrors.AuthError("Not logged in")
	}
	if me.ID == targetID {
		return nil, apierrors.ValidationError("user", "you cannot follow yourself")
	}

	following, err := a.FollowStatus(ctx, me.ID, targetID)
	if err != nil {
		return nil, err
	}
	return mutation.NewFollowToggle(a.Deps(), a.API, me.ID, targetID, following, a.Policy()), nil
}

// SetFollowing follows or unfollows targetID. Asking for the state that
// already holds makes no call and reports an info notice.
func (a *App) SetFollowing(ctx context.Context, targetID int64, follow bool) (mutation.Result[bool], error) {
	toggle, err := a.FollowToggle(ctx, targetID)
	if err != nil {
		return mutation.Result[bool]{}, err
	}
	if toggle.Following() == follow {
		msg := "Already following"
		if !follow {
			msg = "Not following"
		}
		return mutation.Result[bool]{Data: follow, Notice: notice.Info(msg)}, nil
	}
	return toggle.Toggle(ctx), nil
}

// CreatePost publishes a post as the signed-in user
func (a *App) CreatePost(ctx context.Context, input api.PostInput, image *api.Upload) mutation.Result[api.Post] {
	me, ok := a.Session.User()
	if !ok {
		return authRequired[api.Post]()
	}
	if input.Content == "" && image == nil {
		return invalid[api.Post]("content", "a post needs text or an image")
	}
	return mutation.CreatePost(ctx, a.Deps(), a.API, me.ID, input, image)
}

// CreateOpportunity publishes an opportunity for the signed-in company
func (a *App) CreateOpportunity(ctx context.Context, input api.OpportunityInput, image *api.Upload) mutation.Result[api.Opportunity] {
	me, ok := a.Session.User()
	if !ok {
		return authRequired[api.Opportunity]()
	}
	if me.Role != api.RoleCompany && me.Role != api.RoleAdmin {
		return invalid[api.Opportunity]("role", "only company accounts can post opportunities")
	}
	if input.Title == "" {
		return invalid[api.Opportunity]("title", "required")
	}
	return mutation.CreateOpportunity(ctx, a.Deps(), a.API, me.ID, input, image)
}

// UpdateProfile edits the signed-in user's profile
func (a *App) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) mutation.Result[api.User] {
	return mutation.UpdateProfile(ctx, a.Deps(), a.API, a.Session, req, a.Policy())
}

func authRequired[T any]() mutation.Result[T] {
	err := apierrors.AuthError("Not logged in")
	return mutation.Result[T]{Notice: notice.Error(err.Message), Err: err}
}

// invalid rejects input before any network call
func invalid[T any](field, reason string) mutation.Result[T] {
	err := apierrors.ValidationError(field, reason)
	return mutation.Result[T]{Notice: notice.Error(err.Message), Err: err}
}
