package mutation

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/notice"
	"github.com/athlink/cli/pkg/query"
)

type ProfileAPI interface {
	UpdateProfile(ctx context.Context, userID int64, req api.UpdateProfileRequest) api.Envelope[api.User]
}

// Session is where the signed-in user lives
type Session interface {
	User() (api.User, bool)
	UpdateUser(user api.User) error
}

// UpdateProfile shows the edited fields on the session user right away,
// then replaces the user wholesale with the server's copy on success.
func UpdateProfile(ctx context.Context, d Deps, a ProfileAPI, session Session, req api.UpdateProfileRequest, policy FailurePolicy) Result[api.User] {
	current, ok := session.User()
	if !ok {
		err := apierrors.AuthError("Not logged in")
		return Result[api.User]{Notice: notice.Error(err.Message), Err: err}
	}

	cell := NewOptimistic(current, policy)
	optimistic := applyProfile(current, req)
	cell.Apply(optimistic)
	setSessionUser(session, optimistic)

	res := settle(d, "update_profile", a.UpdateProfile(ctx, current.ID, req), "Profile updated", func(u api.User) scope {
		return scope{keys: []query.Key{query.UserKey(current.ID)}}
	})

	if res.OK() {
		cell.Commit()
		// a success without a user body keeps the edited copy; user(id) is refetched later
		if res.Data.ID == 0 {
			res.Data = optimistic
		}
		setSessionUser(session, res.Data)
		return res
	}

	res.Data = cell.Fail()
	setSessionUser(session, res.Data)
	return res
}

func setSessionUser(session Session, user api.User) {
	if err := session.UpdateUser(user); err != nil {
		logger.Warn("Failed to persist session user", "error", err)
	}
}

func applyProfile(u api.User, req api.UpdateProfileRequest) api.User {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&u.FirstName, req.FirstName)
	set(&u.LastName, req.LastName)
	set(&u.CompanyName, req.CompanyName)
	set(&u.Bio, req.Bio)
	set(&u.Location, req.Location)
	set(&u.Sport, req.Sport)
	set(&u.Position, req.Position)
	return u
}
