package mutation

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/query"
)

// FollowAPI is the slice of the API the follow toggle needs
type FollowAPI interface {
	Follow(ctx context.Context, followerID, followedID int64) api.Envelope[api.FollowRelationship]
	Unfollow(ctx context.Context, followerID, followedID int64) api.Envelope[struct{}]
}

// FollowToggle holds the local "following" flag for one follower/followed pair
type FollowToggle struct {
	deps       Deps
	api        FollowAPI
	followerID int64
	followedID int64
	following  *Optimistic[bool]
}

// NewFollowToggle starts from the known relationship state
func NewFollowToggle(d Deps, a FollowAPI, followerID, followedID int64, following bool, policy FailurePolicy) *FollowToggle {
	return &FollowToggle{
		deps:       d,
		api:        a,
		followerID: followerID,
		followedID: followedID,
		following:  NewOptimistic(following, policy),
	}
}

// Following is the flag as currently shown
func (f *FollowToggle) Following() bool {
	return f.following.Get()
}

// Toggle flips the flag, then follows or unfollows with exactly one call.
// Data is the flag after the server answered.
func (f *FollowToggle) Toggle(ctx context.Context) Result[bool] {
	_, next := f.following.Update(func(v bool) bool { return !v })
	affected := followScope(f.followerID, f.followedID)

	var res Result[bool]
	if next {
		r := settle(f.deps, "follow", f.api.Follow(ctx, f.followerID, f.followedID), "Followed", fixed[api.FollowRelationship](affected))
		res = Result[bool]{Notice: r.Notice, Invalidated: r.Invalidated, Err: r.Err}
	} else {
		r := settle(f.deps, "unfollow", f.api.Unfollow(ctx, f.followerID, f.followedID), "Unfollowed", fixed[struct{}](affected))
		res = Result[bool]{Notice: r.Notice, Invalidated: r.Invalidated, Err: r.Err}
	}

	if res.OK() {
		f.following.Commit()
		res.Data = f.following.Get()
	} else {
		res.Data = f.following.Fail()
	}
	return res
}

func followScope(followerID, followedID int64) scope {
	return scope{keys: []query.Key{
		query.FollowersKey(followedID),
		query.FollowingKey(followerID),
		query.FollowDetailKey(followerID, followedID),
	}}
}
