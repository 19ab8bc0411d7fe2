package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/athlink/cli/pkg/logger"
)

func followPath(followerID, followedID int64) string {
	return fmt.Sprintf("/api/v1/follows/%d/%d", followerID, followedID)
}

// Follow creates a follow relationship. Private accounts answer with a PENDING status.
func (a *API) Follow(ctx context.Context, followerID, followedID int64) Envelope[FollowRelationship] {
	logger.Debug("Following user", "follower_id", followerID, "followed_id", followedID)
	return send[FollowRelationship](a.client.R(ctx), http.MethodPost, followPath(followerID, followedID))
}

// Unfollow deletes a follow relationship, or withdraws a pending request
func (a *API) Unfollow(ctx context.Context, followerID, followedID int64) Envelope[struct{}] {
	logger.Debug("Unfollowing user", "follower_id", followerID, "followed_id", followedID)
	return send[struct{}](a.client.R(ctx), http.MethodDelete, followPath(followerID, followedID))
}

// GetFollow looks up the relationship for the pair; Data is nil when there is none
func (a *API) GetFollow(ctx context.Context, followerID, followedID int64) Envelope[*FollowRelationship] {
	logger.Debug("Fetching follow detail", "follower_id", followerID, "followed_id", followedID)
	return send[*FollowRelationship](a.client.R(ctx), http.MethodGet, followPath(followerID, followedID))
}

// GetFollowers lists the users following userID
func (a *API) GetFollowers(ctx context.Context, userID int64) Envelope[[]User] {
	logger.Debug("Fetching followers", "user_id", userID)
	return send[[]User](a.client.R(ctx), http.MethodGet, fmt.Sprintf("/api/v1/follows/%d/followers", userID))
}

// GetFollowing lists the users userID follows
func (a *API) GetFollowing(ctx context.Context, userID int64) Envelope[[]User] {
	logger.Debug("Fetching following", "user_id", userID)
	return send[[]User](a.client.R(ctx), http.MethodGet, fmt.Sprintf("/api/v1/follows/%d/following", userID))
}
