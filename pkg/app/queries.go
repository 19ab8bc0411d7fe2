package app

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/query"
)

// Followers lists who follows userID
func (a *App) Followers(ctx context.Context, userID int64) ([]api.User, error) {
	return query.Fetch(ctx, a.Cache, query.FollowersKey(userID), func(ctx context.Context) ([]api.User, error) {
		return a.API.GetFollowers(ctx, userID).Result()
	})
}

// Following lists who userID follows
func (a *App) Following(ctx context.Context, userID int64) ([]api.User, error) {
	return query.Fetch(ctx, a.Cache, query.FollowingKey(userID), func(ctx context.Context) ([]api.User, error) {
		return a.API.GetFollowing(ctx, userID).Result()
	})
}

// FollowStatus reports whether followerID follows followedID.
// A pending request counts as following for the toggle.
func (a *App) FollowStatus(ctx context.Context, followerID, followedID int64) (bool, error) {
	rel, err := query.Fetch(ctx, a.Cache, query.FollowDetailKey(followerID, followedID), func(ctx context.Context) (*api.FollowRelationship, error) {
		env := a.API.GetFollow(ctx, followerID, followedID)
		if !env.Success && env.StatusCode == 404 {
			return nil, nil
		}
		return env.Result()
	})
	if err != nil {
		return false, err
	}
	return rel != nil, nil
}

func (a *App) User(ctx context.Context, userID int64) (api.User, error) {
	return query.Fetch(ctx, a.Cache, query.UserKey(userID), func(ctx context.Context) (api.User, error) {
		return a.API.GetUser(ctx, userID).Result()
	})
}

func (a *App) Posts(ctx context.Context, filter api.PostFilter) (api.PostList, error) {
	return query.Fetch(ctx, a.Cache, query.PostListKey(filter), func(ctx context.Context) (api.PostList, error) {
		return a.API.ListPosts(ctx, filter).Result()
	})
}

func (a *App) Post(ctx context.Context, postID int64) (api.Post, error) {
	return query.Fetch(ctx, a.Cache, query.PostKey(postID), func(ctx context.Context) (api.Post, error) {
		return a.API.GetPost(ctx, postID).Result()
	})
}

func (a *App) Opportunities(ctx context.Context, filter api.OpportunityFilter) (api.OpportunityList, error) {
	return query.Fetch(ctx, a.Cache, query.OpportunityListKey(filter), func(ctx context.Context) (api.OpportunityList, error) {
		return a.API.ListOpportunities(ctx, filter).Result()
	})
}

func (a *App) Opportunity(ctx context.Context, opportunityID int64) (api.Opportunity, error) {
	return query.Fetch(ctx, a.Cache, query.OpportunityKey(opportunityID), func(ctx context.Context) (api.Opportunity, error) {
		return a.API.GetOpportunity(ctx, opportunityID).Result()
	})
}

// Conversations loads the inbox into the chat store
func (a *App) Conversations(ctx context.Context) ([]api.Conversation, error) {
	convs, err := query.Fetch(ctx, a.Cache, query.ConversationsKey(), func(ctx context.Context) ([]api.Conversation, error) {
		return a.API.GetConversations(ctx).Result()
	})
	if err != nil {
		return nil, err
	}
	a.Chat.LoadConversations(convs)
	return convs, nil
}

// OpenConversation selects a conversation and loads its messages
func (a *App) OpenConversation(ctx context.Context, conversationID int64) ([]api.Message, error) {
	msgs, err := query.Fetch(ctx, a.Cache, query.MessagesKey(conversationID), func(ctx context.Context) ([]api.Message, error) {
		return a.API.GetMessages(ctx, conversationID).Result()
	})
	if err != nil {
		return nil, err
	}
	a.Chat.SetMessages(conversationID, msgs)
	a.Chat.Select(conversationID)
	return msgs, nil
}

// SendMessage posts to a conversation and appends the stored copy
func (a *App) SendMessage(ctx context.Context, conversationID int64, content string) (api.Message, error) {
	msg, err := a.API.SendMessage(ctx, conversationID, content).Result()
	if err != nil {
		return api.Message{}, err
	}
	a.Chat.AppendMessage(msg)
	a.Cache.Invalidate(query.MessagesKey(conversationID), query.ConversationsKey())
	return msg, nil
}
