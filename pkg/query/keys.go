package query

import (
	"fmt"
	"strings"

	"github.com/athlink/cli/pkg/api"
	"github.com/samber/lo"
)

// Key identifies a cached resource. Parts are joined with "/" so that
// list keys share a prefix with their resource ("posts/list/...").
type Key string

// K builds a Key from its parts
func K(parts ...interface{}) Key {
	return Key(strings.Join(lo.Map(parts, func(p interface{}, _ int) string {
		return fmt.Sprint(p)
	}), "/"))
}

// Resource is the first part of the key, used as the metrics label
func (k Key) Resource() string {
	resource, _, _ := strings.Cut(string(k), "/")
	return resource
}

// HasPrefix reports whether k equals prefix or lives under it
func (k Key) HasPrefix(prefix Key) bool {
	return k == prefix || strings.HasPrefix(string(k), string(prefix)+"/")
}

func (k Key) String() string {
	return string(k)
}

func FollowersKey(userID int64) Key {
	return K("followers", userID)
}

func FollowingKey(userID int64) Key {
	return K("following", userID)
}

// FollowDetailKey is the relationship between one follower and one followed user
func FollowDetailKey(followerID, followedID int64) Key {
	return K("follow", followerID, followedID)
}

func UserKey(userID int64) Key {
	return K("user", userID)
}

func PostKey(postID int64) Key {
	return K("post", postID)
}

// PostListsKey is the prefix shared by every post list filter
func PostListsKey() Key {
	return K("posts", "list")
}

func PostListKey(filter api.PostFilter) Key {
	return K(PostListsKey(), fmt.Sprintf("page=%d", filter.Page), fmt.Sprintf("author=%d", filter.AuthorID))
}

func OpportunityKey(opportunityID int64) Key {
	return K("opportunity", opportunityID)
}

// OpportunityListsKey is the prefix shared by every opportunity list filter
func OpportunityListsKey() Key {
	return K("opportunities", "list")
}

func OpportunityListKey(filter api.OpportunityFilter) Key {
	return K(OpportunityListsKey(), fmt.Sprintf("page=%d", filter.Page), "type="+string(filter.Type))
}

func ConversationsKey() Key {
	return K("chats")
}

func MessagesKey(conversationID int64) Key {
	return K("chats", conversationID, "messages")
}

func SearchKey(query string) Key {
	return K("search", query)
}
