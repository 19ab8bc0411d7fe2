package mutation

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/query"
)

type PostAPI interface {
	CreatePost(ctx context.Context, userID int64, input api.PostInput, image *api.Upload) api.Envelope[api.Post]
}

type OpportunityAPI interface {
	CreateOpportunity(ctx context.Context, companyID int64, input api.OpportunityInput, image *api.Upload) api.Envelope[api.Opportunity]
}

// CreatePost publishes a post. Success makes every post list and the
// author's profile stale.
func CreatePost(ctx context.Context, d Deps, a PostAPI, authorID int64, input api.PostInput, image *api.Upload) Result[api.Post] {
	env := a.CreatePost(ctx, authorID, input, image)
	return settle(d, "create_post", env, "Post created", func(p api.Post) scope {
		author := p.AuthorID
		if author == 0 {
			author = authorID
		}
		return scope{
			keys:     []query.Key{query.UserKey(author)},
			prefixes: []query.Key{query.PostListsKey()},
		}
	})
}

// CreateOpportunity publishes an opportunity for a company. Success makes
// every opportunity list stale.
func CreateOpportunity(ctx context.Context, d Deps, a OpportunityAPI, companyID int64, input api.OpportunityInput, image *api.Upload) Result[api.Opportunity] {
	env := a.CreateOpportunity(ctx, companyID, input, image)
	return settle(d, "create_opportunity", env, "Opportunity created", fixed[api.Opportunity](scope{
		prefixes: []query.Key{query.OpportunityListsKey()},
	}))
}
