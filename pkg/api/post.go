package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/logger"
)

// CreatePost publishes a post for userID. The body is multipart: a JSON "post" blob plus an optional image.
func (a *API) CreatePost(ctx context.Context, userID int64, input PostInput, image *Upload) Envelope[Post] {
	logger.Debug("Creating post", "user_id", userID, "has_image", image != nil)

	fields, err := multipartFields("post", input, image)
	if err != nil {
		return failed[Post](0, apierrors.CategorizeError(err))
	}

	return send[Post](a.client.R(ctx).SetMultipartFields(fields...),
		http.MethodPost, fmt.Sprintf("/api/v1/posts/create/%d", userID))
}

// ListPosts retrieves a page of the feed, optionally restricted to one author
func (a *API) ListPosts(ctx context.Context, filter PostFilter) Envelope[PostList] {
	logger.Debug("Listing posts", "page", filter.Page, "author_id", filter.AuthorID)

	req := a.client.R(ctx)
	if filter.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(filter.Page))
	}
	if filter.AuthorID != 0 {
		req.SetQueryParam("author", strconv.FormatInt(filter.AuthorID, 10))
	}
	return send[PostList](req, http.MethodGet, "/api/v1/posts")
}

// GetPost retrieves a single post
func (a *API) GetPost(ctx context.Context, postID int64) Envelope[Post] {
	logger.Debug("Fetching post", "post_id", postID)
	return send[Post](a.client.R(ctx), http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", postID))
}
