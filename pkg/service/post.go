package service

import (
	"context"
	"fmt"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/formatter"
)

// PostService creates and browses posts
type PostService struct {
	Env
}

func NewPostService(env Env) *PostService {
	return &PostService{Env: env}
}

// Create publishes a post. Content is prompted for when empty; imagePath is optional.
func (s *PostService) Create(ctx context.Context, content, imagePath string) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}

	if content == "" {
		var err error
		if content, err = s.In.Multiline("Post content", 50); err != nil {
			return err
		}
	}

	image, closeImage, err := openImage(imagePath)
	if err != nil {
		return err
	}
	defer closeImage()

	res := s.App.CreatePost(ctx, api.PostInput{Content: content}, image)
	if err := report(s.Out, res); err != nil {
		return err
	}
	return s.Out.PrintRecord("", res.Data, formatter.PostFields(res.Data))
}

// List shows one page of posts, optionally by one author
func (s *PostService) List(ctx context.Context, filter api.PostFilter) error {
	_, _ = s.App.Restore(ctx)
	if filter.Page < 1 {
		filter.Page = 1
	}

	list, err := s.App.Posts(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}
	title := fmt.Sprintf("Posts (page %d, %d total)", filter.Page, list.TotalCount)
	return s.Out.PrintList(title, list, formatter.PostHeaders, formatter.PostRows(list.Posts))
}

func (s *PostService) Get(ctx context.Context, postID int64) error {
	_, _ = s.App.Restore(ctx)

	post, err := s.App.Post(ctx, postID)
	if err != nil {
		if api.IsNotFound(err) {
			s.Out.Error("Post not found: %d", postID)
		}
		return err
	}
	return s.Out.PrintRecord("", post, formatter.PostFields(post))
}

// openImage opens an optional upload; the returned func closes it
func openImage(path string) (*api.Upload, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	upload, f, err := api.OpenUpload(path)
	if err != nil {
		return nil, nil, err
	}
	return upload, func() { _ = f.Close() }, nil
}
