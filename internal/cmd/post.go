package cmd

import (
	"context"
	"strings"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	postImage  string
	postPage   int
	postAuthor int64
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post commands",
	Long:  "Create and browse posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create [content]",
	Short: "Publish a post",
	Long:  "Publish a post. Content is prompted for when not given; --image attaches a picture.",
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewPostService(env).Create(ctx, content, postImage)
		})(cmd, args)
	},
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent posts",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewPostService(env).List(ctx, api.PostFilter{Page: postPage, AuthorID: postAuthor})
	}),
}

var postGetCmd = &cobra.Command{
	Use:   "get <post-id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("post", args[0])
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewPostService(env).Get(ctx, id)
		})(cmd, args)
	},
}

func init() {
	postCreateCmd.Flags().StringVar(&postImage, "image", "", "Path to an image to attach")
	postListCmd.Flags().IntVar(&postPage, "page", 1, "Page number")
	postListCmd.Flags().Int64Var(&postAuthor, "author", 0, "Only posts by this user id")

	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postGetCmd)
}
