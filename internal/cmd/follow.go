package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var followToggle bool

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Follow a user",
	Long:  "Follow a user. With --toggle the current relationship is flipped instead.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			svc := service.NewFollowService(env)
			if followToggle {
				return svc.Toggle(ctx, id)
			}
			return svc.SetFollowing(ctx, id, true)
		})(cmd, args)
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <user-id>",
	Short: "Unfollow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewFollowService(env).SetFollowing(ctx, id, false)
		})(cmd, args)
	},
}

var followersCmd = &cobra.Command{
	Use:   "followers [user-id]",
	Short: "List followers (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := optionalID("user", args)
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewFollowService(env).Followers(ctx, id)
		})(cmd, args)
	},
}

var followingCmd = &cobra.Command{
	Use:   "following [user-id]",
	Short: "List followed accounts (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := optionalID("user", args)
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewFollowService(env).Following(ctx, id)
		})(cmd, args)
	},
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

// optionalID returns 0 when no id was given
func optionalID(kind string, args []string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	return parseID(kind, args[0])
}

func init() {
	followCmd.Flags().BoolVar(&followToggle, "toggle", false, "Follow if not following, otherwise unfollow")
}
