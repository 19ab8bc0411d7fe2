package cmd

import (
	"context"

	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var presenceCmd = &cobra.Command{
	Use:   "presence",
	Short: "See who is online",
}

var presenceStatusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show whether a user is online",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewPresenceService(env).Status(ctx, id)
		})(cmd, args)
	},
}

var presenceWatchCmd = &cobra.Command{
	Use:   "watch <user-id>",
	Short: "Follow a user's online status live until Ctrl+C",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("user", args[0])
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewPresenceService(env).Watch(ctx, id)
		})(cmd, args)
	},
}

func init() {
	presenceCmd.AddCommand(presenceStatusCmd)
	presenceCmd.AddCommand(presenceWatchCmd)
}
