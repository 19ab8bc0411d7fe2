package cmd

import (
	"context"
	"strings"

	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var chatFollow bool

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"messages"},
	Short:   "Direct messages",
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewChatService(env).ListConversations(ctx)
	}),
}

var chatReadCmd = &cobra.Command{
	Use:   "read <conversation-id>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("conversation", args[0])
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewChatService(env).Read(ctx, id, chatFollow)
		})(cmd, args)
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <conversation-id> [message]",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("conversation", args[0])
		if err != nil {
			return err
		}
		content := strings.Join(args[1:], " ")
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewChatService(env).Send(ctx, id, content)
		})(cmd, args)
	},
}

func init() {
	chatReadCmd.Flags().BoolVarP(&chatFollow, "follow", "f", false, "Keep printing new messages")

	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatReadCmd)
	chatCmd.AddCommand(chatSendCmd)
}
