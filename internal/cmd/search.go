package cmd

import (
	"context"
	"strings"

	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var searchInteractive bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for users",
	Long: `Search for users by name, sport or company.
With --interactive each line typed becomes the new query; results appear
once typing pauses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := strings.Join(args, " ")
		return run(func(ctx context.Context, env service.Env) error {
			svc := service.NewSearchService(env)
			if searchInteractive {
				return svc.Interactive(ctx)
			}
			return svc.SearchUsers(ctx, q)
		})(cmd, args)
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "Search as you type")
}
