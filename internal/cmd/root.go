package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/app"
	"github.com/athlink/cli/pkg/config"
	"github.com/athlink/cli/pkg/credentials"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/output"
	"github.com/athlink/cli/pkg/prompter"
	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	asUser     string
)

var rootCmd = &cobra.Command{
	Use:   "athlink-cli",
	Short: "Athlink CLI - the athlete and sponsor network from your terminal",
	Long: `Athlink CLI is a command-line client for the Athlink network.
Follow athletes and companies, publish posts and opportunities, chat,
and watch who is online without leaving the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if !output.ValidateOutputFormat(outputFmt) {
			return fmt.Errorf("invalid output format %q (text, json, table)", outputFmt)
		}
		config.Set("output.format", outputFmt)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apierrors.FormatError(err))
		os.Exit(1)
	}
}

// run builds the app for one command and cancels its context on Ctrl+C
func run(fn func(ctx context.Context, env service.Env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := app.New(config.Load(), credentials.Default())
		defer a.Close()

		if err := impersonate(ctx, a); err != nil {
			return err
		}

		return fn(ctx, service.Env{
			App: a,
			Out: output.Default(),
			In:  prompter.Stdio(),
		})
	}
}

// impersonate applies --as-user, which only admins may use
func impersonate(ctx context.Context, a *app.App) error {
	if asUser == "" {
		return nil
	}
	me, err := a.RequireSession(ctx)
	if err != nil {
		return fmt.Errorf("you must be logged in to use --as-user: %w", err)
	}
	if me.Role != api.RoleAdmin {
		return apierrors.ForbiddenError().WithSuggestion("Only admin users can impersonate other users")
	}
	a.Client.SetImpersonateUser(asUser)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/athlink/cli/config.toml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "output", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&asUser, "as-user", "", "Admin impersonation: run commands as another user (requires admin account)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(opportunityCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(unfollowCmd)
	rootCmd.AddCommand(followersCmd)
	rootCmd.AddCommand(followingCmd)
	rootCmd.AddCommand(presenceCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}
