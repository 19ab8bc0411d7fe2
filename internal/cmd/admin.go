package cmd

import (
	"context"

	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var adminUsersPage int

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin dashboard (admin accounts only)",
}

var adminDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show platform totals",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewAdminService(env).Dashboard(ctx)
	}),
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List accounts",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewAdminService(env).Users(ctx, adminUsersPage)
	}),
}

func init() {
	adminUsersCmd.Flags().IntVar(&adminUsersPage, "page", 1, "Page number")

	adminCmd.AddCommand(adminDashboardCmd)
	adminCmd.AddCommand(adminUsersCmd)
}
