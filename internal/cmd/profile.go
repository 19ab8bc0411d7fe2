package cmd

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var profileUpdate api.UpdateProfileRequest

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "User profile commands",
	Long:  "View and update user profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [user-id]",
	Short: "Show a profile (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := optionalID("user", args)
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewProfileService(env).ViewProfile(ctx, id)
		})(cmd, args)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Long:  "Update your profile. Only the flags you pass are changed.",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewProfileService(env).UpdateProfile(ctx, profileUpdate)
	}),
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileUpdate.FirstName, "first-name", "", "First name")
	f.StringVar(&profileUpdate.LastName, "last-name", "", "Last name")
	f.StringVar(&profileUpdate.CompanyName, "company", "", "Company name")
	f.StringVar(&profileUpdate.Bio, "bio", "", "Bio")
	f.StringVar(&profileUpdate.Location, "location", "", "Location")
	f.StringVar(&profileUpdate.Sport, "sport", "", "Sport")
	f.StringVar(&profileUpdate.Position, "position", "", "Position")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
}
