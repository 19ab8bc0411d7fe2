package cmd

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	oppTitle       string
	oppDescription string
	oppType        string
	oppLocation    string
	oppSport       string
	oppDeadline    string
	oppImage       string
	oppPage        int
)

var opportunityCmd = &cobra.Command{
	Use:     "opportunity",
	Aliases: []string{"opp"},
	Short:   "Opportunity commands",
	Long:    "Publish and browse jobs, internships, sponsorships and tryouts",
}

var opportunityCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish an opportunity (company accounts only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := service.ParseOpportunityType(oppType)
		if err != nil {
			return err
		}
		input := api.OpportunityInput{
			Title:       oppTitle,
			Description: oppDescription,
			Type:        t,
			Location:    oppLocation,
			Sport:       oppSport,
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewOpportunityService(env).Create(ctx, input, oppDeadline, oppImage)
		})(cmd, args)
	},
}

var opportunityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := service.ParseOpportunityType(oppType)
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewOpportunityService(env).List(ctx, api.OpportunityFilter{Page: oppPage, Type: t})
		})(cmd, args)
	},
}

var opportunityGetCmd = &cobra.Command{
	Use:   "get <opportunity-id>",
	Short: "Show one opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("opportunity", args[0])
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, env service.Env) error {
			return service.NewOpportunityService(env).Get(ctx, id)
		})(cmd, args)
	},
}

func init() {
	opportunityCreateCmd.Flags().StringVar(&oppTitle, "title", "", "Title")
	opportunityCreateCmd.Flags().StringVar(&oppDescription, "description", "", "Description")
	opportunityCreateCmd.Flags().StringVar(&oppType, "type", "", "Type: job, internship, sponsorship, tryout")
	opportunityCreateCmd.Flags().StringVar(&oppLocation, "location", "", "Location")
	opportunityCreateCmd.Flags().StringVar(&oppSport, "sport", "", "Sport")
	opportunityCreateCmd.Flags().StringVar(&oppDeadline, "deadline", "", "Application deadline (YYYY-MM-DD)")
	opportunityCreateCmd.Flags().StringVar(&oppImage, "image", "", "Path to an image to attach")

	opportunityListCmd.Flags().IntVar(&oppPage, "page", 1, "Page number")
	opportunityListCmd.Flags().StringVar(&oppType, "type", "", "Only this type")

	opportunityCmd.AddCommand(opportunityCreateCmd)
	opportunityCmd.AddCommand(opportunityListCmd)
	opportunityCmd.AddCommand(opportunityGetCmd)
}
