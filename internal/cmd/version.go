package cmd

import (
	"fmt"

	"github.com/athlink/cli/pkg/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Athlink CLI v%s\n", config.Version)
	},
}
