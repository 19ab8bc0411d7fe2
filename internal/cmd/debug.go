package cmd

import (
	"context"
	"strconv"

	"github.com/athlink/cli/pkg/metrics"
	"github.com/athlink/cli/pkg/service"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:    "debug",
	Short:  "Diagnostics",
	Hidden: true,
}

var debugMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Load your profile twice and print the client metrics",
	Long: `Load your profile twice through the query cache and print the client
metrics. The second load should be a cache hit with no extra request.`,
	RunE: run(func(ctx context.Context, env service.Env) error {
		me, err := env.App.RequireSession(ctx)
		if err != nil {
			return err
		}
		for i := 0; i < 2; i++ {
			if _, err := env.App.User(ctx, me.ID); err != nil {
				return err
			}
		}

		samples, err := env.App.Metrics.Snapshot()
		if err != nil {
			return err
		}
		rows := lo.Map(samples, func(s metrics.Sample, _ int) []string {
			return []string{s.Name, s.Labels, strconv.FormatFloat(s.Value, 'f', -1, 64)}
		})
		return env.Out.PrintList("Client metrics", samples, []string{"NAME", "LABELS", "VALUE"}, rows)
	}),
}

func init() {
	debugCmd.AddCommand(debugMetricsCmd)
}
