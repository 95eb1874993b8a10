package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yoockh/mentorloop/internal/bootstrap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a single expiry sweep pass",
	Long: `Force-complete scheduled and active sessions that are past their grace
period, exactly like one tick of the server's background sweeper. The run
takes the same lock, so it is safe while servers are up.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
		res, err := c.Sweeper.SweepOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "candidates=%d completed=%d degraded=%d skipped=%d failed=%d\n",
			res.Candidates, res.Completed, res.Degraded, res.Skipped, res.Failed)
		return nil
	})
}
