package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yoockh/mentorloop/internal/bootstrap"
)

var slotsCmd = &cobra.Command{
	Use:   "slots <mentor_id>",
	Short: "Print a mentor's bookable slots",
	Args:  cobra.ExactArgs(1),
	RunE:  runSlots,
}

func init() {
	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, args []string) error {
	return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
		slots, err := c.AvailabilityService.FreeSlots(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSlots(cmd, slots, c.Config.Location)
		return nil
	})
}

func printSlots(cmd *cobra.Command, slots []time.Time, loc *time.Location) {
	out := cmd.OutOrStdout()
	if len(slots) == 0 {
		fmt.Fprintln(out, "no free slots")
		return
	}
	for _, s := range slots {
		fmt.Fprintf(out, "%s  (%s)\n", s.In(loc).Format("Mon 02 Jan 2006 15:04 MST"), humanize.Time(s))
	}
}
