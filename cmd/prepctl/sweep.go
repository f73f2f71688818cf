package main

import (
	"context"
	"fmt"
	"io"

	"prepwise/interview/internal/events"
	"prepwise/interview/internal/repositories/mongo"
	"prepwise/interview/internal/services"

	"github.com/spf13/cobra"
)

var sweepUsers []string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark missed scheduled interviews incomplete",
	Long:  "Runs the expiry sweep for each given user, the same sweep the dashboard runs on load.",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringSliceVarP(&sweepUsers, "user", "u", nil, "User ID to sweep (repeatable, required)")
	_ = sweepCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	defer logger.Sync()

	client, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	repo, err := mongo.NewInterviewRepo(client)
	if err != nil {
		return err
	}
	// events are left to the service; the CLI only fixes up state
	sweeper := services.NewSweeper(repo, events.Nop{}, logger)
	sweepAll(cmd.Context(), sweeper, sweepUsers, cmd.OutOrStdout())
	return nil
}

// sweepAll prints one "user<TAB>count" line per user and returns the total
func sweepAll(ctx context.Context, sweeper *services.Sweeper, users []string, out io.Writer) int {
	total := 0
	for _, userID := range users {
		n := sweeper.Sweep(ctx, userID)
		total += n
		fmt.Fprintf(out, "%s\t%d\n", userID, n)
	}
	fmt.Fprintf(out, "expired %d interview(s)\n", total)
	return total
}
