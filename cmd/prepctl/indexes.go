package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the indexes used by interview and feedback queries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, closeFn, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := client.EnsureIndexes(cmd.Context()); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "indexes ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureIndexesCmd)
}
