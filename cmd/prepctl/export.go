package main

import (
	"fmt"
	"time"

	"prepwise/interview/internal/jobs"
	"prepwise/interview/internal/repositories/mongo"

	"github.com/spf13/cobra"
)

var (
	exportDir      string
	exportLookback time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export-feedback",
	Short: "Write recent feedback to a JSONL file once",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", envOr("FEEDBACK_EXPORT_DIR", "./exports"), "Export directory")
	exportCmd.Flags().DurationVar(&exportLookback, "since", 24*time.Hour, "How far back to export")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportLookback <= 0 {
		return fmt.Errorf("--since must be positive, got %s", exportLookback)
	}

	logger := newLogger()
	defer logger.Sync()

	client, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	repo, err := mongo.NewFeedbackRepo(client)
	if err != nil {
		return err
	}
	job := jobs.NewFeedbackExporterJob(repo, &jobs.ExporterConfig{
		ExportDir:     exportDir,
		ExportEnabled: true,
		Lookback:      exportLookback,
	}, logger)

	path, err := job.RunExport(cmd.Context())
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no feedback in window")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
