package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"prepwise/interview/internal/repositories"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// FeedbackExporterJob periodically writes recent feedback to JSONL files for
// offline review of the scoring prompt
type FeedbackExporterJob struct {
	feedback repositories.FeedbackStore
	config   *ExporterConfig
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

type ExporterConfig struct {
	Schedule      string        // cron expression, e.g. "0 2 * * *"
	ExportDir     string
	ExportEnabled bool
	Lookback      time.Duration // window of feedback included in each run
}

func NewFeedbackExporterJob(feedback repositories.FeedbackStore, config *ExporterConfig, logger *zap.Logger) *FeedbackExporterJob {
	return &FeedbackExporterJob{
		feedback: feedback,
		config:   config,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start schedules the export; it is a no-op when exports are disabled
func (j *FeedbackExporterJob) Start() error {
	if !j.config.ExportEnabled {
		j.logger.Info("feedback export is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if _, err := j.RunExport(context.Background()); err != nil {
			j.logger.Error("feedback export failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("feedback exporter started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop waits for a running export to finish
func (j *FeedbackExporterJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("feedback exporter stopped")
}

// RunExport writes the feedback created within the lookback window and
// returns the file path, or "" when there was nothing to export
func (j *FeedbackExporterJob) RunExport(ctx context.Context) (string, error) {
	now := j.now().UTC()
	records, err := j.feedback.ListSince(ctx, now.Add(-j.config.Lookback))
	if err != nil {
		return "", fmt.Errorf("failed to list feedback: %w", err)
	}
	if len(records) == 0 {
		j.logger.Info("no feedback to export")
		return "", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return "", fmt.Errorf("failed to encode feedback %s: %w", records[i].ID, err)
		}
	}

	if err := os.MkdirAll(j.config.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(j.config.ExportDir, fmt.Sprintf("feedback_export_%s.jsonl", now.Format("20060102_150405")))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	j.logger.Info("exported feedback", zap.Int("count", len(records)), zap.String("path", path))
	return path, nil
}
