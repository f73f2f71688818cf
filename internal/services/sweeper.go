package services

import (
	"context"
	"fmt"
	"time"

	"prepwise/interview/internal/events"
	"prepwise/interview/internal/lifecycle"
	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"

	"go.uber.org/zap"
)

// Sweeper marks a user's scheduled interviews incomplete once their start
// window has passed
type Sweeper struct {
	interviews repositories.InterviewStore
	events     events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewSweeper(interviews repositories.InterviewStore, publisher events.Publisher, logger *zap.Logger) *Sweeper {
	return &Sweeper{interviews: interviews, events: publisher, logger: logger, now: time.Now}
}

func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// Sweep returns the number of interviews marked incomplete. Failures are
// logged and reported as zero.
func (s *Sweeper) Sweep(ctx context.Context, userID string) int {
	n, err := s.sweep(ctx, userID)
	metrics.RecordSweep(n, err)
	if err != nil {
		s.logger.Warn("expiry sweep failed", zap.String("userId", userID), zap.Error(err))
		return 0
	}
	if n > 0 {
		s.logger.Info("expired scheduled interviews", zap.String("userId", userID), zap.Int("count", n))
	}
	return n
}

func (s *Sweeper) sweep(ctx context.Context, userID string) (int, error) {
	scheduled, err := s.interviews.ListByStatus(ctx, userID, models.StatusScheduled)
	if err != nil {
		return 0, fmt.Errorf("list scheduled: %w", err)
	}

	now := s.now()
	var stale []models.Interview
	for _, iv := range scheduled {
		if iv.ScheduledFor != nil && lifecycle.Evaluate(*iv.ScheduledFor, now) == lifecycle.Expired {
			stale = append(stale, iv)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, len(stale))
	for i, iv := range stale {
		ids[i] = iv.ID
	}
	changed, err := s.interviews.ExpireBatch(ctx, ids)
	if err != nil {
		return 0, err
	}

	for i := int64(0); i < changed; i++ {
		metrics.RecordTransition(string(models.StatusScheduled), string(models.StatusIncomplete))
	}

	// with a partial match we cannot tell which ids moved
	if changed != int64(len(stale)) {
		s.logger.Info("some scheduled interviews changed during sweep",
			zap.String("userId", userID), zap.Int("selected", len(stale)), zap.Int64("changed", changed))
		return int(changed), nil
	}
	for _, iv := range stale {
		s.events.StatusChanged(ctx, events.StatusChanged{
			InterviewID: iv.ID,
			UserID:      iv.UserID,
			From:        models.StatusScheduled,
			To:          models.StatusIncomplete,
			At:          now,
		})
	}
	return int(changed), nil
}
