package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"prepwise/interview/internal/events"
	"prepwise/interview/internal/lifecycle"
	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"

	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("interview not found")
	ErrTooEarly = errors.New("interview has not started yet")
	ErrExpired  = errors.New("interview start window has passed")
)

// InterviewService serves interview reads and gates entry into scheduled
// interviews
type InterviewService struct {
	interviews      repositories.InterviewStore
	feedback        repositories.FeedbackStore
	events          events.Publisher
	logger          *zap.Logger
	now             func() time.Time
	publicFeedLimit int64
}

func NewInterviewService(interviews repositories.InterviewStore, feedback repositories.FeedbackStore, publisher events.Publisher, logger *zap.Logger, publicFeedLimit int64) *InterviewService {
	if publicFeedLimit <= 0 {
		publicFeedLimit = models.DefaultPublicFeedSize
	}
	return &InterviewService{
		interviews:      interviews,
		feedback:        feedback,
		events:          publisher,
		logger:          logger,
		now:             time.Now,
		publicFeedLimit: publicFeedLimit,
	}
}

func (s *InterviewService) SetClock(now func() time.Time) {
	s.now = now
}

// GetByID returns nil without error when the interview does not exist
func (s *InterviewService) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	return s.interviews.GetByID(ctx, id)
}

// ListByUser returns the user's interviews, newest first
func (s *InterviewService) ListByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	return s.interviews.ListByUser(ctx, userID, 0)
}

// Latest returns the user's most recent interview as a list of zero or one
func (s *InterviewService) Latest(ctx context.Context, userID string) ([]models.Interview, error) {
	return s.interviews.ListByUser(ctx, userID, 1)
}

// PublicFeed returns recent finalized interviews of other users. The limit
// applies before the caller's own interviews are removed, so the feed can
// come back shorter than the limit.
func (s *InterviewService) PublicFeed(ctx context.Context, userID string) ([]models.Interview, error) {
	all, err := s.interviews.ListFinalized(ctx, s.publicFeedLimit)
	if err != nil {
		return nil, err
	}

	feed := make([]models.Interview, 0, len(all))
	for _, iv := range all {
		if iv.UserID != userID {
			feed = append(feed, iv)
		}
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed, nil
}

// Scheduled returns the user's scheduled interviews, soonest first
func (s *InterviewService) Scheduled(ctx context.Context, userID string) ([]models.Interview, error) {
	list, err := s.interviews.ListByStatus(ctx, userID, models.StatusScheduled)
	if err != nil {
		return nil, err
	}
	sortBySchedule(list, true)
	return list, nil
}

// Incomplete returns the user's missed interviews, most recently missed first
func (s *InterviewService) Incomplete(ctx context.Context, userID string) ([]models.Interview, error) {
	list, err := s.interviews.ListByStatus(ctx, userID, models.StatusIncomplete)
	if err != nil {
		return nil, err
	}
	sortBySchedule(list, false)
	return list, nil
}

// sortBySchedule orders by scheduledFor. Interviews without a schedule go
// last in their fetched order.
func sortBySchedule(list []models.Interview, ascending bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].ScheduledFor, list[j].ScheduledFor
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case ascending:
			return a.Before(*b)
		default:
			return a.After(*b)
		}
	})
}

type EntryResult struct {
	Interview *models.Interview
	// empty when the user has no feedback for this interview yet
	FeedbackID string
}

// Enter admits userID into interview id. A scheduled interview owned by the
// caller is checked against its start window first: too early returns
// ErrTooEarly, inside the window marks it in-progress, past the window marks
// it incomplete and returns ErrExpired.
func (s *InterviewService) Enter(ctx context.Context, userID, id string) (*EntryResult, error) {
	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, ErrNotFound
	}

	// other users practice the question set without touching its schedule
	if iv.Status != models.StatusScheduled || iv.ScheduledFor == nil || iv.UserID != userID {
		return s.admit(ctx, userID, iv), nil
	}

	now := s.now()
	outcome := lifecycle.Evaluate(*iv.ScheduledFor, now)
	metrics.RecordEntryOutcome(outcome.String())

	switch outcome {
	case lifecycle.TooEarly:
		return nil, ErrTooEarly

	case lifecycle.Expired:
		ok, err := transitionStatus(ctx, s.interviews, iv.ID, models.StatusScheduled, models.StatusIncomplete, nil)
		if err != nil {
			// the sweep retries the write later
			s.logger.Error("failed to mark interview incomplete", zap.String("interviewId", iv.ID), zap.Error(err))
			return nil, ErrExpired
		}
		if !ok {
			return s.resolveLostWrite(ctx, userID, iv.ID)
		}
		s.transitioned(ctx, iv, models.StatusIncomplete, now)
		return nil, ErrExpired

	default:
		ok, err := transitionStatus(ctx, s.interviews, iv.ID, models.StatusScheduled, models.StatusInProgress, &now)
		if err != nil {
			return nil, fmt.Errorf("start interview %s: %w", iv.ID, err)
		}
		if !ok {
			return s.resolveLostWrite(ctx, userID, iv.ID)
		}
		iv.StartedAt = &now
		s.transitioned(ctx, iv, models.StatusInProgress, now)
		return s.admit(ctx, userID, iv), nil
	}
}

// resolveLostWrite handles a conditional write that matched nothing because
// another request moved the interview first
func (s *InterviewService) resolveLostWrite(ctx context.Context, userID, id string) (*EntryResult, error) {
	current, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	switch current.EffectiveStatus() {
	case models.StatusInProgress, models.StatusCompleted:
		return s.admit(ctx, userID, current), nil
	case models.StatusIncomplete:
		return nil, ErrExpired
	default:
		return nil, fmt.Errorf("interview %s changed concurrently to %q", id, current.Status)
	}
}

// transitionStatus refuses moves the lifecycle never makes before writing
func transitionStatus(ctx context.Context, store repositories.InterviewStore, id string, from, to models.InterviewStatus, startedAt *time.Time) (bool, error) {
	if err := lifecycle.CheckTransition(from, to); err != nil {
		return false, err
	}
	return store.TransitionStatus(ctx, id, from, to, startedAt)
}

func (s *InterviewService) transitioned(ctx context.Context, iv *models.Interview, to models.InterviewStatus, at time.Time) {
	from := iv.Status
	iv.Status = to
	metrics.RecordTransition(string(from), string(to))
	s.events.StatusChanged(ctx, events.StatusChanged{
		InterviewID: iv.ID,
		UserID:      iv.UserID,
		From:        from,
		To:          to,
		At:          at,
	})
}

func (s *InterviewService) admit(ctx context.Context, userID string, iv *models.Interview) *EntryResult {
	result := &EntryResult{Interview: iv}
	fb, err := s.feedback.FindByInterview(ctx, iv.ID, userID)
	if err != nil {
		s.logger.Warn("failed to look up feedback for entry", zap.String("interviewId", iv.ID), zap.Error(err))
		return result
	}
	if fb != nil {
		result.FeedbackID = fb.ID
	}
	return result
}
