package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prepwise/interview/internal/events"
	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/metrics"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/prompts"
	"prepwise/interview/internal/repositories"
	"prepwise/interview/internal/schemas"
	"prepwise/interview/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrGeneration wraps every failure of the model or of its output
	ErrGeneration = errors.New("generation failed")
	// ErrFeedbackNotFound is returned when a feedback id to overwrite does
	// not name the caller's record for the interview
	ErrFeedbackNotFound = errors.New("feedback not found")
)

type FeedbackService struct {
	interviews repositories.InterviewStore
	feedback   repositories.FeedbackStore
	provider   llm.Provider
	prompts    prompts.PromptProvider
	events     events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewFeedbackService(interviews repositories.InterviewStore, feedback repositories.FeedbackStore, provider llm.Provider, promptProvider prompts.PromptProvider, publisher events.Publisher, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		interviews: interviews,
		feedback:   feedback,
		provider:   provider,
		prompts:    promptProvider,
		events:     publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *FeedbackService) SetClock(now func() time.Time) {
	s.now = now
}

type feedbackPromptData struct {
	Role       string
	Level      string
	Type       string
	Transcript string
}

// Create scores the transcript and stores the result. With req.FeedbackID set
// that record is overwritten, otherwise exactly one new record is created.
// Only the caller's own record for the same interview can be overwritten.
// Nothing is stored when generation fails.
func (s *FeedbackService) Create(ctx context.Context, userID string, req *models.CreateFeedbackRequest) (*models.Feedback, error) {
	iv, err := s.interviews.GetByID(ctx, req.InterviewID)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, ErrNotFound
	}
	if req.FeedbackID != "" {
		if err := s.checkOverwrite(ctx, req.FeedbackID, iv.ID, userID); err != nil {
			return nil, err
		}
	}

	generated, err := s.generate(ctx, iv, req.Transcript)
	metrics.RecordGeneration("feedback", err)
	if err != nil {
		s.logger.Error("feedback generation failed", zap.String("interviewId", iv.ID), zap.Error(err))
		return nil, err
	}

	fb := &models.Feedback{
		ID:                  req.FeedbackID,
		InterviewID:         iv.ID,
		UserID:              userID,
		TotalScore:          generated.TotalScore,
		CategoryScores:      generated.CategoryScores,
		Strengths:           generated.Strengths,
		AreasForImprovement: generated.AreasForImprovement,
		FinalAssessment:     generated.FinalAssessment,
		CreatedAt:           s.now().UTC(),
	}
	saved, err := s.feedback.Save(ctx, fb)
	if err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}

	if iv.UserID == userID && iv.Status == models.StatusInProgress {
		s.complete(ctx, iv)
	}

	s.events.FeedbackCreated(ctx, events.FeedbackCreated{
		FeedbackID:  saved.ID,
		InterviewID: saved.InterviewID,
		UserID:      saved.UserID,
		TotalScore:  saved.TotalScore,
		At:          saved.CreatedAt,
	})
	return saved, nil
}

// GetByInterview returns nil without error when the user has no feedback
func (s *FeedbackService) GetByInterview(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	return s.feedback.FindByInterview(ctx, interviewID, userID)
}

func (s *FeedbackService) checkOverwrite(ctx context.Context, feedbackID, interviewID, userID string) error {
	existing, err := s.feedback.FindByID(ctx, feedbackID)
	if err != nil {
		return fmt.Errorf("load feedback %s: %w", feedbackID, err)
	}
	if existing == nil || existing.UserID != userID || existing.InterviewID != interviewID {
		s.logger.Warn("rejected feedback overwrite",
			zap.String("feedbackId", feedbackID), zap.String("interviewId", interviewID), zap.String("userId", userID))
		return ErrFeedbackNotFound
	}
	return nil
}

func (s *FeedbackService) generate(ctx context.Context, iv *models.Interview, transcript []models.TranscriptTurn) (*models.GeneratedFeedback, error) {
	prompt, err := s.prompts.BuildPrompt(prompts.FeedbackTemplate, feedbackPromptData{
		Role:       iv.Role,
		Level:      iv.Level,
		Type:       iv.Type,
		Transcript: models.FormatTranscript(transcript),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %v", ErrGeneration, err)
	}

	resp, err := s.provider.GenerateJSON(ctx, models.GenerationRequest{
		SystemPrompt: prompt.System,
		Prompt:       prompt.User,
		RequestID:    uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	content := []byte(utils.StripFences(resp.Content))
	if err := schemas.ValidateBytes(schemas.Feedback, content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var generated models.GeneratedFeedback
	if err := json.Unmarshal(content, &generated); err != nil {
		return nil, fmt.Errorf("%w: decode feedback: %v", ErrGeneration, err)
	}
	scores, err := models.NormalizeCategoryScores(generated.CategoryScores)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	generated.CategoryScores = scores
	return &generated, nil
}

// complete marks the interview completed; failures only get logged
func (s *FeedbackService) complete(ctx context.Context, iv *models.Interview) {
	ok, err := transitionStatus(ctx, s.interviews, iv.ID, models.StatusInProgress, models.StatusCompleted, nil)
	if err != nil {
		s.logger.Warn("failed to mark interview completed", zap.String("interviewId", iv.ID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	metrics.RecordTransition(string(models.StatusInProgress), string(models.StatusCompleted))
	s.events.StatusChanged(ctx, events.StatusChanged{
		InterviewID: iv.ID,
		UserID:      iv.UserID,
		From:        models.StatusInProgress,
		To:          models.StatusCompleted,
		At:          s.now(),
	})
}
