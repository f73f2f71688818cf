package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

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

var ErrScheduleInPast = errors.New("scheduledFor must not be in the past")

// GenerationService creates interviews from model generated questions
type GenerationService struct {
	interviews repositories.InterviewStore
	provider   llm.Provider
	prompts    prompts.PromptProvider
	logger     *zap.Logger
	now        func() time.Time
	pickCover  func() string
}

func NewGenerationService(interviews repositories.InterviewStore, provider llm.Provider, promptProvider prompts.PromptProvider, logger *zap.Logger) *GenerationService {
	return &GenerationService{
		interviews: interviews,
		provider:   provider,
		prompts:    promptProvider,
		logger:     logger,
		now:        time.Now,
		pickCover:  randomCover,
	}
}

func (s *GenerationService) SetClock(now func() time.Time) {
	s.now = now
}

func randomCover() string {
	return models.InterviewCovers[rand.IntN(len(models.InterviewCovers))]
}

type questionsPromptData struct {
	Role      string
	Level     string
	Type      string
	Techstack []string
	Amount    int
}

// Generate asks the model for questions and stores the finalized interview.
// Later interviews start scheduled; immediate ones start in-progress.
func (s *GenerationService) Generate(ctx context.Context, userID string, req *models.GenerateInterviewRequest) (*models.Interview, error) {
	now := s.now().UTC()
	if req.ScheduleType == models.ScheduleLater && req.ScheduledFor != nil && req.ScheduledFor.Before(now) {
		return nil, ErrScheduleInPast
	}

	techstack := req.TechstackList()
	questions, err := s.questions(ctx, req, techstack)
	metrics.RecordGeneration("questions", err)
	if err != nil {
		s.logger.Error("question generation failed", zap.String("role", req.Role), zap.Error(err))
		return nil, err
	}

	iv := &models.Interview{
		UserID:       userID,
		Role:         req.Role,
		Level:        req.Level,
		Type:         req.Type,
		Techstack:    techstack,
		Questions:    questions,
		Finalized:    true,
		CoverImage:   s.pickCover(),
		ScheduleType: req.ScheduleType,
		CreatedAt:    now,
	}
	if req.ScheduleType == models.ScheduleLater {
		at := req.ScheduledFor.UTC()
		iv.Status = models.StatusScheduled
		iv.ScheduledFor = &at
	} else {
		iv.Status = models.StatusInProgress
		iv.StartedAt = &now
	}

	created, err := s.interviews.Create(ctx, iv)
	if err != nil {
		return nil, fmt.Errorf("save interview: %w", err)
	}
	s.logger.Info("interview generated",
		zap.String("interviewId", created.ID),
		zap.String("userId", userID),
		zap.String("status", string(created.Status)),
		zap.Int("questions", len(created.Questions)))
	return created, nil
}

func (s *GenerationService) questions(ctx context.Context, req *models.GenerateInterviewRequest, techstack []string) ([]string, error) {
	prompt, err := s.prompts.BuildPrompt(prompts.QuestionsTemplate, questionsPromptData{
		Role:      req.Role,
		Level:     req.Level,
		Type:      req.Type,
		Techstack: techstack,
		Amount:    req.Amount,
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
	if err := schemas.ValidateBytes(schemas.Questions, content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var raw []string
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode questions: %v", ErrGeneration, err)
	}

	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions returned", ErrGeneration)
	}
	if len(questions) > req.Amount {
		questions = questions[:req.Amount]
	}
	if len(questions) < req.Amount {
		s.logger.Warn("model returned fewer questions than requested",
			zap.Int("requested", req.Amount), zap.Int("received", len(questions)))
	}
	return questions, nil
}
