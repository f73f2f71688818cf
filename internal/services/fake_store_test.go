package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"prepwise/interview/internal/events"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/prompts"

	"go.uber.org/zap"
)

type transitionCall struct {
	ID       string
	From, To models.InterviewStatus
	At       *time.Time
}

// fakeInterviewStore keeps interviews in insertion order, which doubles as
// the unsorted fetch order of ListByStatus
type fakeInterviewStore struct {
	mu     sync.Mutex
	items  []models.Interview
	nextID int

	createErr, getErr, listErr, finalizedErr, statusErr, transitionErr, expireErr error

	// runs before a conditional write is applied, to simulate a competing writer
	beforeTransition func(s *fakeInterviewStore, id string)

	transitions []transitionCall
	expireCalls [][]string
}

func (s *fakeInterviewStore) add(iv models.Interview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, iv)
}

func (s *fakeInterviewStore) setStatus(id string, status models.InterviewStatus) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = status
		}
	}
}

func (s *fakeInterviewStore) get(id string) *models.Interview {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, iv := range s.items {
		if iv.ID == id {
			cp := iv
			return &cp
		}
	}
	return nil
}

func (s *fakeInterviewStore) Create(_ context.Context, iv *models.Interview) (*models.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	iv.ID = fmt.Sprintf("generated-%d", s.nextID)
	s.items = append(s.items, *iv)
	return iv, nil
}

func (s *fakeInterviewStore) GetByID(_ context.Context, id string) (*models.Interview, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.get(id), nil
}

func (s *fakeInterviewStore) ListByUser(_ context.Context, userID string, limit int64) ([]models.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Interview
	for _, iv := range s.items {
		if iv.UserID == userID {
			out = append(out, iv)
		}
	}
	return newestFirstLimited(out, limit), nil
}

func (s *fakeInterviewStore) ListFinalized(_ context.Context, limit int64) ([]models.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalizedErr != nil {
		return nil, s.finalizedErr
	}
	var out []models.Interview
	for _, iv := range s.items {
		if iv.Finalized {
			out = append(out, iv)
		}
	}
	return newestFirstLimited(out, limit), nil
}

func (s *fakeInterviewStore) ListByStatus(_ context.Context, userID string, status models.InterviewStatus) ([]models.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	out := []models.Interview{}
	for _, iv := range s.items {
		if iv.UserID == userID && iv.Status == status {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (s *fakeInterviewStore) TransitionStatus(_ context.Context, id string, from, to models.InterviewStatus, startedAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, transitionCall{ID: id, From: from, To: to, At: startedAt})
	if s.transitionErr != nil {
		return false, s.transitionErr
	}
	if s.beforeTransition != nil {
		s.beforeTransition(s, id)
	}
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].Status == from {
			s.items[i].Status = to
			if startedAt != nil {
				at := *startedAt
				s.items[i].StartedAt = &at
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeInterviewStore) ExpireBatch(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireCalls = append(s.expireCalls, append([]string(nil), ids...))
	if s.expireErr != nil {
		return 0, s.expireErr
	}
	var n int64
	for _, id := range ids {
		for i := range s.items {
			if s.items[i].ID == id && s.items[i].Status == models.StatusScheduled {
				s.items[i].Status = models.StatusIncomplete
				n++
			}
		}
	}
	return n, nil
}

func newestFirstLimited(list []models.Interview, limit int64) []models.Interview {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && int64(len(list)) > limit {
		list = list[:limit]
	}
	if list == nil {
		list = []models.Interview{}
	}
	return list
}

type fakeFeedbackStore struct {
	mu      sync.Mutex
	records map[string]models.Feedback
	order   []string
	nextID  int

	saveErr, findErr error
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{records: map[string]models.Feedback{}}
}

func (s *fakeFeedbackStore) Save(_ context.Context, fb *models.Feedback) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if fb.ID == "" {
		s.nextID++
		fb.ID = fmt.Sprintf("fb-%d", s.nextID)
		s.order = append(s.order, fb.ID)
		s.records[fb.ID] = *fb
		return fb, nil
	}
	existing, ok := s.records[fb.ID]
	if !ok || existing.InterviewID != fb.InterviewID || existing.UserID != fb.UserID {
		return nil, fmt.Errorf("replace feedback %s: no matching record", fb.ID)
	}
	s.records[fb.ID] = *fb
	return fb, nil
}

func (s *fakeFeedbackStore) FindByID(_ context.Context, id string) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	fb, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &fb, nil
}

func (s *fakeFeedbackStore) FindByInterview(_ context.Context, interviewID, userID string) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	// newest first, later inserts win ties
	var found *models.Feedback
	for _, id := range s.order {
		fb := s.records[id]
		if fb.InterviewID == interviewID && fb.UserID == userID {
			if found == nil || !fb.CreatedAt.Before(found.CreatedAt) {
				found = &fb
			}
		}
	}
	return found, nil
}

func (s *fakeFeedbackStore) ListSince(_ context.Context, since time.Time) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Feedback
	for _, id := range s.order {
		if fb := s.records[id]; !fb.CreatedAt.Before(since) {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (s *fakeFeedbackStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeProvider struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
	last    models.GenerationRequest
}

func (p *fakeProvider) GenerateJSON(_ context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &models.GenerationResponse{Content: p.content, RequestID: req.RequestID}, nil
}

func (p *fakeProvider) GetProviderName() string { return "fake" }

type recordingPublisher struct {
	mu       sync.Mutex
	status   []events.StatusChanged
	feedback []events.FeedbackCreated
}

func (p *recordingPublisher) StatusChanged(_ context.Context, ev events.StatusChanged) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = append(p.status, ev)
}

func (p *recordingPublisher) FeedbackCreated(_ context.Context, ev events.FeedbackCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feedback = append(p.feedback, ev)
}

var slot = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newPromptManager(t *testing.T) *prompts.PromptManager {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager error: %v", err)
	}
	return pm
}

type testEnv struct {
	store     *fakeInterviewStore
	feedback  *fakeFeedbackStore
	provider  *fakeProvider
	events    *recordingPublisher
	interview *InterviewService
	sweeper   *Sweeper
	dashboard *DashboardService
	feedbacks *FeedbackService
	generator *GenerationService
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    &fakeInterviewStore{},
		feedback: newFakeFeedbackStore(),
		provider: &fakeProvider{},
		events:   &recordingPublisher{},
	}
	logger := zap.NewNop()
	pm := newPromptManager(t)

	env.interview = NewInterviewService(env.store, env.feedback, env.events, logger, 20)
	env.interview.SetClock(fixedClock(now))
	env.sweeper = NewSweeper(env.store, env.events, logger)
	env.sweeper.SetClock(fixedClock(now))
	env.dashboard = NewDashboardService(env.interview, env.sweeper)
	env.feedbacks = NewFeedbackService(env.store, env.feedback, env.provider, pm, env.events, logger)
	env.feedbacks.SetClock(fixedClock(now))
	env.generator = NewGenerationService(env.store, env.provider, pm, logger)
	env.generator.SetClock(fixedClock(now))
	env.generator.pickCover = func() string { return models.InterviewCovers[0] }
	return env
}

func zapNop() *zap.Logger { return zap.NewNop() }

func scheduledInterview(id, userID string, scheduledFor time.Time) models.Interview {
	return models.Interview{
		ID:           id,
		UserID:       userID,
		Role:         "Backend Engineer",
		Level:        "Senior",
		Type:         "Technical",
		Questions:    []string{"q1"},
		Finalized:    true,
		ScheduleType: models.ScheduleLater,
		Status:       models.StatusScheduled,
		ScheduledFor: at(scheduledFor),
		CreatedAt:    scheduledFor.Add(-24 * time.Hour),
	}
}
