package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"prepwise/interview/internal/llm"
	"prepwise/interview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// categories deliberately out of display order
const validFeedbackJSON = `{
  "totalScore": 78,
  "categoryScores": [
    {"name": "technical knowledge", "score": 80, "comment": "Solid on indexing"},
    {"name": "Communication Skills", "score": 75, "comment": "Clear"},
    {"name": "Confidence & Clarity", "score": 70, "comment": "Hesitant at first"},
    {"name": "Problem-Solving", "score": 85, "comment": "Structured"},
    {"name": "Cultural & Role Fit", "score": 78, "comment": "Good fit"}
  ],
  "strengths": ["Database design"],
  "areasForImprovement": ["Concise answers"],
  "finalAssessment": "A strong candidate."
}`

func feedbackRequest(interviewID string) *models.CreateFeedbackRequest {
	return &models.CreateFeedbackRequest{
		InterviewID: interviewID,
		Transcript: []models.TranscriptTurn{
			{Role: "assistant", Content: "Tell me about indexes."},
			{Role: "user", Content: "They speed up reads."},
		},
	}
}

func inProgressInterview(id, userID string) models.Interview {
	iv := scheduledInterview(id, userID, slot)
	iv.Status = models.StatusInProgress
	iv.StartedAt = at(slot)
	return iv
}

func TestCreateFeedbackStoresCanonicalOrder(t *testing.T) {
	now := slot.Add(30 * time.Minute)
	env := newTestEnv(t, now)
	env.store.add(inProgressInterview("iv1", "u1"))
	env.provider.content = validFeedbackJSON

	fb, err := env.feedbacks.Create(context.Background(), "u1", feedbackRequest("iv1"))
	require.NoError(t, err)

	assert.Equal(t, "fb-1", fb.ID)
	assert.Equal(t, "iv1", fb.InterviewID)
	assert.Equal(t, "u1", fb.UserID)
	assert.Equal(t, 78, fb.TotalScore)
	assert.True(t, now.Equal(fb.CreatedAt))
	require.Len(t, fb.CategoryScores, len(models.FeedbackCategories))
	for i, name := range models.FeedbackCategories {
		assert.Equal(t, name, fb.CategoryScores[i].Name)
	}
	assert.Equal(t, 80, fb.CategoryScores[1].Score)

	assert.Contains(t, env.provider.last.Prompt, "- user: They speed up reads.")
	assert.Contains(t, env.provider.last.Prompt, "Backend Engineer")
	assert.NotEmpty(t, env.provider.last.SystemPrompt)
	assert.NotEmpty(t, env.provider.last.RequestID)

	assert.Equal(t, models.StatusCompleted, env.store.get("iv1").Status)
	require.Len(t, env.events.status, 1)
	assert.Equal(t, models.StatusCompleted, env.events.status[0].To)
	require.Len(t, env.events.feedback, 1)
	assert.Equal(t, "fb-1", env.events.feedback[0].FeedbackID)
	assert.Equal(t, 78, env.events.feedback[0].TotalScore)
}

func TestCreateFeedbackOverwritesExisting(t *testing.T) {
	env := newTestEnv(t, slot)
	iv := inProgressInterview("iv1", "u1")
	iv.Status = models.StatusCompleted
	env.store.add(iv)
	env.provider.content = validFeedbackJSON

	first, err := env.feedbacks.Create(context.Background(), "u1", feedbackRequest("iv1"))
	require.NoError(t, err)

	req := feedbackRequest("iv1")
	req.FeedbackID = first.ID
	second, err := env.feedbacks.Create(context.Background(), "u1", req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, env.feedback.count())
	// completed interviews are not written again
	assert.Empty(t, env.store.transitions)
}

func TestCreateFeedbackRejectsForeignFeedbackID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, slot)
	env.store.add(inProgressInterview("iv1", "u1"))
	env.store.add(inProgressInterview("iv2", "u2"))
	env.provider.content = validFeedbackJSON

	original, err := env.feedbacks.Create(ctx, "u1", feedbackRequest("iv1"))
	require.NoError(t, err)
	callsBefore := env.provider.calls

	cases := []struct {
		name        string
		userID      string
		interviewID string
		feedbackID  string
	}{
		{"another user's record", "u2", "iv2", original.ID},
		{"another user on the same interview", "u2", "iv1", original.ID},
		{"own record on another interview", "u1", "iv2", original.ID},
		{"unknown id", "u1", "iv1", "fb-404"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := feedbackRequest(tc.interviewID)
			req.FeedbackID = tc.feedbackID
			fb, err := env.feedbacks.Create(ctx, tc.userID, req)
			assert.ErrorIs(t, err, ErrFeedbackNotFound)
			assert.Nil(t, fb)
		})
	}

	// the model is never asked and the original record is intact
	assert.Equal(t, callsBefore, env.provider.calls)
	assert.Equal(t, 1, env.feedback.count())
	kept, err := env.feedbacks.GetByInterview(ctx, "iv1", "u1")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, original.ID, kept.ID)
	assert.Equal(t, "u1", kept.UserID)
	assert.Equal(t, "iv1", kept.InterviewID)
}

func TestCreateFeedbackWithoutIDAddsRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, slot)
	env.store.add(inProgressInterview("iv1", "u1"))
	env.provider.content = validFeedbackJSON

	_, err := env.feedbacks.Create(ctx, "u1", feedbackRequest("iv1"))
	require.NoError(t, err)
	env.feedbacks.SetClock(fixedClock(slot.Add(time.Minute)))
	second, err := env.feedbacks.Create(ctx, "u1", feedbackRequest("iv1"))
	require.NoError(t, err)
	assert.Equal(t, 2, env.feedback.count())

	// lookups by interview, and so the entry view, return the newest record
	latest, err := env.feedbacks.GetByInterview(ctx, "iv1", "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	res, err := env.interview.Enter(ctx, "u1", "iv1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, res.FeedbackID)
}

func TestCreateFeedbackGenerationFailuresStoreNothing(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		err      error
		wantCode string
	}{
		{name: "provider error", err: &llm.ProviderError{Provider: "fake", Code: llm.ErrCodeServiceDown, Message: "unavailable"}, wantCode: llm.ErrCodeServiceDown},
		{name: "not json", content: "I think the candidate did well."},
		{name: "schema violation", content: `{"totalScore": 150}`},
		{name: "unknown category", content: `{
  "totalScore": 50,
  "categoryScores": [
    {"name": "Communication Skills", "score": 50, "comment": ""},
    {"name": "Technical Knowledge", "score": 50, "comment": ""},
    {"name": "Problem-Solving", "score": 50, "comment": ""},
    {"name": "Cultural & Role Fit", "score": 50, "comment": ""},
    {"name": "Punctuality", "score": 50, "comment": ""}
  ],
  "strengths": [],
  "areasForImprovement": [],
  "finalAssessment": "ok"
}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, slot)
			env.store.add(inProgressInterview("iv1", "u1"))
			env.provider.content = tc.content
			env.provider.err = tc.err

			fb, err := env.feedbacks.Create(context.Background(), "u1", feedbackRequest("iv1"))
			require.Error(t, err)
			assert.Nil(t, fb)
			assert.ErrorIs(t, err, ErrGeneration)
			if tc.wantCode != "" {
				var perr *llm.ProviderError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tc.wantCode, perr.Code)
			}

			assert.Equal(t, 0, env.feedback.count())
			assert.Equal(t, models.StatusInProgress, env.store.get("iv1").Status)
			assert.Empty(t, env.events.feedback)
		})
	}
}

func TestCreateFeedbackAcceptsFencedOutput(t *testing.T) {
	env := newTestEnv(t, slot)
	env.store.add(inProgressInterview("iv1", "u1"))
	env.provider.content = "```json\n" + validFeedbackJSON + "\n```"

	_, err := env.feedbacks.Create(context.Background(), "u1", feedbackRequest("iv1"))
	require.NoError(t, err)
	assert.Equal(t, 1, env.feedback.count())
}

func TestCreateFeedbackUnknownInterview(t *testing.T) {
	env := newTestEnv(t, slot)
	env.provider.content = validFeedbackJSON

	_, err := env.feedbacks.Create(context.Background(), "u1", feedbackRequest("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, env.provider.calls)
}

func TestCreateFeedbackByAnotherUserLeavesStatus(t *testing.T) {
	env := newTestEnv(t, slot)
	env.store.add(inProgressInterview("iv1", "owner"))
	env.provider.content = validFeedbackJSON

	fb, err := env.feedbacks.Create(context.Background(), "visitor", feedbackRequest("iv1"))
	require.NoError(t, err)
	assert.Equal(t, "visitor", fb.UserID)
	assert.Equal(t, models.StatusInProgress, env.store.get("iv1").Status)
}

func TestCreateFeedbackSaveFailure(t *testing.T) {
	env := newTestEnv(t, slot)
	env.store.add(inProgressInterview("iv1", "u1"))
	env.provider.content = validFeedbackJSON
	env.feedback.saveErr = errors.New("disk full")

	_, err := env.feedbacks.Create(context.Background(), "u1", feedbackRequest("iv1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGeneration)
	assert.Equal(t, models.StatusInProgress, env.store.get("iv1").Status)
}

func TestCreateFeedbackCompletionFailureIsIgnored(t *testing.T) {
	env := newTestEnv(t, slot)
	env.store.add(inProgressInterview("iv1", "u1"))
	env.provider.content = validFeedbackJSON
	env.store.transitionErr = errors.New("write conflict")

	fb, err := env.feedbacks.Create(context.Background(), "u1", feedbackRequest("iv1"))
	require.NoError(t, err)
	assert.NotEmpty(t, fb.ID)
	assert.Len(t, env.events.feedback, 1)
}

func TestGetByInterviewMissing(t *testing.T) {
	env := newTestEnv(t, slot)
	fb, err := env.feedbacks.GetByInterview(context.Background(), "iv1", "u1")
	require.NoError(t, err)
	assert.Nil(t, fb)
}
