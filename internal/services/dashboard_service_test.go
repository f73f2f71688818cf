package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"prepwise/interview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSweepsBeforeReading(t *testing.T) {
	now := slot.Add(time.Hour)
	env := newTestEnv(t, now)
	env.store.add(scheduledInterview("missed", "u1", slot))
	env.store.add(scheduledInterview("upcoming", "u1", slot.Add(2*time.Hour)))
	done := inProgressInterview("done", "u1")
	done.Status = models.StatusCompleted
	env.store.add(done)
	legacy := inProgressInterview("legacy", "u1")
	legacy.Status = ""
	env.store.add(legacy)
	env.store.add(models.Interview{ID: "public", UserID: "u2", Finalized: true, CreatedAt: slot})

	d, err := env.dashboard.Dashboard(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, d.Expired)
	assert.Equal(t, []string{"missed"}, ids(d.Incomplete))
	assert.Equal(t, []string{"upcoming"}, ids(d.Scheduled))
	assert.ElementsMatch(t, []string{"done", "legacy"}, ids(d.History))
	assert.Contains(t, ids(d.Public), "public")
	for _, iv := range d.Public {
		assert.NotEqual(t, "u1", iv.UserID)
	}
}

func TestDashboardSurvivesSweepFailure(t *testing.T) {
	env := newTestEnv(t, slot.Add(time.Hour))
	env.store.add(scheduledInterview("missed", "u1", slot))
	env.store.expireErr = errors.New("transaction aborted")

	d, err := env.dashboard.Dashboard(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Expired)
	// still scheduled until a later sweep succeeds
	assert.Equal(t, []string{"missed"}, ids(d.Scheduled))
}

func TestDashboardReadFailure(t *testing.T) {
	env := newTestEnv(t, slot)
	env.store.finalizedErr = errors.New("read failed")

	d, err := env.dashboard.Dashboard(context.Background(), "u1")
	require.Error(t, err)
	assert.Nil(t, d)
}

func TestAnalytics(t *testing.T) {
	env := newTestEnv(t, slot)
	mk := func(id string, status models.InterviewStatus, typ string, offset time.Duration, tech ...string) {
		env.store.add(models.Interview{
			ID:        id,
			UserID:    "u1",
			Type:      typ,
			Techstack: tech,
			Status:    status,
			CreatedAt: slot.Add(offset),
		})
	}
	mk("a", models.StatusCompleted, "Technical", -1*time.Hour, "Go", "Redis")
	mk("b", "", "Technical", -2*time.Hour, "Go")
	mk("c", models.StatusInProgress, "Behavioral", -3*time.Hour, "React")
	mk("d", models.StatusScheduled, "Mixed", -4*time.Hour, "Go", "React")
	mk("e", models.StatusIncomplete, "Technical", -5*time.Hour)
	mk("f", models.StatusCompleted, "Technical", -6*time.Hour, "Kafka")
	env.store.add(models.Interview{ID: "other", UserID: "u2", Status: models.StatusCompleted, Techstack: []string{"Go"}})

	a, err := env.dashboard.Analytics(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 6, a.Total)
	assert.Equal(t, 3, a.Completed)
	assert.Equal(t, 1, a.InProgress)
	assert.Equal(t, 1, a.Scheduled)
	assert.Equal(t, 1, a.Incomplete)
	assert.Equal(t, map[string]int{"Technical": 4, "Behavioral": 1, "Mixed": 1}, a.TypeCounts)
	assert.Equal(t, []TechCount{
		{Name: "Go", Count: 3},
		{Name: "React", Count: 2},
		{Name: "Kafka", Count: 1},
		{Name: "Redis", Count: 1},
	}, a.TopTechstacks)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(a.Recent))
}

func TestTopTechstacksLimit(t *testing.T) {
	got := topTechstacks(map[string]int{"a": 1, "b": 2, "c": 3}, 2)
	assert.Equal(t, []TechCount{{Name: "c", Count: 3}, {Name: "b", Count: 2}}, got)
}
