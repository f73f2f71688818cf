// Package events announces interview status changes and new feedback to
// other services over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"time"

	"prepwise/interview/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ChannelStatusChanged   = "interview_status_changed"
	ChannelFeedbackCreated = "feedback_created"
)

type StatusChanged struct {
	InterviewID string                 `json:"interviewId"`
	UserID      string                 `json:"userId"`
	From        models.InterviewStatus `json:"from"`
	To          models.InterviewStatus `json:"to"`
	At          time.Time              `json:"at"`
}

type FeedbackCreated struct {
	FeedbackID  string    `json:"feedbackId"`
	InterviewID string    `json:"interviewId"`
	UserID      string    `json:"userId"`
	TotalScore  int       `json:"totalScore"`
	At          time.Time `json:"at"`
}

// Publisher delivers events on a best effort basis; failures are logged and
// never returned to callers
type Publisher interface {
	StatusChanged(ctx context.Context, ev StatusChanged)
	FeedbackCreated(ctx context.Context, ev FeedbackCreated)
}

type RedisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

func (p *RedisPublisher) StatusChanged(ctx context.Context, ev StatusChanged) {
	p.publish(ctx, ChannelStatusChanged, ev)
}

func (p *RedisPublisher) FeedbackCreated(ctx context.Context, ev FeedbackCreated) {
	p.publish(ctx, ChannelFeedbackCreated, ev)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, ev any) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.Warn("failed to publish event", zap.String("channel", channel), zap.Error(err))
	}
}

// Nop drops every event
type Nop struct{}

func (Nop) StatusChanged(context.Context, StatusChanged)     {}
func (Nop) FeedbackCreated(context.Context, FeedbackCreated) {}
