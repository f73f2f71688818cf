package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedbackRepo stores feedback in the feedback collection
type FeedbackRepo struct{ col *mongo.Collection }

var _ repositories.FeedbackStore = (*FeedbackRepo)(nil)

func NewFeedbackRepo(c *Client) (*FeedbackRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	return &FeedbackRepo{col: db.Collection(feedbackCollection)}, nil
}

func (r *FeedbackRepo) Save(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	if fb.ID != "" {
		res, err := r.col.ReplaceOne(ctx, byIDAndOwner(fb.ID, fb.InterviewID, fb.UserID), fb)
		if err != nil {
			return nil, fmt.Errorf("replace feedback %s: %w", fb.ID, err)
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("replace feedback %s: %w", fb.ID, mongo.ErrNoDocuments)
		}
		return fb, nil
	}

	fb.ID = primitive.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, fb); err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}

func (r *FeedbackRepo) FindByID(ctx context.Context, id string) (*models.Feedback, error) {
	var fb models.Feedback
	err := r.col.FindOne(ctx, byID(id)).Decode(&fb)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find feedback %s: %w", id, err)
	}
	return &fb, nil
}

func (r *FeedbackRepo) FindByInterview(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	var fb models.Feedback
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.col.FindOne(ctx, byInterviewAndUser(interviewID, userID), opts).Decode(&fb)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find feedback for interview %s: %w", interviewID, err)
	}
	return &fb, nil
}

func (r *FeedbackRepo) ListSince(ctx context.Context, since time.Time) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.col.Find(ctx, createdSince(since), opts)
	if err != nil {
		return nil, fmt.Errorf("find feedback since %s: %w", since.Format(time.RFC3339), err)
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return out, nil
}
