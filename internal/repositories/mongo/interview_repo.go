package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prepwise/interview/internal/lifecycle"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InterviewRepo stores interviews in the interviews collection
type InterviewRepo struct {
	client *mongo.Client
	col    *mongo.Collection
}

var _ repositories.InterviewStore = (*InterviewRepo)(nil)

func NewInterviewRepo(c *Client) (*InterviewRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	return &InterviewRepo{client: c.raw, col: db.Collection(interviewsCollection)}, nil
}

// Create inserts a new interview and assigns its ID
func (r *InterviewRepo) Create(ctx context.Context, iv *models.Interview) (*models.Interview, error) {
	if iv.ID == "" {
		iv.ID = primitive.NewObjectID().Hex()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, iv); err != nil {
		return nil, fmt.Errorf("insert interview: %w", err)
	}
	return iv, nil
}

func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := r.col.FindOne(ctx, byID(id)).Decode(&iv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find interview %s: %w", id, err)
	}
	return &iv, nil
}

func (r *InterviewRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Interview, error) {
	return r.find(ctx, byUser(userID), newestFirst(limit))
}

func (r *InterviewRepo) ListFinalized(ctx context.Context, limit int64) ([]models.Interview, error) {
	return r.find(ctx, finalizedOnly(), newestFirst(limit))
}

func (r *InterviewRepo) ListByStatus(ctx context.Context, userID string, status models.InterviewStatus) ([]models.Interview, error) {
	return r.find(ctx, byUserAndStatus(userID, status))
}

func (r *InterviewRepo) TransitionStatus(ctx context.Context, id string, from, to models.InterviewStatus, startedAt *time.Time) (bool, error) {
	if err := lifecycle.CheckTransition(from, to); err != nil {
		return false, err
	}
	res, err := r.col.UpdateOne(ctx, byIDAndStatus(id, from), statusUpdate(to, startedAt))
	if err != nil {
		return false, fmt.Errorf("transition interview %s %s->%s: %w", id, from, to, err)
	}
	return res.MatchedCount > 0, nil
}

// ExpireBatch runs the incomplete update inside a transaction so the batch
// lands together or not at all. Transactions need a replica set or mongos;
// on a standalone server this returns an error. The transaction is run once,
// without the driver's transient error retries.
func (r *InterviewRepo) ExpireBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	var changed int64
	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		res, err := r.col.UpdateMany(sc, scheduledAmong(ids), statusUpdate(models.StatusIncomplete, nil))
		if err != nil {
			_ = sc.AbortTransaction(context.Background())
			return err
		}
		if err := sc.CommitTransaction(sc); err != nil {
			return err
		}
		changed = res.ModifiedCount
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expire interviews: %w", err)
	}
	return changed, nil
}

func (r *InterviewRepo) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find interviews: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode interviews: %w", err)
	}
	return out, nil
}
