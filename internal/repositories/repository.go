package repositories

import (
	"context"
	"time"

	"prepwise/interview/internal/models"
)

// InterviewStore persists interviews. Lookups that find nothing return a nil
// interview and a nil error.
type InterviewStore interface {
	Create(ctx context.Context, interview *models.Interview) (*models.Interview, error)
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	// newest first; limit <= 0 means no limit
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Interview, error)
	// newest first
	ListFinalized(ctx context.Context, limit int64) ([]models.Interview, error)
	// fetch order, unsorted
	ListByStatus(ctx context.Context, userID string, status models.InterviewStatus) ([]models.Interview, error)
	// TransitionStatus moves id from one status to another only if it is
	// still in from. It reports whether a record was updated.
	TransitionStatus(ctx context.Context, id string, from, to models.InterviewStatus, startedAt *time.Time) (bool, error)
	// ExpireBatch marks the given scheduled interviews incomplete in one
	// atomic write and returns how many changed.
	ExpireBatch(ctx context.Context, ids []string) (int64, error)
}

type FeedbackStore interface {
	// Save replaces the record with feedback.ID when set, otherwise inserts
	// a new record and assigns its ID. A replacement only matches a record
	// with the same interview and user.
	Save(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error)
	FindByID(ctx context.Context, id string) (*models.Feedback, error)
	// newest first when the user has several records for the interview
	FindByInterview(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Feedback, error)
}
