package mongo

import (
	"time"

	"prepwise/interview/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func byUser(userID string) bson.D {
	return bson.D{{Key: "userId", Value: userID}}
}

func byUserAndStatus(userID string, status models.InterviewStatus) bson.D {
	return bson.D{{Key: "userId", Value: userID}, {Key: "status", Value: status}}
}

func finalizedOnly() bson.D {
	return bson.D{{Key: "finalized", Value: true}}
}

// conditional filter for a status move
func byIDAndStatus(id string, status models.InterviewStatus) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "status", Value: status}}
}

func scheduledAmong(ids []string) bson.D {
	return bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
		{Key: "status", Value: models.StatusScheduled},
	}
}

func statusUpdate(to models.InterviewStatus, startedAt *time.Time) bson.D {
	set := bson.D{{Key: "status", Value: to}}
	if startedAt != nil {
		set = append(set, bson.E{Key: "startedAt", Value: startedAt.UTC()})
	}
	return bson.D{{Key: "$set", Value: set}}
}

// a feedback record only matches its own interview and user
func byIDAndOwner(id, interviewID, userID string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "interviewId", Value: interviewID}, {Key: "userId", Value: userID}}
}

func byInterviewAndUser(interviewID, userID string) bson.D {
	return bson.D{{Key: "interviewId", Value: interviewID}, {Key: "userId", Value: userID}}
}

func createdSince(since time.Time) bson.D {
	return bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since.UTC()}}}}
}

func newestFirst(limit int64) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}
