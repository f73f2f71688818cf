package models

import "time"

type InterviewStatus string

const (
	StatusScheduled  InterviewStatus = "scheduled"
	StatusInProgress InterviewStatus = "in-progress"
	StatusCompleted  InterviewStatus = "completed"
	StatusIncomplete InterviewStatus = "incomplete"
)

// IsValid reports whether s is one of the known statuses. The empty status
// of legacy documents is not valid for writes.
func (s InterviewStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusIncomplete:
		return true
	default:
		return false
	}
}

type ScheduleType string

const (
	ScheduleNow   ScheduleType = "now"
	ScheduleLater ScheduleType = "later"
)

// Interview is a generated mock interview stored in the interviews collection
type Interview struct {
	ID           string          `json:"id" bson:"_id,omitempty"`
	UserID       string          `json:"userId" bson:"userId"`
	Role         string          `json:"role" bson:"role"`
	Level        string          `json:"level" bson:"level"`
	Type         string          `json:"type" bson:"type"`
	Techstack    []string        `json:"techstack" bson:"techstack"`
	Questions    []string        `json:"questions" bson:"questions"`
	Finalized    bool            `json:"finalized" bson:"finalized"`
	CoverImage   string          `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	ScheduleType ScheduleType    `json:"scheduleType" bson:"scheduleType"`
	Status       InterviewStatus `json:"status,omitempty" bson:"status,omitempty"`
	ScheduledFor *time.Time      `json:"scheduledFor,omitempty" bson:"scheduledFor,omitempty"`
	StartedAt    *time.Time      `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt" bson:"createdAt"`
}

// EffectiveStatus reads a missing status as completed. Documents written
// before statuses existed never carry one.
func (i *Interview) EffectiveStatus() InterviewStatus {
	if i.Status == "" {
		return StatusCompleted
	}
	return i.Status
}

// InHistory reports whether the interview belongs in the user's history
// section, i.e. it is neither waiting for its slot nor missed.
func (i *Interview) InHistory() bool {
	switch i.EffectiveStatus() {
	case StatusScheduled, StatusIncomplete:
		return false
	default:
		return true
	}
}

// cover images shipped with the web client
var InterviewCovers = []string{
	"/covers/adobe.png",
	"/covers/amazon.png",
	"/covers/facebook.png",
	"/covers/hostinger.png",
	"/covers/pinterest.png",
	"/covers/quora.png",
	"/covers/reddit.png",
	"/covers/skype.png",
	"/covers/spotify.png",
	"/covers/telegram.png",
	"/covers/tiktok.png",
	"/covers/yahoo.png",
}
