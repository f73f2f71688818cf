package models

import (
	"fmt"
	"strings"
	"time"
)

// fixed scoring categories, in display order
var FeedbackCategories = []string{
	"Communication Skills",
	"Technical Knowledge",
	"Problem-Solving",
	"Cultural & Role Fit",
	"Confidence & Clarity",
}

type CategoryScore struct {
	Name    string `json:"name" bson:"name"`
	Score   int    `json:"score" bson:"score"`
	Comment string `json:"comment" bson:"comment"`
}

// Feedback is the scored assessment of one interview attempt by one user
type Feedback struct {
	ID                  string          `json:"id" bson:"_id,omitempty"`
	InterviewID         string          `json:"interviewId" bson:"interviewId"`
	UserID              string          `json:"userId" bson:"userId"`
	TotalScore          int             `json:"totalScore" bson:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores" bson:"categoryScores"`
	Strengths           []string        `json:"strengths" bson:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement" bson:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment" bson:"finalAssessment"`
	CreatedAt           time.Time       `json:"createdAt" bson:"createdAt"`
}

// GeneratedFeedback is the object the feedback model must return
type GeneratedFeedback struct {
	TotalScore          int             `json:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment"`
}

// NormalizeCategoryScores returns the scores in FeedbackCategories order.
// Names are matched case-insensitively; every category must appear exactly once.
func NormalizeCategoryScores(scores []CategoryScore) ([]CategoryScore, error) {
	byName := make(map[string]CategoryScore, len(scores))
	for _, s := range scores {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("duplicate category %q", s.Name)
		}
		byName[key] = s
	}

	out := make([]CategoryScore, 0, len(FeedbackCategories))
	for _, name := range FeedbackCategories {
		s, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("missing category %q", name)
		}
		s.Name = name
		out = append(out, s)
	}
	if len(scores) != len(FeedbackCategories) {
		return nil, fmt.Errorf("expected %d categories, got %d", len(FeedbackCategories), len(scores))
	}
	return out, nil
}

type TranscriptTurn struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// FormatTranscript renders the turns as "- role: content" lines
func FormatTranscript(turns []TranscriptTurn) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "- %s: %s\n", t.Role, t.Content)
	}
	return b.String()
}
