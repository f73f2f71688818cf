// Package lifecycle decides what happens when a scheduled interview is
// entered or swept.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"prepwise/interview/internal/models"
)

// StartWindow is how long after its slot a scheduled interview may still be started
const StartWindow = 5 * time.Minute

type Outcome int

const (
	TooEarly Outcome = iota
	Startable
	Expired
)

func (o Outcome) String() string {
	switch o {
	case TooEarly:
		return "too-early"
	case Startable:
		return "startable"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Evaluate classifies now against the slot starting at scheduledFor.
// Both window boundaries are startable.
func Evaluate(scheduledFor, now time.Time) Outcome {
	if now.Before(scheduledFor) {
		return TooEarly
	}
	if now.After(scheduledFor.Add(StartWindow)) {
		return Expired
	}
	return Startable
}

var transitions = map[models.InterviewStatus][]models.InterviewStatus{
	models.StatusScheduled:  {models.StatusInProgress, models.StatusIncomplete},
	models.StatusInProgress: {models.StatusCompleted},
}

// CanTransition reports whether from -> to is an allowed status move
func CanTransition(from, to models.InterviewStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned for status moves the lifecycle never makes
var ErrInvalidTransition = errors.New("invalid status transition")

// CheckTransition returns ErrInvalidTransition unless both statuses are known
// and from -> to is an allowed move
func CheckTransition(from, to models.InterviewStatus) error {
	if !from.IsValid() || !to.IsValid() || !CanTransition(from, to) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return nil
}
