// Package lifecycle holds the session state machine: which transitions are
// legal, who may trigger them, and how the actual-time fields are derived.
// It mutates sessions in memory only; persistence and side effects live in
// the services package.
package lifecycle

import (
	"math"
	"strings"
	"time"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/utils"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Start moves a scheduled session to active. It returns changed=false for a
// session that is already active.
func Start(s *models.Session, actorID string, now time.Time) (changed bool, err error) {
	const op = "lifecycle.Start"

	if !s.IsParticipant(actorID) {
		return false, utils.E(utils.CodeForbidden, op, "only session participants can start this session", nil)
	}

	switch s.Status {
	case models.SessionCompleted:
		return false, utils.E(utils.CodeInvalidTransition, op, "cannot start a completed session", nil)
	case models.SessionActive:
		return false, nil
	}

	s.Status = models.SessionActive
	if s.ActualStart == nil {
		t := now.UTC()
		s.ActualStart = &t
	}
	s.UpdatedAt = now.UTC()
	return true, nil
}

// Complete closes a session on behalf of its mentor. A completed session is
// returned unchanged.
func Complete(s *models.Session, actorID string, now time.Time) (changed bool, err error) {
	const op = "lifecycle.Complete"

	if actorID == "" || actorID != s.MentorID {
		return false, utils.E(utils.CodeForbidden, op, "only the assigned mentor can complete this session", nil)
	}
	return ForceComplete(s, now), nil
}

// ForceComplete closes a session without an actor check. It is the terminal
// transition used by both explicit completion and the expiry sweep.
func ForceComplete(s *models.Session, now time.Time) (changed bool) {
	if s.Status == models.SessionCompleted {
		return false
	}

	end := now.UTC()
	start := s.ScheduledAt.UTC()
	if s.ActualStart != nil {
		start = s.ActualStart.UTC()
	}
	minutes := DurationMinutes(start, end)

	s.ActualStart = &start
	s.ActualEnd = &end
	s.ActualDurationMinutes = &minutes
	s.Status = models.SessionCompleted
	s.UpdatedAt = end
	return true
}

// DurationMinutes is round((end-start)/1m), half away from zero.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(float64(end.Sub(start)) / float64(time.Minute)))
}

// CheckRecap validates that actorID may write the recap for side.
func CheckRecap(s *models.Session, side models.RecapSide, actorID string) error {
	const op = "lifecycle.CheckRecap"

	if !side.Valid() {
		return utils.E(utils.CodeInvalidArgument, op, "recap side must be mentor or mentee", nil)
	}
	if string(s.RoleOf(actorID)) != string(side) {
		return utils.E(utils.CodeForbidden, op, "only the "+string(side)+" can write this recap", nil)
	}
	return nil
}

// ApplyRecap writes text to the chosen side; last write wins.
func ApplyRecap(s *models.Session, side models.RecapSide, text string, now time.Time) {
	text = strings.TrimSpace(text)
	if side == models.RecapMentor {
		s.RecapMentor = text
	} else {
		s.RecapMentee = text
	}
	s.UpdatedAt = now.UTC()
}

// CheckRating validates a mentee rating before it is persisted.
func CheckRating(s *models.Session, actorID string, value int) error {
	const op = "lifecycle.CheckRating"

	if actorID == "" || actorID != s.MenteeID {
		return utils.E(utils.CodeForbidden, op, "only the session mentee can rate this session", nil)
	}
	if value < MinRating || value > MaxRating {
		return utils.E(utils.CodeInvalidArgument, op, "rating must be between 1 and 5", nil)
	}
	if s.MenteeRated {
		return utils.E(utils.CodeAlreadyRated, op, "you have already rated this session", nil)
	}
	return nil
}
