// Package repositories declares the storage contracts used by the services.
// Implementations live in the mongo, memory and postgres subpackages.
//
// Every status change is a compare-and-set against the status the caller
// read, and every aggregate counter changes through an atomic increment, so
// concurrent request handlers and the expiry sweeper cannot double-apply.
package repositories

import (
	"context"
	"time"

	"github.com/yoockh/mentorloop/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	// GetByID returns utils.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// Transition persists s (status and actual-time fields) only if the
	// stored status still equals from. ok is false when another writer got
	// there first.
	Transition(ctx context.Context, s *models.Session, from models.SessionStatus) (ok bool, err error)

	SetRecap(ctx context.Context, id string, side models.RecapSide, text string, at time.Time) error
	// SetRating records the mentee rating only if the session is not rated
	// yet. ok is false when it already was.
	SetRating(ctx context.Context, id string, rating int, at time.Time) (ok bool, err error)

	// ListOverdue returns open sessions whose scheduled time is at or before
	// the cutoff for their status. Statuses absent from cutoffs are ignored.
	ListOverdue(ctx context.Context, cutoffs map[models.SessionStatus]time.Time, limit int64) ([]models.Session, error)
	ListUpcoming(ctx context.Context, userID string, role models.UserRole, from time.Time) ([]models.Session, error)
	ListHistory(ctx context.Context, userID string, role models.UserRole) ([]models.Session, error)
}

type MentorRepository interface {
	GetByID(ctx context.Context, id string) (*models.Mentor, error)
	UpdateCalendarCredential(ctx context.Context, id string, cred models.CalendarCredential) error

	// RecordCompletion increments completed_sessions and, when menteeID is
	// not yet in mentee_history, adds it and increments mentees_count.
	RecordCompletion(ctx context.Context, mentorID, menteeID string) error
	// ApplyRating folds one rating into the running average and returns the
	// updated mentor.
	ApplyRating(ctx context.Context, mentorID string, rating int) (*models.Mentor, error)
}

type MenteeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Mentee, error)
	// IncrementCompleted returns the completed-session count after the increment.
	IncrementCompleted(ctx context.Context, id string) (int, error)
	// AwardBadge appends b unless a badge with the same title (any case) is
	// already present. ok reports whether it was appended.
	AwardBadge(ctx context.Context, id string, b models.Badge) (ok bool, err error)
}

type MentorshipRequestRepository interface {
	GetByID(ctx context.Context, id string) (*models.MentorshipRequest, error)
	// AttachSession appends sessionID and marks the request accepted.
	AttachSession(ctx context.Context, requestID, sessionID string) error
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
}

type SessionEventRepository interface {
	Insert(ctx context.Context, ev *models.SessionEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.SessionEvent, error)
}
