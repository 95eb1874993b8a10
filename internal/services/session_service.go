package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/internal/lifecycle"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
)

// A lost compare-and-set means another writer moved the session; the
// transition is re-evaluated against the fresh state a bounded number of times.
const maxTransitionAttempts = 3

// completionTimeout bounds the side effects that follow a won transition.
const completionTimeout = 15 * time.Second

type RatingResult struct {
	Session       *models.Session `json:"session"`
	AverageRating float64         `json:"average_rating"`
	TotalRatings  int             `json:"total_ratings"`
}

type SessionService interface {
	Get(ctx context.Context, sessionID, actorID string) (*models.Session, error)
	Start(ctx context.Context, sessionID, actorID string) (*models.Session, error)
	Complete(ctx context.Context, sessionID, actorID string) (*models.Session, error)
	// Expire force-completes an overdue session. completed reports whether
	// this call performed the transition.
	Expire(ctx context.Context, sessionID string) (s *models.Session, completed bool, err error)
	RecordRecap(ctx context.Context, sessionID, actorID string, side models.RecapSide, text string) (*models.Session, error)
	RecordRating(ctx context.Context, sessionID, actorID string, value int) (*RatingResult, error)
	ListUpcoming(ctx context.Context, userID string, role models.UserRole) ([]models.Session, error)
	ListHistory(ctx context.Context, userID string, role models.UserRole) ([]models.Session, error)
	Events(ctx context.Context, sessionID, actorID string) ([]models.SessionEvent, error)
}

type sessionService struct {
	sessions   repositories.SessionRepository
	mentors    repositories.MentorRepository
	completion *Completion
	timeline   *Timeline
	log        *logrus.Logger
	now        func() time.Time
}

func NewSessionService(
	sessions repositories.SessionRepository,
	mentors repositories.MentorRepository,
	completion *Completion,
	timeline *Timeline,
	log *logrus.Logger,
	now func() time.Time,
) SessionService {
	if now == nil {
		now = time.Now
	}
	return &sessionService{
		sessions:   sessions,
		mentors:    mentors,
		completion: completion,
		timeline:   timeline,
		log:        log,
		now:        now,
	}
}

func (s *sessionService) Get(ctx context.Context, sessionID, actorID string) (*models.Session, error) {
	const op = "SessionService.Get"

	ss, err := s.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if !ss.IsParticipant(actorID) {
		return nil, utils.E(utils.CodeForbidden, op, "not a participant of this session", nil)
	}
	return ss, nil
}

func (s *sessionService) Start(ctx context.Context, sessionID, actorID string) (*models.Session, error) {
	const op = "SessionService.Start"

	out, changed, err := s.transition(ctx, op, sessionID, func(ss *models.Session, now time.Time) (bool, error) {
		return lifecycle.Start(ss, actorID, now)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.timeline.Record(ctx, out, models.EventStarted, actorID, nil)
	}
	return out, nil
}

func (s *sessionService) Complete(ctx context.Context, sessionID, actorID string) (*models.Session, error) {
	const op = "SessionService.Complete"

	out, changed, err := s.transition(ctx, op, sessionID, func(ss *models.Session, now time.Time) (bool, error) {
		return lifecycle.Complete(ss, actorID, now)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.afterCompletion(ctx, out, models.EventCompleted, actorID)
	}
	return out, nil
}

func (s *sessionService) Expire(ctx context.Context, sessionID string) (*models.Session, bool, error) {
	const op = "SessionService.Expire"

	out, changed, err := s.transition(ctx, op, sessionID, func(ss *models.Session, now time.Time) (bool, error) {
		return lifecycle.ForceComplete(ss, now), nil
	})
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return out, false, nil
	}
	if err := s.afterCompletion(ctx, out, models.EventAutoCompleted, ""); err != nil {
		return out, true, utils.E(utils.CodeInternal, op, "completion side effects failed", err)
	}
	return out, true, nil
}

// afterCompletion runs the shared completion routine. The session is already
// completed in storage, so failures are logged and returned, never rolled back.
// It runs detached from the caller: a completed session is never revisited, so
// a disconnect or shutdown here would lose the side effects for good.
func (s *sessionService) afterCompletion(ctx context.Context, ss *models.Session, kind models.SessionEventKind, actorID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completionTimeout)
	defer cancel()

	err := s.completion.Run(ctx, ss)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"session_id": ss.ID,
			"mentor_id":  ss.MentorID,
			"mentee_id":  ss.MenteeID,
		}).Error("completion side effects partially failed")
	}

	meta := map[string]any{}
	if ss.ActualDurationMinutes != nil {
		meta["actual_duration_minutes"] = *ss.ActualDurationMinutes
	}
	s.timeline.Record(ctx, ss, kind, actorID, meta)
	return err
}

// transition loads the session, applies fn to a copy and persists it with a
// compare-and-set on the status that was read.
func (s *sessionService) transition(ctx context.Context, op, sessionID string, fn func(*models.Session, time.Time) (bool, error)) (*models.Session, bool, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		cur, err := s.load(ctx, op, sessionID)
		if err != nil {
			return nil, false, err
		}

		next := cur.Clone()
		changed, err := fn(next, s.now().UTC())
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return cur, false, nil
		}

		ok, err := s.sessions.Transition(ctx, next, cur.Status)
		if err != nil {
			return nil, false, utils.E(utils.CodeInternal, op, "failed to update session", err)
		}
		if ok {
			return next, true, nil
		}
	}
	return nil, false, utils.E(utils.CodeInternal, op, "session changed concurrently, try again", nil)
}

func (s *sessionService) RecordRecap(ctx context.Context, sessionID, actorID string, side models.RecapSide, text string) (*models.Session, error) {
	const op = "SessionService.RecordRecap"

	ss, err := s.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckRecap(ss, side, actorID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	lifecycle.ApplyRecap(ss, side, text, now)
	recap := ss.RecapMentee
	if side == models.RecapMentor {
		recap = ss.RecapMentor
	}
	if err := s.sessions.SetRecap(ctx, ss.ID, side, recap, now); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to save recap", err)
	}

	s.timeline.Record(ctx, ss, models.EventRecap, actorID, map[string]any{"side": side})
	return ss, nil
}

func (s *sessionService) RecordRating(ctx context.Context, sessionID, actorID string, value int) (*RatingResult, error) {
	const op = "SessionService.RecordRating"

	ss, err := s.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckRating(ss, actorID, value); err != nil {
		return nil, err
	}

	// The session flag is claimed first; only the winner touches the mentor
	// aggregate, so a repeated or concurrent rating cannot move the average.
	now := s.now().UTC()
	ok, err := s.sessions.SetRating(ctx, ss.ID, value, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save rating", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeAlreadyRated, op, "session already rated", nil)
	}
	ss.MenteeRated = true
	ss.MenteeRating = &value
	ss.UpdatedAt = now

	mentor, err := s.mentors.ApplyRating(ctx, ss.MentorID, value)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"session_id": ss.ID,
			"mentor_id":  ss.MentorID,
			"rating":     value,
		}).Error("session rated but mentor average not updated")
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "mentor not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update mentor rating", err)
	}

	s.timeline.Record(ctx, ss, models.EventRated, actorID, map[string]any{"rating": value})
	return &RatingResult{
		Session:       ss,
		AverageRating: mentor.AverageRating,
		TotalRatings:  mentor.TotalRatings,
	}, nil
}

func (s *sessionService) ListUpcoming(ctx context.Context, userID string, role models.UserRole) ([]models.Session, error) {
	const op = "SessionService.ListUpcoming"

	if err := checkLister(op, userID, role); err != nil {
		return nil, err
	}
	out, err := s.sessions.ListUpcoming(ctx, userID, role, s.now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return nonNil(out), nil
}

func (s *sessionService) ListHistory(ctx context.Context, userID string, role models.UserRole) ([]models.Session, error) {
	const op = "SessionService.ListHistory"

	if err := checkLister(op, userID, role); err != nil {
		return nil, err
	}
	out, err := s.sessions.ListHistory(ctx, userID, role)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return nonNil(out), nil
}

func (s *sessionService) Events(ctx context.Context, sessionID, actorID string) ([]models.SessionEvent, error) {
	const op = "SessionService.Events"

	if _, err := s.Get(ctx, sessionID, actorID); err != nil {
		return nil, err
	}
	out, err := s.timeline.List(ctx, sessionID, 0)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list session events", err)
	}
	return out, nil
}

func (s *sessionService) load(ctx context.Context, op, sessionID string) (*models.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return out, nil
}

func checkLister(op, userID string, role models.UserRole) error {
	if userID == "" {
		return utils.E(utils.CodeUnauthorized, op, "missing user", nil)
	}
	if role != models.RoleMentor && role != models.RoleMentee {
		return utils.E(utils.CodeInvalidArgument, op, "role must be mentor or mentee", nil)
	}
	return nil
}

func nonNil(in []models.Session) []models.Session {
	if in == nil {
		return []models.Session{}
	}
	return in
}
