// Package memory provides map-backed repositories with the same
// compare-and-set and increment semantics as the Mongo ones. Services are
// tested against these.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
)

var _ repositories.SessionRepository = (*SessionStore)(nil)

// SessionStore implements repositories.SessionRepository. Values are cloned on
// the way in and out so callers never share state with the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*models.Session)}
}

func (s *SessionStore) Create(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; ok {
		return fmt.Errorf("session %s already exists", sess.ID)
	}
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = sess.CreatedAt
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *SessionStore) GetByID(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *SessionStore) Transition(_ context.Context, next *models.Session, from models.SessionStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[next.ID]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = next.Status
	cur.UpdatedAt = next.UpdatedAt
	if next.ActualStart != nil {
		v := *next.ActualStart
		cur.ActualStart = &v
	}
	if next.ActualEnd != nil {
		v := *next.ActualEnd
		cur.ActualEnd = &v
	}
	if next.ActualDurationMinutes != nil {
		v := *next.ActualDurationMinutes
		cur.ActualDurationMinutes = &v
	}
	return true, nil
}

func (s *SessionStore) SetRecap(_ context.Context, id string, side models.RecapSide, text string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[id]
	if !ok {
		return utils.ErrNotFound
	}
	if side == models.RecapMentor {
		cur.RecapMentor = text
	} else {
		cur.RecapMentee = text
	}
	cur.UpdatedAt = at
	return nil
}

func (s *SessionStore) SetRating(_ context.Context, id string, rating int, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[id]
	if !ok || cur.MenteeRated {
		return false, nil
	}
	cur.MenteeRated = true
	cur.MenteeRating = &rating
	cur.UpdatedAt = at
	return true, nil
}

func (s *SessionStore) ListOverdue(_ context.Context, cutoffs map[models.SessionStatus]time.Time, limit int64) ([]models.Session, error) {
	if limit <= 0 {
		limit = 100
	}
	out := s.filter(func(sess *models.Session) bool {
		cutoff, ok := cutoffs[sess.Status]
		return ok && !sess.ScheduledAt.After(cutoff)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SessionStore) ListUpcoming(_ context.Context, userID string, role models.UserRole, from time.Time) ([]models.Session, error) {
	out := s.filter(func(sess *models.Session) bool {
		return sess.RoleOf(userID) == role &&
			sess.Status != models.SessionCompleted &&
			!sess.ScheduledAt.Before(from)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *SessionStore) ListHistory(_ context.Context, userID string, role models.UserRole) ([]models.Session, error) {
	out := s.filter(func(sess *models.Session) bool {
		return sess.RoleOf(userID) == role && sess.Status == models.SessionCompleted
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := endOf(out[i]), endOf(out[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].ScheduledAt.After(out[j].ScheduledAt)
	})
	return out, nil
}

func (s *SessionStore) filter(keep func(*models.Session) bool) []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Session
	for _, sess := range s.sessions {
		if keep(sess) {
			out = append(out, *sess.Clone())
		}
	}
	return out
}

func endOf(s models.Session) time.Time {
	if s.ActualEnd != nil {
		return *s.ActualEnd
	}
	return time.Time{}
}
