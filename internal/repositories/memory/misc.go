package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
)

var (
	_ repositories.MentorshipRequestRepository = (*RequestStore)(nil)
	_ repositories.NotificationRepository      = (*NotificationStore)(nil)
	_ repositories.SessionEventRepository      = (*EventStore)(nil)
)

type RequestStore struct {
	mu       sync.RWMutex
	requests map[string]*models.MentorshipRequest
}

func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[string]*models.MentorshipRequest)}
}

// Put inserts or replaces a request.
func (s *RequestStore) Put(r models.MentorshipRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.SessionIDs = slices.Clone(r.SessionIDs)
	s.requests[r.ID] = &r
}

func (s *RequestStore) GetByID(_ context.Context, id string) (*models.MentorshipRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	out := *r
	out.SessionIDs = slices.Clone(r.SessionIDs)
	return &out, nil
}

func (s *RequestStore) AttachSession(_ context.Context, requestID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok {
		return utils.ErrNotFound
	}
	r.SessionIDs = append(r.SessionIDs, sessionID)
	r.Status = models.RequestAccepted
	return nil
}

type NotificationStore struct {
	mu    sync.RWMutex
	items []models.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, *n)
	return nil
}

// ForRecipient returns the notifications addressed to userID in insertion order.
func (s *NotificationStore) ForRecipient(userID string) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Notification
	for _, n := range s.items {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out
}

type EventStore struct {
	mu     sync.RWMutex
	events []models.SessionEvent
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Insert(_ context.Context, ev *models.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	s.events = append(s.events, *ev)
	return nil
}

func (s *EventStore) ListBySession(_ context.Context, sessionID string, limit int) ([]models.SessionEvent, error) {
	s.mu.RLock()
	var out []models.SessionEvent
	for _, ev := range s.events {
		if ev.SessionID == sessionID {
			out = append(out, ev)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
