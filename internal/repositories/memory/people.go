package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
)

var (
	_ repositories.MentorRepository = (*MentorStore)(nil)
	_ repositories.MenteeRepository = (*MenteeStore)(nil)
)

type MentorStore struct {
	mu      sync.RWMutex
	mentors map[string]*models.Mentor
}

func NewMentorStore() *MentorStore {
	return &MentorStore{mentors: make(map[string]*models.Mentor)}
}

// Put inserts or replaces a mentor.
func (s *MentorStore) Put(m models.Mentor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentors[m.ID] = cloneMentor(&m)
}

func (s *MentorStore) GetByID(_ context.Context, id string) (*models.Mentor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mentors[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return cloneMentor(m), nil
}

func (s *MentorStore) UpdateCalendarCredential(_ context.Context, id string, cred models.CalendarCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentors[id]
	if !ok {
		return utils.ErrNotFound
	}
	m.Calendar = &cred
	return nil
}

func (s *MentorStore) RecordCompletion(_ context.Context, mentorID, menteeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentors[mentorID]
	if !ok {
		return utils.ErrNotFound
	}
	m.CompletedSessions++
	if !slices.Contains(m.MenteeHistory, menteeID) {
		m.MenteeHistory = append(m.MenteeHistory, menteeID)
		m.MenteesCount++
	}
	return nil
}

func (s *MentorStore) ApplyRating(_ context.Context, mentorID string, rating int) (*models.Mentor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentors[mentorID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if m.RatingSum == 0 && m.TotalRatings > 0 {
		m.RatingSum = m.AverageRating * float64(m.TotalRatings)
	}
	m.TotalRatings++
	m.RatingSum += float64(rating)
	m.AverageRating = m.RatingSum / float64(m.TotalRatings)
	return cloneMentor(m), nil
}

func cloneMentor(m *models.Mentor) *models.Mentor {
	out := *m
	out.MenteeHistory = slices.Clone(m.MenteeHistory)
	if m.Calendar != nil {
		c := *m.Calendar
		out.Calendar = &c
	}
	if m.WorkingHours != nil {
		wh := *m.WorkingHours
		out.WorkingHours = &wh
	}
	return &out
}

type MenteeStore struct {
	mu      sync.RWMutex
	mentees map[string]*models.Mentee
}

func NewMenteeStore() *MenteeStore {
	return &MenteeStore{mentees: make(map[string]*models.Mentee)}
}

// Put inserts or replaces a mentee.
func (s *MenteeStore) Put(m models.Mentee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.EarnedBadges = slices.Clone(m.EarnedBadges)
	s.mentees[m.ID] = &m
}

func (s *MenteeStore) GetByID(_ context.Context, id string) (*models.Mentee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mentees[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	out := *m
	out.EarnedBadges = slices.Clone(m.EarnedBadges)
	return &out, nil
}

func (s *MenteeStore) IncrementCompleted(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentees[id]
	if !ok {
		return 0, utils.ErrNotFound
	}
	m.CompletedSessions++
	return m.CompletedSessions, nil
}

func (s *MenteeStore) AwardBadge(_ context.Context, id string, b models.Badge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mentees[id]
	if !ok {
		return false, nil
	}
	want := strings.TrimSpace(b.Title)
	for _, e := range m.EarnedBadges {
		if strings.EqualFold(strings.TrimSpace(e.Title), want) {
			return false, nil
		}
	}
	m.EarnedBadges = append(m.EarnedBadges, b)
	return true, nil
}
