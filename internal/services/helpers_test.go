package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/internal/interval"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/providers/calendar"
	"github.com/yoockh/mentorloop/internal/repositories/memory"
)

const (
	testMentor  = "mentor-1"
	testMentee  = "mentee-1"
	testRequest = "req-1"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakeCalendar struct {
	mu        sync.Mutex
	busy      []interval.Interval
	listErr   error
	createErr error
	rotate    *models.CalendarCredential
	listCalls int
	created   []calendar.EventRequest
	usedCreds []models.CalendarCredential
}

func (f *fakeCalendar) ListBusy(_ context.Context, cred models.CalendarCredential, window interval.Interval) ([]interval.Interval, *models.CalendarCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	f.usedCreds = append(f.usedCreds, cred)
	if f.listErr != nil {
		return nil, f.rotate, f.listErr
	}
	var out []interval.Interval
	for _, b := range f.busy {
		if b.Overlaps(window) {
			out = append(out, b)
		}
	}
	return out, f.rotate, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, cred models.CalendarCredential, req calendar.EventRequest) (*calendar.Event, *models.CalendarCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.usedCreds = append(f.usedCreds, cred)
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.rotate, f.createErr
	}
	ev := &calendar.Event{ID: "evt-" + req.RequestID}
	if req.WantVideoLink {
		ev.MeetingLink = "https://meet.example.com/" + req.RequestID
	}
	return ev, f.rotate, nil
}

type stores struct {
	sessions      *memory.SessionStore
	mentors       *memory.MentorStore
	mentees       *memory.MenteeStore
	requests      *memory.RequestStore
	notifications *memory.NotificationStore
	events        *memory.EventStore
}

func newStores() *stores {
	st := &stores{
		sessions:      memory.NewSessionStore(),
		mentors:       memory.NewMentorStore(),
		mentees:       memory.NewMenteeStore(),
		requests:      memory.NewRequestStore(),
		notifications: memory.NewNotificationStore(),
		events:        memory.NewEventStore(),
	}
	st.mentors.Put(models.Mentor{
		ID:       testMentor,
		FullName: "Asha Mentor",
		Email:    "mentor@example.com",
		Calendar: &models.CalendarCredential{AccessToken: "access-1", RefreshToken: "refresh-1"},
	})
	st.mentees.Put(models.Mentee{ID: testMentee, FullName: "Ravi Mentee", Email: "mentee@example.com"})
	st.requests.Put(models.MentorshipRequest{
		ID:       testRequest,
		MentorID: testMentor,
		MenteeID: testMentee,
		Status:   models.RequestPending,
	})
	return st
}

func (st *stores) sessionService(clock *fixedClock) SessionService {
	log := testLogger()
	return NewSessionService(
		st.sessions,
		st.mentors,
		NewCompletion(st.mentors, st.mentees, nil, log),
		NewTimeline(st.events, log),
		log,
		clock.Now,
	)
}
