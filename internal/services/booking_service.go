package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/internal/cache"
	"github.com/yoockh/mentorloop/internal/interval"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/providers/calendar"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
)

type BookingRequest struct {
	MentorID            string
	ActorID             string
	MentorshipRequestID string
	SlotStart           time.Time
	Medium              models.SessionMedium
}

type BookingService interface {
	Book(ctx context.Context, req BookingRequest) (*models.Session, error)
}

type bookingService struct {
	mentors  repositories.MentorRepository
	mentees  repositories.MenteeRepository
	requests repositories.MentorshipRequestRepository
	sessions repositories.SessionRepository
	calendar calendar.Provider
	notifier Notifier
	timeline *Timeline
	cache    cache.Cache
	cfg      SchedulingConfig
	log      *logrus.Logger
	now      func() time.Time
}

type BookingDeps struct {
	Mentors  repositories.MentorRepository
	Mentees  repositories.MenteeRepository
	Requests repositories.MentorshipRequestRepository
	Sessions repositories.SessionRepository
	Calendar calendar.Provider
	Notifier Notifier
	Timeline *Timeline
	Cache    cache.Cache
	Log      *logrus.Logger
	Now      func() time.Time
}

func NewBookingService(d BookingDeps, cfg SchedulingConfig) BookingService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &bookingService{
		mentors:  d.Mentors,
		mentees:  d.Mentees,
		requests: d.Requests,
		sessions: d.Sessions,
		calendar: d.Calendar,
		notifier: d.Notifier,
		timeline: d.Timeline,
		cache:    d.Cache,
		cfg:      cfg.withDefaults(),
		log:      d.Log,
		now:      d.Now,
	}
}

func (s *bookingService) Book(ctx context.Context, req BookingRequest) (*models.Session, error) {
	const op = "BookingService.Book"

	if !req.Medium.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "medium must be chat or video", nil)
	}
	if req.SlotStart.IsZero() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "slot start is required", nil)
	}
	now := s.now().UTC()
	if !req.SlotStart.After(now) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "slot start must be in the future", nil)
	}
	if req.MentorshipRequestID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentorship_request_id is required", nil)
	}

	mentor, err := loadMentor(ctx, s.mentors, op, req.MentorID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlot(op, mentor, req.SlotStart); err != nil {
		return nil, err
	}
	mreq, err := s.requests.GetByID(ctx, req.MentorshipRequestID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "mentorship request not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get mentorship request", err)
	}
	if mreq.MentorID != mentor.ID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentorship request belongs to another mentor", nil)
	}
	if req.ActorID != mreq.MenteeID && req.ActorID != mreq.MentorID {
		return nil, utils.E(utils.CodeForbidden, op, "not a party to this mentorship request", nil)
	}
	if mreq.Status == models.RequestRejected {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentorship request was rejected", nil)
	}
	mentee, err := s.mentees.GetByID(ctx, mreq.MenteeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "mentee not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get mentee", err)
	}
	if !mentor.Calendar.Linked() {
		return nil, utils.E(utils.CodeCalendarNotLinked, op, "mentor has not linked a calendar", nil)
	}

	session := &models.Session{
		ID:                  uuid.NewString(),
		MentorID:            mentor.ID,
		MenteeID:            mentee.ID,
		MentorshipRequestID: mreq.ID,
		ScheduledAt:         req.SlotStart.UTC(),
		Medium:              req.Medium,
		Status:              models.SessionScheduled,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	ev, err := s.createEvent(ctx, mentor, mentee, session)
	if err != nil {
		return nil, utils.E(utils.CodeExternalService, op, "calendar unavailable", err)
	}
	session.CalendarEventID = ev.ID
	session.MeetingLink = ev.MeetingLink

	if err := s.sessions.Create(ctx, session); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"session_id":        session.ID,
			"mentor_id":         mentor.ID,
			"calendar_event_id": ev.ID,
			"scheduled_at":      session.ScheduledAt,
		}).Error("session not persisted after calendar event was created; calendar event is orphaned")
		return nil, utils.E(utils.CodeInternal, op, "failed to save session", err)
	}
	log := s.log.WithFields(logrus.Fields{"session_id": session.ID, "mentor_id": mentor.ID})

	if err := s.requests.AttachSession(ctx, mreq.ID, session.ID); err != nil {
		log.WithError(err).WithField("mentorship_request_id", mreq.ID).Error("session not attached to mentorship request")
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, slotCacheKey(mentor.ID)); err != nil {
			log.WithError(err).Warn("slot cache not invalidated")
		}
	}

	s.notifier.Notify(ctx, counterParty(session, req.ActorID), fmt.Sprintf(
		"A new %s session has been scheduled for %s",
		session.Medium, session.ScheduledAt.In(s.cfg.Location).Format("Mon, 02 Jan 2006 15:04 MST"),
	))
	s.timeline.Record(ctx, session, models.EventBooked, req.ActorID, map[string]any{
		"medium":            session.Medium,
		"calendar_event_id": session.CalendarEventID,
	})

	log.WithField("scheduled_at", session.ScheduledAt).Info("session booked")
	return session, nil
}

// checkSlot rejects starts that no availability listing could have offered:
// off the minute grid, or running outside the mentor's working day. Starts
// are not forced onto the slot grid because free slots may begin where a
// busy block ends.
func (s *bookingService) checkSlot(op string, mentor *models.Mentor, start time.Time) error {
	local := start.In(s.cfg.Location)
	if local.Second() != 0 || local.Nanosecond() != 0 {
		return utils.E(utils.CodeInvalidArgument, op, "slot start must be on a whole minute", nil)
	}
	if !s.cfg.hoursFor(mentor).Fits(local, s.cfg.Slots.SlotLength) {
		return utils.E(utils.CodeInvalidArgument, op, "slot is outside the mentor's working hours", nil)
	}
	return nil
}

// createEvent calls the calendar and persists a rotated credential before
// returning, whatever the outcome.
func (s *bookingService) createEvent(ctx context.Context, mentor *models.Mentor, mentee *models.Mentee, session *models.Session) (*calendar.Event, error) {
	label := mediumLabel(session.Medium)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CalendarTimeout)
	defer cancel()

	ev, newCred, err := s.calendar.CreateEvent(callCtx, *mentor.Calendar, calendar.EventRequest{
		Summary:       label + " Mentorship Session",
		Description:   "Mentorship session via " + string(session.Medium),
		Window:        interval.New(session.ScheduledAt.In(s.cfg.Location), session.ScheduledAt.Add(s.cfg.Slots.SlotLength).In(s.cfg.Location)),
		TimeZone:      s.cfg.Location.String(),
		Attendees:     []string{mentor.Email, mentee.Email},
		WantVideoLink: session.Medium == models.MediumVideo,
		RequestID:     "meet-" + session.ID,
	})
	if newCred != nil {
		persistCredential(ctx, s.mentors, s.log, mentor.ID, *newCred)
	}
	if err != nil {
		return nil, err
	}
	if ev == nil || ev.ID == "" {
		return nil, errors.New("calendar returned no event id")
	}
	return ev, nil
}

func mediumLabel(m models.SessionMedium) string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

func counterParty(s *models.Session, actorID string) string {
	if actorID == s.MentorID {
		return s.MenteeID
	}
	return s.MentorID
}
