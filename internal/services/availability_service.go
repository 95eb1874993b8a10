package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/internal/availability"
	"github.com/yoockh/mentorloop/internal/cache"
	"github.com/yoockh/mentorloop/internal/interval"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/providers/calendar"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
)

// SchedulingConfig is shared by availability and booking.
type SchedulingConfig struct {
	Location        *time.Location
	WorkingHours    availability.WorkingHours
	Slots           availability.Options
	CalendarTimeout time.Duration
	SlotCacheTTL    time.Duration
}

func (c SchedulingConfig) withDefaults() SchedulingConfig {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.WorkingHours == (availability.WorkingHours{}) {
		c.WorkingHours = availability.DefaultWorkingHours
	}
	if c.Slots.SlotLength <= 0 {
		c.Slots.SlotLength = availability.DefaultSlotLength
	}
	if c.CalendarTimeout <= 0 {
		c.CalendarTimeout = 10 * time.Second
	}
	return c
}

// hoursFor prefers the mentor's own working hours when they are usable.
func (c SchedulingConfig) hoursFor(m *models.Mentor) availability.WorkingHours {
	if m.WorkingHours != nil && m.WorkingHours.Validate() == nil {
		return *m.WorkingHours
	}
	return c.WorkingHours
}

func slotCacheKey(mentorID string) string { return "slots:" + mentorID }

type AvailabilityService interface {
	FreeSlots(ctx context.Context, mentorID string) ([]time.Time, error)
}

type availabilityService struct {
	mentors  repositories.MentorRepository
	calendar calendar.Provider
	cache    cache.Cache
	cfg      SchedulingConfig
	log      *logrus.Logger
	now      func() time.Time
}

// NewAvailabilityService builds the service; c may be nil to disable slot caching.
func NewAvailabilityService(
	mentors repositories.MentorRepository,
	cal calendar.Provider,
	c cache.Cache,
	cfg SchedulingConfig,
	log *logrus.Logger,
	now func() time.Time,
) AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &availabilityService{
		mentors:  mentors,
		calendar: cal,
		cache:    c,
		cfg:      cfg.withDefaults(),
		log:      log,
		now:      now,
	}
}

func (s *availabilityService) FreeSlots(ctx context.Context, mentorID string) ([]time.Time, error) {
	const op = "AvailabilityService.FreeSlots"

	mentor, err := loadMentor(ctx, s.mentors, op, mentorID)
	if err != nil {
		return nil, err
	}
	if !mentor.Calendar.Linked() {
		return nil, utils.E(utils.CodeCalendarNotLinked, op, "mentor has not linked a calendar", nil)
	}

	now := s.now().In(s.cfg.Location)

	if s.cache != nil && s.cfg.SlotCacheTTL > 0 {
		var cached []time.Time
		hit, err := s.cache.GetJSON(ctx, slotCacheKey(mentorID), &cached)
		if err != nil {
			s.log.WithError(err).WithField("mentor_id", mentorID).Warn("slot cache read failed")
		}
		if hit {
			return upcomingOnly(cached, now, s.cfg.Location), nil
		}
	}

	wh := s.cfg.hoursFor(mentor)
	busy, err := s.collectBusy(ctx, mentor, availability.DayBounds(wh, now, s.cfg.Slots))
	if err != nil {
		return nil, utils.E(utils.CodeExternalService, op, "calendar unavailable", err)
	}

	slots := availability.FreeSlots(wh, busy, now, s.cfg.Slots)
	if slots == nil {
		slots = []time.Time{}
	}

	if s.cache != nil && s.cfg.SlotCacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, slotCacheKey(mentorID), slots, s.cfg.SlotCacheTTL); err != nil {
			s.log.WithError(err).WithField("mentor_id", mentorID).Warn("slot cache write failed")
		}
	}
	return slots, nil
}

// collectBusy reads each day's busy periods. Any failure discards everything
// read so far; a rotated credential is persisted either way.
func (s *availabilityService) collectBusy(ctx context.Context, mentor *models.Mentor, days []interval.Interval) ([]interval.Interval, error) {
	cred := *mentor.Calendar
	rotated := false
	defer func() {
		if rotated {
			persistCredential(ctx, s.mentors, s.log, mentor.ID, cred)
		}
	}()

	var busy []interval.Interval
	for _, day := range days {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CalendarTimeout)
		periods, newCred, err := s.calendar.ListBusy(callCtx, cred, day)
		cancel()
		if newCred != nil {
			cred = *newCred
			rotated = true
		}
		if err != nil {
			return nil, err
		}
		for _, p := range periods {
			if !p.Valid() {
				return nil, errors.New("calendar returned a malformed busy period")
			}
		}
		busy = append(busy, periods...)
	}
	return busy, nil
}

func upcomingOnly(slots []time.Time, now time.Time, loc *time.Location) []time.Time {
	out := make([]time.Time, 0, len(slots))
	for _, t := range slots {
		if !t.Before(now) {
			out = append(out, t.In(loc))
		}
	}
	return out
}

func loadMentor(ctx context.Context, mentors repositories.MentorRepository, op, mentorID string) (*models.Mentor, error) {
	if mentorID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor_id is required", nil)
	}
	m, err := mentors.GetByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "mentor not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get mentor", err)
	}
	return m, nil
}

// persistCredential uses a detached context so a cancelled request still
// saves the token the provider already rotated.
func persistCredential(ctx context.Context, mentors repositories.MentorRepository, log *logrus.Logger, mentorID string, cred models.CalendarCredential) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := mentors.UpdateCalendarCredential(saveCtx, mentorID, cred); err != nil {
		log.WithError(err).WithField("mentor_id", mentorID).Error("rotated calendar credential not saved")
	}
}
