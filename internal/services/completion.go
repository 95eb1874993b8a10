package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/internal/lifecycle"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
)

// Completion applies the side effects of a session entering the completed
// state. Callers must run it only after winning the status compare-and-set,
// which is what keeps it to one application per session.
type Completion struct {
	mentors repositories.MentorRepository
	mentees repositories.MenteeRepository
	rules   []lifecycle.BadgeRule
	log     *logrus.Logger
}

func NewCompletion(mentors repositories.MentorRepository, mentees repositories.MenteeRepository, rules []lifecycle.BadgeRule, log *logrus.Logger) *Completion {
	if rules == nil {
		rules = lifecycle.DefaultBadgeRules
	}
	return &Completion{mentors: mentors, mentees: mentees, rules: rules, log: log}
}

// Run executes every step even when an earlier one fails and returns the
// failures joined.
func (c *Completion) Run(ctx context.Context, s *models.Session) error {
	var errs []error

	count, err := c.mentees.IncrementCompleted(ctx, s.MenteeID)
	if err != nil {
		errs = append(errs, fmt.Errorf("increment mentee %s: %w", s.MenteeID, err))
	} else {
		errs = append(errs, c.awardBadges(ctx, s.MenteeID, count)...)
	}

	if err := c.mentors.RecordCompletion(ctx, s.MentorID, s.MenteeID); err != nil {
		errs = append(errs, fmt.Errorf("record completion for mentor %s: %w", s.MentorID, err))
	}

	return errors.Join(errs...)
}

func (c *Completion) awardBadges(ctx context.Context, menteeID string, count int) []error {
	// The read only narrows the candidates; AwardBadge itself refuses duplicates.
	var earned []models.Badge
	if m, err := c.mentees.GetByID(ctx, menteeID); err == nil {
		earned = m.EarnedBadges
	}

	var errs []error
	for _, b := range lifecycle.DueBadges(c.rules, count, earned) {
		ok, err := c.mentees.AwardBadge(ctx, menteeID, b)
		if err != nil {
			errs = append(errs, fmt.Errorf("award badge %q: %w", b.Title, err))
			continue
		}
		if ok {
			c.log.WithFields(logrus.Fields{
				"mentee_id": menteeID,
				"badge":     b.Title,
			}).Info("badge awarded")
		}
	}
	return errs
}
