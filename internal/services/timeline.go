package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
)

// Timeline appends lifecycle events to the session event store. A nil
// repository turns it into a no-op; recording failures are only logged.
type Timeline struct {
	repo repositories.SessionEventRepository
	log  *logrus.Logger
}

func NewTimeline(repo repositories.SessionEventRepository, log *logrus.Logger) *Timeline {
	return &Timeline{repo: repo, log: log}
}

func (t *Timeline) Enabled() bool { return t != nil && t.repo != nil }

func (t *Timeline) Record(ctx context.Context, s *models.Session, kind models.SessionEventKind, actorID string, meta map[string]any) {
	if !t.Enabled() {
		return
	}

	ev := &models.SessionEvent{
		SessionID:    s.ID,
		Kind:         kind,
		ActorID:      actorID,
		Participants: []string{s.MentorID, s.MenteeID},
		OccurredAt:   time.Now().UTC(),
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			t.log.WithError(err).WithFields(logrus.Fields{
				"session_id": s.ID,
				"kind":       kind,
			}).Warn("session event metadata dropped")
		} else {
			ev.Metadata = datatypes.JSON(raw)
		}
	}

	if err := t.repo.Insert(ctx, ev); err != nil {
		t.log.WithError(err).WithFields(logrus.Fields{
			"session_id": s.ID,
			"kind":       kind,
		}).Warn("session event not recorded")
	}
}

func (t *Timeline) List(ctx context.Context, sessionID string, limit int) ([]models.SessionEvent, error) {
	if !t.Enabled() {
		return []models.SessionEvent{}, nil
	}
	return t.repo.ListBySession(ctx, sessionID, limit)
}
