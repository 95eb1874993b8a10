package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"gorm.io/gorm"
)

type sessionEventRepo struct {
	db *gorm.DB
}

func NewSessionEventRepo(db *gorm.DB) repositories.SessionEventRepository {
	return &sessionEventRepo{db: db}
}

func (r *sessionEventRepo) Insert(ctx context.Context, ev *models.SessionEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *sessionEventRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.SessionEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []models.SessionEvent
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
