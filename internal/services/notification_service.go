package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
)

// Notifier delivers in-app notifications. Delivery failures are logged and
// never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, recipientID, message string)
}

type notifier struct {
	repo repositories.NotificationRepository
	log  *logrus.Logger
}

func NewNotifier(repo repositories.NotificationRepository, log *logrus.Logger) Notifier {
	return &notifier{repo: repo, log: log}
}

func (n *notifier) Notify(ctx context.Context, recipientID, message string) {
	if recipientID == "" {
		return
	}
	err := n.repo.Insert(ctx, &models.Notification{
		RecipientID: recipientID,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		n.log.WithError(err).WithField("recipient_id", recipientID).Warn("notification not stored")
	}
}
