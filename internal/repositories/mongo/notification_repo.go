package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

const NotificationsCollection = "notifications"

type notificationRepo struct {
	col *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) repositories.NotificationRepository {
	return &notificationRepo{col: db.Collection(NotificationsCollection)}
}

func (r *notificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, n)
	return err
}
