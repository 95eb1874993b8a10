package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SessionsCollection = "sessions"

type sessionRepo struct {
	col *mongo.Collection
	log *logrus.Logger
}

// NewSessionRepo logs to the standard logrus logger when log is nil.
func NewSessionRepo(db *mongo.Database, log *logrus.Logger) repositories.SessionRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &sessionRepo{col: db.Collection(SessionsCollection), log: log}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Transition(ctx context.Context, s *models.Session, from models.SessionStatus) (bool, error) {
	set := bson.M{
		"status":     s.Status,
		"updated_at": s.UpdatedAt.UTC(),
	}
	if s.ActualStart != nil {
		set["actual_start"] = s.ActualStart.UTC()
	}
	if s.ActualEnd != nil {
		set["actual_end"] = s.ActualEnd.UTC()
	}
	if s.ActualDurationMinutes != nil {
		set["actual_duration_minutes"] = *s.ActualDurationMinutes
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": s.ID, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *sessionRepo) SetRecap(ctx context.Context, id string, side models.RecapSide, text string, at time.Time) error {
	field := "recap_mentee"
	if side == models.RecapMentor {
		field = "recap_mentor"
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: text, "updated_at": at.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) SetRating(ctx context.Context, id string, rating int, at time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "mentee_rated": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"mentee_rated":  true,
			"mentee_rating": rating,
			"updated_at":    at.UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *sessionRepo) ListOverdue(ctx context.Context, cutoffs map[models.SessionStatus]time.Time, limit int64) ([]models.Session, error) {
	if len(cutoffs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	or := make(bson.A, 0, len(cutoffs))
	for status, cutoff := range cutoffs {
		or = append(or, bson.M{
			"status":       status,
			"scheduled_at": bson.M{"$lte": cutoff.UTC()},
		})
	}

	cur, err := r.col.Find(ctx,
		bson.M{"$or": or},
		options.Find().
			SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	// A document that no longer decodes is skipped so the rest of the
	// backlog can still be swept.
	var out []models.Session
	for cur.Next(ctx) {
		var s models.Session
		if err := cur.Decode(&s); err != nil {
			r.log.WithError(err).WithField("session_id", cur.Current.Lookup("_id").String()).
				Warn("overdue session skipped: document does not decode")
			continue
		}
		out = append(out, s)
	}
	return out, cur.Err()
}

func (r *sessionRepo) ListUpcoming(ctx context.Context, userID string, role models.UserRole, from time.Time) ([]models.Session, error) {
	field, err := participantField(role)
	if err != nil {
		return nil, err
	}
	return r.find(ctx,
		bson.M{
			field:          userID,
			"scheduled_at": bson.M{"$gte": from.UTC()},
			"status":       bson.M{"$ne": models.SessionCompleted},
		},
		options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}),
	)
}

func (r *sessionRepo) ListHistory(ctx context.Context, userID string, role models.UserRole) ([]models.Session, error) {
	field, err := participantField(role)
	if err != nil {
		return nil, err
	}
	return r.find(ctx,
		bson.M{field: userID, "status": models.SessionCompleted},
		options.Find().SetSort(bson.D{
			{Key: "actual_end", Value: -1},
			{Key: "scheduled_at", Value: -1},
		}),
	)
}

func (r *sessionRepo) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Session, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func participantField(role models.UserRole) (string, error) {
	switch role {
	case models.RoleMentor:
		return "mentor_id", nil
	case models.RoleMentee:
		return "mentee_id", nil
	default:
		return "", fmt.Errorf("unsupported role %q", role)
	}
}
