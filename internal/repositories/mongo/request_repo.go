package mongo

import (
	"context"
	"errors"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const RequestsCollection = "mentorship_requests"

type requestRepo struct {
	col *mongo.Collection
}

func NewMentorshipRequestRepo(db *mongo.Database) repositories.MentorshipRequestRepository {
	return &requestRepo{col: db.Collection(RequestsCollection)}
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	var req models.MentorshipRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) AttachSession(ctx context.Context, requestID, sessionID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": requestID},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.D{
				{Key: "session_ids", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$session_ids", bson.A{}}}},
					bson.A{sessionID},
				}}}},
				{Key: "status", Value: bson.D{{Key: "$literal", Value: models.RequestAccepted}}},
			}}},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
