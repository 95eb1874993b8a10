package mongo

import (
	"context"
	"errors"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MentorsCollection = "mentors"

type mentorRepo struct {
	col *mongo.Collection
}

func NewMentorRepo(db *mongo.Database) repositories.MentorRepository {
	return &mentorRepo{col: db.Collection(MentorsCollection)}
}

func (r *mentorRepo) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	var m models.Mentor
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mentorRepo) UpdateCalendarCredential(ctx context.Context, id string, cred models.CalendarCredential) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"calendar": cred}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *mentorRepo) RecordCompletion(ctx context.Context, mentorID, menteeID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": mentorID},
		bson.M{"$inc": bson.M{"completed_sessions": 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}

	// mentee_history may be missing or null on older documents, so append
	// through a pipeline instead of $addToSet.
	_, err = r.col.UpdateOne(ctx,
		bson.M{"_id": mentorID, "mentee_history": bson.M{"$ne": menteeID}},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.D{
				{Key: "mentee_history", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$mentee_history", bson.A{}}}},
					bson.A{menteeID},
				}}}},
				{Key: "mentees_count", Value: bson.D{{Key: "$add", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$mentees_count", 0}}},
					1,
				}}}},
			}}},
		},
	)
	return err
}

func (r *mentorRepo) ApplyRating(ctx context.Context, mentorID string, rating int) (*models.Mentor, error) {
	// Legacy documents carry only average_rating and total_ratings; their
	// sum is reconstructed from the two.
	legacySum := bson.D{{Key: "$multiply", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$average_rating", 0}}},
		bson.D{{Key: "$ifNull", Value: bson.A{"$total_ratings", 0}}},
	}}}

	var m models.Mentor
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": mentorID},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.D{
				{Key: "total_ratings", Value: bson.D{{Key: "$add", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$total_ratings", 0}}},
					1,
				}}}},
				{Key: "rating_sum", Value: bson.D{{Key: "$add", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$rating_sum", legacySum}}},
					rating,
				}}}},
			}}},
			{{Key: "$set", Value: bson.D{
				{Key: "average_rating", Value: bson.D{{Key: "$divide", Value: bson.A{"$rating_sum", "$total_ratings"}}}},
			}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
