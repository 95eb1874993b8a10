package mongo

import (
	"context"
	"errors"
	"regexp"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/repositories"
	"github.com/yoockh/mentorloop/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MenteesCollection = "mentees"

type menteeRepo struct {
	col *mongo.Collection
}

func NewMenteeRepo(db *mongo.Database) repositories.MenteeRepository {
	return &menteeRepo{col: db.Collection(MenteesCollection)}
}

func (r *menteeRepo) GetByID(ctx context.Context, id string) (*models.Mentee, error) {
	var m models.Mentee
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *menteeRepo) IncrementCompleted(ctx context.Context, id string) (int, error) {
	var out struct {
		CompletedSessions int `bson:"completed_sessions"`
	}
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"completed_sessions": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"completed_sessions": 1}),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, utils.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return out.CompletedSessions, nil
}

func (r *menteeRepo) AwardBadge(ctx context.Context, id string, b models.Badge) (bool, error) {
	// The filter only matches while no earned badge carries this title in any
	// case, so two concurrent awards append it once.
	title := primitive.Regex{
		Pattern: `^\s*` + regexp.QuoteMeta(b.Title) + `\s*$`,
		Options: "i",
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "earned_badges.title": bson.M{"$not": title}},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.D{
				{Key: "earned_badges", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$earned_badges", bson.A{}}}},
					bson.A{bson.D{
						{Key: "id", Value: b.ID},
						{Key: "title", Value: bson.D{{Key: "$literal", Value: b.Title}}},
						{Key: "earned", Value: b.Earned},
					}},
				}}}},
			}}},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
