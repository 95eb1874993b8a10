package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongorepo "github.com/yoockh/mentorloop/internal/repositories/mongo"
)

func EnsureMongoIndexes(ctx context.Context) error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection(mongorepo.SessionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		// expiry sweep: status + scheduled_at range
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("by_status_scheduled"),
		},
		// upcoming lists
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("by_mentor_scheduled"),
		},
		{
			Keys:    bson.D{{Key: "mentee_id", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("by_mentee_scheduled"),
		},
		// history lists
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "actual_end", Value: -1}},
			Options: options.Index().SetName("by_mentor_history"),
		},
		{
			Keys:    bson.D{{Key: "mentee_id", Value: 1}, {Key: "status", Value: 1}, {Key: "actual_end", Value: -1}},
			Options: options.Index().SetName("by_mentee_history"),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(mongorepo.NotificationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_recipient_created"),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(mongorepo.RequestsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "mentee_id", Value: 1}},
			Options: options.Index().SetName("by_pair"),
		},
	})
	return err
}
