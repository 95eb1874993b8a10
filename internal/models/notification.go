package models

import "time"

type Notification struct {
	ID          string    `bson:"_id" json:"id"`
	RecipientID string    `bson:"recipient_id" json:"recipient_id"`
	Message     string    `bson:"message" json:"message"`
	Seen        bool      `bson:"seen" json:"seen"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
