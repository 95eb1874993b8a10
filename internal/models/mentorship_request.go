package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type MentorshipRequest struct {
	ID         string        `bson:"_id" json:"id"`
	MenteeID   string        `bson:"mentee_id" json:"mentee_id"`
	MentorID   string        `bson:"mentor_id" json:"mentor_id"`
	Topic      string        `bson:"topic,omitempty" json:"topic,omitempty"`
	Status     RequestStatus `bson:"status" json:"status"` // pending|accepted|rejected
	SessionIDs []string      `bson:"session_ids" json:"session_ids"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}
