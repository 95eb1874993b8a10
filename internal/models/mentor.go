package models

import (
	"time"

	"github.com/yoockh/mentorloop/internal/availability"
)

// CalendarCredential is the OAuth token pair a mentor linked for calendar access.
type CalendarCredential struct {
	AccessToken  string    `bson:"access_token" json:"-"`
	RefreshToken string    `bson:"refresh_token,omitempty" json:"-"`
	Expiry       time.Time `bson:"expiry,omitempty" json:"-"`
}

func (c *CalendarCredential) Linked() bool {
	return c != nil && (c.AccessToken != "" || c.RefreshToken != "")
}

type Mentor struct {
	ID       string `bson:"_id" json:"id"`
	FullName string `bson:"full_name" json:"full_name"`
	Email    string `bson:"email" json:"email"`

	CompletedSessions int      `bson:"completed_sessions" json:"completed_sessions"`
	MenteesCount      int      `bson:"mentees_count" json:"mentees_count"`
	MenteeHistory     []string `bson:"mentee_history" json:"mentee_history"`

	AverageRating float64 `bson:"average_rating" json:"average_rating"`
	TotalRatings  int     `bson:"total_ratings" json:"total_ratings"`
	RatingSum     float64 `bson:"rating_sum" json:"-"`

	Calendar     *CalendarCredential        `bson:"calendar,omitempty" json:"-"`
	WorkingHours *availability.WorkingHours `bson:"working_hours,omitempty" json:"working_hours,omitempty"`
}
