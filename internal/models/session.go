package models

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

type SessionMedium string

const (
	MediumChat  SessionMedium = "chat"
	MediumVideo SessionMedium = "video"
)

func (m SessionMedium) Valid() bool { return m == MediumChat || m == MediumVideo }

// RecapSide selects which participant's recap is written.
type RecapSide string

const (
	RecapMentor RecapSide = "mentor"
	RecapMentee RecapSide = "mentee"
)

func (s RecapSide) Valid() bool { return s == RecapMentor || s == RecapMentee }

type Session struct {
	ID                  string `bson:"_id" json:"id"` // uuid v4
	MentorID            string `bson:"mentor_id" json:"mentor_id"`
	MenteeID            string `bson:"mentee_id" json:"mentee_id"`
	MentorshipRequestID string `bson:"mentorship_request_id,omitempty" json:"mentorship_request_id,omitempty"`

	ScheduledAt time.Time     `bson:"scheduled_at" json:"scheduled_at"`
	Medium      SessionMedium `bson:"medium" json:"medium"` // chat|video

	CalendarEventID string `bson:"calendar_event_id,omitempty" json:"calendar_event_id,omitempty"`
	MeetingLink     string `bson:"meeting_link,omitempty" json:"meeting_link,omitempty"`

	Status                SessionStatus `bson:"status" json:"status"` // scheduled|active|completed
	ActualStart           *time.Time    `bson:"actual_start,omitempty" json:"actual_start,omitempty"`
	ActualEnd             *time.Time    `bson:"actual_end,omitempty" json:"actual_end,omitempty"`
	ActualDurationMinutes *int          `bson:"actual_duration_minutes,omitempty" json:"actual_duration_minutes,omitempty"`

	MenteeRated  bool `bson:"mentee_rated" json:"mentee_rated"`
	MenteeRating *int `bson:"mentee_rating,omitempty" json:"mentee_rating,omitempty"`

	RecapMentor string `bson:"recap_mentor" json:"recap_mentor"`
	RecapMentee string `bson:"recap_mentee" json:"recap_mentee"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether userID is the mentor or the mentee of s.
func (s *Session) IsParticipant(userID string) bool {
	return userID != "" && (userID == s.MentorID || userID == s.MenteeID)
}

// RoleOf returns the side userID is on, or "" when not a participant.
func (s *Session) RoleOf(userID string) UserRole {
	switch {
	case userID == "":
		return ""
	case userID == s.MentorID:
		return RoleMentor
	case userID == s.MenteeID:
		return RoleMentee
	}
	return ""
}

// Clone returns a deep copy so callers can mutate without sharing pointers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.ActualStart = cloneTime(s.ActualStart)
	out.ActualEnd = cloneTime(s.ActualEnd)
	out.ActualDurationMinutes = cloneInt(s.ActualDurationMinutes)
	out.MenteeRating = cloneInt(s.MenteeRating)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
