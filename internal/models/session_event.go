package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type SessionEventKind string

const (
	EventBooked        SessionEventKind = "booked"
	EventStarted       SessionEventKind = "started"
	EventCompleted     SessionEventKind = "completed"
	EventAutoCompleted SessionEventKind = "auto_completed"
	EventRated         SessionEventKind = "rated"
	EventRecap         SessionEventKind = "recap"
)

// SessionEvent is one entry of a session's append-only timeline.
type SessionEvent struct {
	ID           string           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID    string           `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	Kind         SessionEventKind `gorm:"column:kind;type:text" json:"kind"`
	ActorID      string           `gorm:"column:actor_id;type:text" json:"actor_id,omitempty"` // empty for the sweeper
	Participants pq.StringArray   `gorm:"column:participants;type:text[]" json:"participants"`
	OccurredAt   time.Time        `gorm:"column:occurred_at;type:timestamptz;index" json:"occurred_at"`
	Metadata     datatypes.JSON   `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
}

func (SessionEvent) TableName() string { return "session_events" }
