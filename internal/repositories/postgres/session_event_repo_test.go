package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yoockh/mentorloop/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSessionEventRepo_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionEventRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "session_events"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ev := &models.SessionEvent{
		SessionID:    "2b1c7a8e-0000-4000-8000-000000000001",
		Kind:         models.EventBooked,
		ActorID:      "mentee-1",
		Participants: []string{"mentor-1", "mentee-1"},
		Metadata:     []byte(`{"medium":"video"}`),
	}
	err := repo.Insert(context.Background(), ev)

	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionEventRepo_ListBySession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionEventRepo(db)

	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "session_id", "kind", "actor_id", "participants", "occurred_at", "metadata"}).
		AddRow("e1", "s1", "booked", "mentee-1", "{mentor-1,mentee-1}", at, []byte(`{}`)).
		AddRow("e2", "s1", "started", "mentor-1", "{mentor-1,mentee-1}", at.Add(time.Hour), []byte(`{}`))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "session_events" WHERE session_id = $1 ORDER BY occurred_at ASC LIMIT`)).
		WillReturnRows(rows)

	got, err := repo.ListBySession(context.Background(), "s1", 0)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.EventStarted, got[1].Kind)
	assert.Equal(t, []string{"mentor-1", "mentee-1"}, []string(got[0].Participants))
	assert.NoError(t, mock.ExpectationsWereMet())
}
