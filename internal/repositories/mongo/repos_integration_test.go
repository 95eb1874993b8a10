//go:build integration

package mongo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/utils"
)

func setupDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("mentorloop_test")
}

func TestSessionRepo_TransitionIsCompareAndSet(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewSessionRepo(db, nil)

	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s := &models.Session{
		ID:          "sess-1",
		MentorID:    "mentor-1",
		MenteeID:    "mentee-1",
		ScheduledAt: at,
		Medium:      models.MediumChat,
		Status:      models.SessionScheduled,
	}
	require.NoError(t, repo.Create(ctx, s))

	next := s.Clone()
	next.Status = models.SessionActive
	next.ActualStart = &at
	ok, err := repo.Transition(ctx, next, models.SessionScheduled)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second writer holding the stale status loses.
	ok, err = repo.Transition(ctx, next, models.SessionScheduled)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, got.Status)
	require.NotNil(t, got.ActualStart)
	assert.True(t, at.Equal(*got.ActualStart))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestSessionRepo_SetRatingOnce(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewSessionRepo(db, nil)

	require.NoError(t, repo.Create(ctx, &models.Session{
		ID: "sess-r", MentorID: "m", MenteeID: "e", Status: models.SessionCompleted,
	}))

	ok, err := repo.SetRating(ctx, "sess-r", 4, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetRating(ctx, "sess-r", 5, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, "sess-r")
	require.NoError(t, err)
	require.NotNil(t, got.MenteeRating)
	assert.Equal(t, 4, *got.MenteeRating)
}

func TestSessionRepo_ListOverdue(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewSessionRepo(db, nil)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, s := range []*models.Session{
		{ID: "old-scheduled", Status: models.SessionScheduled, ScheduledAt: now.Add(-3 * time.Hour)},
		{ID: "fresh-scheduled", Status: models.SessionScheduled, ScheduledAt: now.Add(-30 * time.Minute)},
		{ID: "old-active", Status: models.SessionActive, ScheduledAt: now.Add(-2 * time.Hour)},
		{ID: "done", Status: models.SessionCompleted, ScheduledAt: now.Add(-5 * time.Hour)},
	} {
		require.NoError(t, repo.Create(ctx, s))
	}

	cutoff := now.Add(-time.Hour)
	got, err := repo.ListOverdue(ctx, map[models.SessionStatus]time.Time{
		models.SessionScheduled: cutoff,
		models.SessionActive:    cutoff,
	}, 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"old-scheduled", "old-active"}, ids)
}

func TestSessionRepo_ListOverdueSkipsUndecodableDocuments(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewSessionRepo(db, nil)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	_, err := db.Collection(SessionsCollection).InsertOne(ctx, bson.M{
		"_id":                     "broken",
		"status":                  models.SessionScheduled,
		"scheduled_at":            now.Add(-4 * time.Hour),
		"actual_duration_minutes": "forty",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID: "old-scheduled", Status: models.SessionScheduled, ScheduledAt: now.Add(-3 * time.Hour),
	}))

	got, err := repo.ListOverdue(ctx, map[models.SessionStatus]time.Time{
		models.SessionScheduled: now.Add(-time.Hour),
	}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "old-scheduled", got[0].ID)
}

func TestMentorRepo_RecordCompletionAndRating(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewMentorRepo(db)

	// mentee_history deliberately absent, as on documents written elsewhere.
	_, err := db.Collection(MentorsCollection).InsertOne(ctx, bson.M{"_id": "mentor-1", "completed_sessions": 0})
	require.NoError(t, err)

	require.NoError(t, repo.RecordCompletion(ctx, "mentor-1", "mentee-1"))
	require.NoError(t, repo.RecordCompletion(ctx, "mentor-1", "mentee-1"))
	require.NoError(t, repo.RecordCompletion(ctx, "mentor-1", "mentee-2"))

	m, err := repo.GetByID(ctx, "mentor-1")
	require.NoError(t, err)
	assert.Equal(t, 3, m.CompletedSessions)
	assert.Equal(t, 2, m.MenteesCount)
	assert.Equal(t, []string{"mentee-1", "mentee-2"}, m.MenteeHistory)

	_, err = repo.ApplyRating(ctx, "mentor-1", 5)
	require.NoError(t, err)
	m, err = repo.ApplyRating(ctx, "mentor-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalRatings)
	assert.InDelta(t, 4.5, m.AverageRating, 1e-9)

	assert.ErrorIs(t, repo.RecordCompletion(ctx, "nobody", "mentee-1"), utils.ErrNotFound)
}

func TestMentorRepo_ApplyRatingFromLegacyAverage(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewMentorRepo(db)

	_, err := db.Collection(MentorsCollection).InsertOne(ctx, bson.M{
		"_id": "legacy", "average_rating": 4.0, "total_ratings": 3,
	})
	require.NoError(t, err)

	m, err := repo.ApplyRating(ctx, "legacy", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalRatings)
	assert.InDelta(t, 3.5, m.AverageRating, 1e-9)
}

func TestMenteeRepo_AwardBadgeConcurrent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewMenteeRepo(db)

	_, err := db.Collection(MenteesCollection).InsertOne(ctx, bson.M{
		"_id":           "mentee-1",
		"earned_badges": bson.A{bson.M{"id": "9", "title": "starter", "earned": true}},
	})
	require.NoError(t, err)

	ok, err := repo.AwardBadge(ctx, "mentee-1", models.Badge{ID: "1", Title: "Starter", Earned: true})
	require.NoError(t, err)
	assert.False(t, ok, "title match is case-insensitive")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.AwardBadge(ctx, "mentee-1", models.Badge{ID: "2", Title: "5 Sessions", Earned: true})
		}()
	}
	wg.Wait()

	n, err := repo.IncrementCompleted(ctx, "mentee-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.GetByID(ctx, "mentee-1")
	require.NoError(t, err)
	assert.Len(t, got.EarnedBadges, 2)
}

func TestRequestRepo_AttachSession(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewMentorshipRequestRepo(db)

	_, err := db.Collection(RequestsCollection).InsertOne(ctx, bson.M{"_id": "req-1", "status": "pending"})
	require.NoError(t, err)

	require.NoError(t, repo.AttachSession(ctx, "req-1", "sess-1"))
	require.NoError(t, repo.AttachSession(ctx, "req-1", "sess-2"))

	got, err := repo.GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, got.Status)
	assert.Equal(t, []string{"sess-1", "sess-2"}, got.SessionIDs)

	assert.ErrorIs(t, repo.AttachSession(ctx, "missing", "sess-3"), utils.ErrNotFound)
}
