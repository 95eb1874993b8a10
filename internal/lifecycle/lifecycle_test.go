package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/mentorloop/internal/models"
	"github.com/yoockh/mentorloop/internal/utils"
)

const (
	testMentor   = "mentor-1"
	testMentee   = "mentee-1"
	testOutsider = "someone-else"
)

var scheduledAt = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func newSession() *models.Session {
	return &models.Session{
		ID:          "sess-1",
		MentorID:    testMentor,
		MenteeID:    testMentee,
		ScheduledAt: scheduledAt,
		Medium:      models.MediumVideo,
		Status:      models.SessionScheduled,
	}
}

func TestStart_ByParticipant(t *testing.T) {
	for _, actor := range []string{testMentor, testMentee} {
		s := newSession()
		now := scheduledAt.Add(2 * time.Minute)

		changed, err := Start(s, actor, now)

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, models.SessionActive, s.Status)
		require.NotNil(t, s.ActualStart)
		assert.Equal(t, now, *s.ActualStart)
	}
}

func TestStart_Idempotent(t *testing.T) {
	s := newSession()
	first := scheduledAt.Add(time.Minute)

	_, err := Start(s, testMentee, first)
	require.NoError(t, err)

	changed, err := Start(s, testMentor, first.Add(10*time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, *s.ActualStart, "second start must keep the original actual start")
}

func TestStart_Forbidden(t *testing.T) {
	s := newSession()
	_, err := Start(s, testOutsider, scheduledAt)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	assert.Equal(t, models.SessionScheduled, s.Status)
}

func TestStart_CompletedIsInvalidTransition(t *testing.T) {
	s := newSession()
	ForceComplete(s, scheduledAt.Add(time.Hour))

	_, err := Start(s, testMentor, scheduledAt.Add(2*time.Hour))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidTransition))
}

func TestComplete_OnlyMentor(t *testing.T) {
	s := newSession()
	_, err := Complete(s, testMentee, scheduledAt)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	assert.Equal(t, models.SessionScheduled, s.Status)
}

func TestComplete_DurationFromActualStart(t *testing.T) {
	s := newSession()
	t1 := scheduledAt.Add(3 * time.Minute)
	t2 := t1.Add(47*time.Minute + 31*time.Second)

	_, err := Start(s, testMentee, t1)
	require.NoError(t, err)
	changed, err := Complete(s, testMentor, t2)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, models.SessionCompleted, s.Status)
	assert.Equal(t, t1, *s.ActualStart)
	assert.Equal(t, t2, *s.ActualEnd)
	assert.Equal(t, 48, *s.ActualDurationMinutes)
}

func TestComplete_DefaultsStartToScheduled(t *testing.T) {
	s := newSession()
	changed, err := Complete(s, testMentor, scheduledAt.Add(61*time.Minute))
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, scheduledAt, *s.ActualStart)
	assert.Equal(t, 61, *s.ActualDurationMinutes)
}

func TestComplete_AlreadyCompletedIsNoop(t *testing.T) {
	s := newSession()
	_, err := Complete(s, testMentor, scheduledAt.Add(time.Hour))
	require.NoError(t, err)
	end := *s.ActualEnd

	changed, err := Complete(s, testMentor, scheduledAt.Add(3*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, end, *s.ActualEnd)
}

func TestDurationMinutes_Rounding(t *testing.T) {
	assert.Equal(t, 0, DurationMinutes(scheduledAt, scheduledAt.Add(29*time.Second)))
	assert.Equal(t, 1, DurationMinutes(scheduledAt, scheduledAt.Add(30*time.Second)))
	assert.Equal(t, 60, DurationMinutes(scheduledAt, scheduledAt.Add(time.Hour+10*time.Second)))
}

func TestCheckRecap(t *testing.T) {
	s := newSession()

	assert.NoError(t, CheckRecap(s, models.RecapMentor, testMentor))
	assert.NoError(t, CheckRecap(s, models.RecapMentee, testMentee))
	assert.True(t, utils.IsCode(CheckRecap(s, models.RecapMentor, testMentee), utils.CodeForbidden))
	assert.True(t, utils.IsCode(CheckRecap(s, models.RecapMentee, testOutsider), utils.CodeForbidden))
	assert.True(t, utils.IsCode(CheckRecap(s, "coach", testMentor), utils.CodeInvalidArgument))
}

func TestApplyRecap_LastWriteWins(t *testing.T) {
	s := newSession()
	ApplyRecap(s, models.RecapMentee, "first", scheduledAt)
	ApplyRecap(s, models.RecapMentee, "  second ", scheduledAt)
	ApplyRecap(s, models.RecapMentor, "mentor notes", scheduledAt)

	assert.Equal(t, "second", s.RecapMentee)
	assert.Equal(t, "mentor notes", s.RecapMentor)
}

func TestCheckRating(t *testing.T) {
	s := newSession()

	assert.NoError(t, CheckRating(s, testMentee, 5))
	assert.True(t, utils.IsCode(CheckRating(s, testMentor, 5), utils.CodeForbidden))
	assert.True(t, utils.IsCode(CheckRating(s, testMentee, 0), utils.CodeInvalidArgument))
	assert.True(t, utils.IsCode(CheckRating(s, testMentee, 6), utils.CodeInvalidArgument))

	s.MenteeRated = true
	assert.True(t, utils.IsCode(CheckRating(s, testMentee, 4), utils.CodeAlreadyRated))
}
