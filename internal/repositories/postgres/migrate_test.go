package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"000001_session_events.up.sql",
		"000001_session_events.down.sql",
	}, names)

	up, err := migrations.ReadFile("migrations/000001_session_events.up.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS session_events"))
}
