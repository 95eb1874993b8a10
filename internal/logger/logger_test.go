package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := Build("", "", &buf)

	l.WithField("session_id", "s1").Info("completed")
	l.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "info", entry["level"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestBuild_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, Build("DEBUG", "", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.WarnLevel, Build("warn", "", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, Build("nonsense", "", &bytes.Buffer{}).GetLevel())
}

func TestBuild_Text(t *testing.T) {
	var buf bytes.Buffer
	Build("info", "text", &buf).Info("hello")
	assert.Contains(t, buf.String(), `msg=hello`)
}
