package logging

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	f := NewFormatter("run-1")
	entry := &log.Entry{
		Logger:  log.New(),
		Time:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Level:   log.WarnLevel,
		Message: "header rewritten",
		Data:    log.Fields{"unmatched": 2, "file": "a.csv"},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:00:00.000+00:00 WARNING run-1 header rewritten file=a.csv unmatched=2\n", string(out))
}

func TestSetup(t *testing.T) {
	defer log.SetFormatter(&log.TextFormatter{})
	defer log.SetLevel(log.InfoLevel)

	id, err := Setup("debug", "")
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	id, err = Setup("info", "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	_, err = Setup("loud", "")
	assert.Error(t, err)
}
