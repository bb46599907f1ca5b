package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerNew(t *testing.T) {
	t.Run("ValidDevelopmentMode", func(t *testing.T) {
		log, err := New("development", "debug")
		require.NoError(t, err)
		assert.NotNil(t, log)
		log.Sync()
	})

	t.Run("ValidProductionMode", func(t *testing.T) {
		log, err := New("production", "info")
		require.NoError(t, err)
		assert.NotNil(t, log)
		log.Sync()
	})

	t.Run("InvalidMode", func(t *testing.T) {
		_, err := New("verbose", "info")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging mode")
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		_, err := New("production", "loud")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging level")
	})
}
