package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEvent(t *testing.T) {
	t.Run("topic shorthand", func(t *testing.T) {
		raw, err := readEvent("", "ocean conservation")
		require.NoError(t, err)
		assert.JSONEq(t, `{"blog_topic": "ocean conservation"}`, string(raw))
	})

	t.Run("event file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "event.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"body": "e30=", "isBase64Encoded": true}`), 0o600))

		raw, err := readEvent(path, "")
		require.NoError(t, err)
		assert.Contains(t, string(raw), "isBase64Encoded")
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := readEvent("", "")
		assert.Error(t, err)
	})

	t.Run("both inputs", func(t *testing.T) {
		_, err := readEvent("event.json", "topic")
		assert.Error(t, err)
	})
}
