package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"requestId": "req-1"}).
		WithError(errors.New("boom")).
		Error("store failed", map[string]interface{}{"operation": "store"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "store failed", entries[0].Message)
		assert.Equal(t, "req-1", ctx["requestId"])
		assert.Equal(t, "store", ctx["operation"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestMapToZapFields_Empty(t *testing.T) {
	assert.Nil(t, mapToZapFields(nil))
	assert.Len(t, mapToZapFields(map[string]interface{}{"a": 1, "b": "x"}), 2)
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		expected zap.AtomicLevel
	}{
		{"debug", "json", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"warn", "console", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", "json", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"", "console", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			l := New(tt.level, tt.format)
			assert.NotNil(t, l)
			assert.True(t, l.Core().Enabled(tt.expected.Level()))
		})
	}
}
