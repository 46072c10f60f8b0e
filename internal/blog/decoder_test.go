package blog

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	apperrors "blog-generator/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, raw string) (string, error) {
	t.Helper()
	ev, err := ParseEvent([]byte(raw))
	if err != nil {
		return "", err
	}
	return DecodeTopic(ev)
}

func TestDecodeTopicAcceptedShapes(t *testing.T) {
	payload := `{"blog_topic": "ocean conservation"}`
	quoted, _ := json.Marshal(payload)
	encoded, _ := json.Marshal(base64.StdEncoding.EncodeToString([]byte(payload)))

	tests := []struct {
		name string
		raw  string
	}{
		{"direct mapping", payload},
		{"envelope with object body", `{"body": {"blog_topic": "ocean conservation"}}`},
		{"envelope with string body", `{"body": ` + string(quoted) + `, "isBase64Encoded": false}`},
		{"envelope with base64 body", `{"body": ` + string(encoded) + `, "isBase64Encoded": true}`},
		{"bare json string", string(quoted)},
		{"object body ignores base64 flag", `{"body": {"blog_topic": "ocean conservation"}, "isBase64Encoded": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, err := decodeRaw(t, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "ocean conservation", topic)
		})
	}
}

func TestDecodeTopicReturnsExactString(t *testing.T) {
	for _, topic := range []string{"  padded topic ", "   ", "\t\n", "émigré cuisine", "a", `quotes "inside"`} {
		ev, err := EventFromMap(map[string]interface{}{"blog_topic": topic})
		require.NoError(t, err)

		got, err := DecodeTopic(ev)
		require.NoError(t, err)
		assert.Equal(t, topic, got)
	}
}

func TestDecodeTopicBase64RoundTrip(t *testing.T) {
	original := map[string]interface{}{"blog_topic": "serverless patterns", "tone": "casual"}
	plain, err := json.Marshal(original)
	require.NoError(t, err)

	plainTopic, err := DecodeTopic(&Event{Body: mustMarshal(t, string(plain))})
	require.NoError(t, err)

	b64Topic, err := DecodeTopic(&Event{
		Body:            mustMarshal(t, base64.StdEncoding.EncodeToString(plain)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, plainTopic, b64Topic)
	assert.Equal(t, "serverless patterns", b64Topic)
}

func TestDecodeTopicMalformed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"empty object", `{}`, apperrors.MsgMissingTopic},
		{"empty topic", `{"blog_topic": ""}`, apperrors.MsgMissingTopic},
		{"non-string topic", `{"blog_topic": 7}`, apperrors.MsgMissingTopic},
		{"wrong key", `{"topic": "go"}`, apperrors.MsgMissingTopic},
		{"string body without topic", `{"body": "{\"other\": 1}"}`, apperrors.MsgMissingTopic},
		{"null body", `{"body": null}`, MsgMissingBody},
		{"null payload", `null`, MsgMissingBody},
		{"empty payload", ``, MsgMissingBody},
		{"unparseable payload", `{"blog_topic":`, MsgInvalidJSON},
		{"unparseable string body", `{"body": "not json"}`, MsgInvalidJSON},
		{"string body holding array", `{"body": "[1,2]"}`, MsgInvalidJSON},
		{"invalid base64", `{"body": "%%%", "isBase64Encoded": true}`, MsgInvalidBase64},
		{"base64 of non json", `{"body": "` + base64.StdEncoding.EncodeToString([]byte("plain text")) + `", "isBase64Encoded": true}`, MsgInvalidJSON},
		{"numeric body", `{"body": 42}`, MsgInvalidShape},
		{"array body", `{"body": [1]}`, MsgInvalidShape},
		{"array payload", `[1, 2]`, MsgInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRaw(t, tt.raw)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMalformedRequest), "got %v", err)
			assert.Equal(t, tt.wantMsg, apperrors.Normalize(err).Message)
		})
	}
}

func TestDecodeTopicNilEvent(t *testing.T) {
	_, err := DecodeTopic(nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMalformedRequest))
}

func TestParseEventBase64Flag(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"body": "e30=", "isBase64Encoded": "yes"}`))
	require.NoError(t, err)
	assert.False(t, ev.IsBase64Encoded, "non-boolean flag is ignored")

	ev, err = ParseEvent([]byte(`{"body": "e30=", "isBase64Encoded": true}`))
	require.NoError(t, err)
	assert.True(t, ev.IsBase64Encoded)
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
