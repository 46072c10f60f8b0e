package blog

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	apperrors "blog-generator/internal/common/errors"
	"blog-generator/internal/common/validation"
)

const TopicField = "blog_topic"

var topicSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["blog_topic"],
	"properties": {
		"blog_topic": {"type": "string", "minLength": 1}
	}
}`)

// DecodeTopic normalizes the event body to a mapping and returns its topic.
func DecodeTopic(ev *Event) (string, error) {
	if ev == nil {
		return "", apperrors.NewMalformedRequestError(MsgMissingBody, nil)
	}

	payload, err := normalizeBody(ev)
	if err != nil {
		return "", err
	}

	result, err := topicSchema.Validate(payload)
	if err != nil {
		return "", apperrors.NewMalformedRequestError(apperrors.MsgMissingTopic, err)
	}
	if !result.Valid {
		return "", apperrors.NewMalformedRequestError(apperrors.MsgMissingTopic, nil).
			WithMetadata("validation", result.GetErrorMessages())
	}

	return payload[TopicField].(string), nil
}

func normalizeBody(ev *Event) (map[string]interface{}, error) {
	body := bytes.TrimSpace(ev.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, apperrors.NewMalformedRequestError(MsgMissingBody, nil)
	}

	switch body[0] {
	case '{':
		return parseObject(body)
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, apperrors.NewMalformedRequestError(MsgInvalidJSON, err)
		}
		if ev.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, apperrors.NewMalformedRequestError(MsgInvalidBase64, err)
			}
			return parseObject(decoded)
		}
		return parseObject([]byte(s))
	default:
		return nil, apperrors.NewMalformedRequestError(MsgInvalidShape, nil)
	}
}

func parseObject(data []byte) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.NewMalformedRequestError(MsgInvalidJSON, err)
	}
	if m == nil {
		return nil, apperrors.NewMalformedRequestError(MsgMissingBody, nil)
	}
	return m, nil
}
