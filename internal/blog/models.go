// Package blog implements the topic-to-artifact pipeline: decode the inbound
// event, generate text with a hosted model and persist it to object storage.
package blog

import (
	"bytes"
	"encoding/json"

	apperrors "blog-generator/internal/common/errors"
)

// Decode failure messages returned to the caller.
const (
	MsgMissingBody   = "Missing request body"
	MsgInvalidJSON   = "Request body is not valid JSON"
	MsgInvalidBase64 = "Request body is not valid base64"
	MsgInvalidShape  = "Request body must be a JSON object or string"
)

// Event is the inbound envelope. Body holds the raw payload exactly as the
// trigger delivered it: an object, a JSON string, or a base64 string when
// IsBase64Encoded is set.
type Event struct {
	Body            json.RawMessage `json:"body"`
	IsBase64Encoded bool            `json:"isBase64Encoded"`
}

// ParseEvent reads a raw invocation payload. Payloads carrying a "body" key
// are treated as gateway envelopes; any other object is a direct invocation
// and becomes the body itself.
func ParseEvent(raw []byte) (*Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, apperrors.NewMalformedRequestError(MsgMissingBody, nil)
	}

	// A bare JSON string is a body on its own.
	if trimmed[0] == '"' {
		return &Event{Body: json.RawMessage(trimmed)}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, apperrors.NewMalformedRequestError(MsgInvalidJSON, err)
	}
	if fields == nil {
		return nil, apperrors.NewMalformedRequestError(MsgMissingBody, nil)
	}

	body, wrapped := fields["body"]
	if !wrapped {
		return &Event{Body: json.RawMessage(trimmed)}, nil
	}

	ev := &Event{Body: body}
	if flag, ok := fields["isBase64Encoded"]; ok {
		// Non-boolean flags are treated as unset.
		_ = json.Unmarshal(flag, &ev.IsBase64Encoded)
	}
	return ev, nil
}

// EventFromMap builds an event from already decoded variables, e.g. the
// variables of a workflow job.
func EventFromMap(vars map[string]interface{}) (*Event, error) {
	raw, err := json.Marshal(vars)
	if err != nil {
		return nil, apperrors.NewMalformedRequestError(MsgInvalidJSON, err)
	}
	return ParseEvent(raw)
}

// Result describes a stored artifact.
type Result struct {
	Topic  string `json:"topic"`
	Bucket string `json:"bucket"`
	Key    string `json:"s3_key"`
	Size   int    `json:"size"`
}

// Envelope is the status/body pair handed back to the trigger.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}
