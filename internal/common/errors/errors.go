// Package errors provides the standardized error taxonomy shared by the blog
// pipeline and its triggers, plus conversion to HTTP statuses and BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMalformedRequest    ErrorCode = "MALFORMED_REQUEST"
	ErrCodeModelEmptyOutput    ErrorCode = "MODEL_EMPTY_OUTPUT"
	ErrCodeStorageWriteFailure ErrorCode = "STORAGE_WRITE_FAILURE"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages. These end up verbatim in response envelopes.
const (
	MsgMissingTopic     = "Missing 'blog_topic'"
	MsgModelEmptyOutput = "Model did not return text"
	MsgStorageFailed    = "Failed to save blog to storage"
	MsgInternal         = "Internal server error"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMalformedRequestError creates a non-retryable decode error. message is user facing.
func NewMalformedRequestError(message string, cause error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeMalformedRequest,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewModelEmptyOutputError is returned when inference failed or produced no extractable text.
func NewModelEmptyOutputError(details string, cause error) *StandardError {
	if cause != nil {
		details = fmt.Sprintf("%s: %v", details, cause)
	}
	return &StandardError{
		Code:      ErrCodeModelEmptyOutput,
		Message:   MsgModelEmptyOutput,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewStorageWriteFailureError wraps a failed object write.
func NewStorageWriteFailureError(bucket, key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageWriteFailure,
		Message:   MsgStorageFailed,
		Details:   fmt.Sprintf("bucket: %s, key: %s, error: %v", bucket, key, err),
		Retryable: false,
		Metadata: map[string]interface{}{
			"bucket": bucket,
			"key":    key,
		},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps anything that escaped the typed paths.
func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgInternal,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Classification helpers
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the taxonomy code of err, ErrCodeInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps a taxonomy code onto a transport status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMalformedRequest:
		return http.StatusBadRequest
	case ErrCodeModelEmptyOutput:
		return http.StatusBadGateway
	case ErrCodeStorageWriteFailure, ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMalformedRequest:    "BLOG_MALFORMED_REQUEST",
	ErrCodeModelEmptyOutput:    "BLOG_MODEL_EMPTY_OUTPUT",
	ErrCodeStorageWriteFailure: "BLOG_STORAGE_WRITE_FAILURE",
	ErrCodeInternal:            "BLOG_INTERNAL_ERROR",
}

// GetRetryCount returns how many workflow-level retries a code deserves.
// Transport retries already happen inside the AWS SDK, so only faults outside
// the typed taxonomy get another attempt from the engine.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeInternal:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := 0
	if stdErr.Retryable && IsRetryableErrorCode(stdErr.Code) {
		retries = GetRetryCount(stdErr.Code)
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"statusCode":        HTTPStatus(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "REQUEST"):
		return "VALIDATION"
	case strings.Contains(codeStr, "MODEL"):
		return "AI"
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
