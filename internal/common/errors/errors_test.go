package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeMalformedRequest, http.StatusBadRequest},
		{ErrCodeModelEmptyOutput, http.StatusBadGateway},
		{ErrCodeStorageWriteFailure, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_NEW"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Normalize(nil))
		assert.Equal(t, ErrorCode(""), CodeOf(nil))
	})

	t.Run("wrapped standard error is found", func(t *testing.T) {
		base := NewStorageWriteFailureError("bucket", "blog-output/x.txt", stderrors.New("access denied"))
		wrapped := fmt.Errorf("store: %w", base)

		got := Normalize(wrapped)
		require.NotNil(t, got)
		assert.Same(t, base, got)
		assert.True(t, IsCode(wrapped, ErrCodeStorageWriteFailure))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := Normalize(stderrors.New("nil pointer"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, MsgInternal, got.Message)
		assert.Equal(t, "nil pointer", got.Details)
	})
}

func TestConstructors(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")

	malformed := NewMalformedRequestError(MsgMissingTopic, nil)
	assert.Equal(t, MsgMissingTopic, malformed.Message)
	assert.Empty(t, malformed.Details)
	assert.False(t, malformed.Retryable)

	empty := NewModelEmptyOutputError("inference call failed", cause)
	assert.Equal(t, MsgModelEmptyOutput, empty.Message)
	assert.Contains(t, empty.Details, "dial tcp: timeout")
	assert.ErrorIs(t, empty, cause)

	storage := NewStorageWriteFailureError("b", "k", cause)
	assert.Equal(t, "b", storage.Metadata["bucket"])
	assert.Equal(t, "k", storage.Metadata["key"])
	assert.ErrorIs(t, storage, cause)
	assert.Contains(t, storage.Error(), "STORAGE_WRITE_FAILURE")
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("business error has no retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewModelEmptyOutputError("no match", nil))
		assert.Equal(t, "BLOG_MODEL_EMPTY_OUTPUT", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "MODEL_EMPTY_OUTPUT", vars["originalErrorCode"])
		assert.Equal(t, http.StatusBadGateway, vars["statusCode"])
		assert.Equal(t, MsgModelEmptyOutput, vars["errorMessage"])
	})

	t.Run("internal error retries once", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInternalError(stderrors.New("redis down")))
		assert.Equal(t, "BLOG_INTERNAL_ERROR", bpmn.Code)
		assert.Equal(t, 1, bpmn.Retries)
		assert.True(t, IsRetryableErrorCode(ErrCodeInternal))
	})

	t.Run("retryable flag on a terminal code is ignored", func(t *testing.T) {
		stdErr := NewStorageWriteFailureError("b", "k", stderrors.New("denied"))
		stdErr.Retryable = true

		bpmn := ConvertToBPMNError(stdErr)
		assert.False(t, IsRetryableErrorCode(ErrCodeStorageWriteFailure))
		assert.Equal(t, 0, bpmn.Retries)
	})

	t.Run("unknown code falls back to itself", func(t *testing.T) {
		bpmn := ConvertToBPMNError(&StandardError{Code: "CUSTOM"})
		assert.Equal(t, "CUSTOM", bpmn.Code)
	})
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, int32(1), remainingRetries(3, 1))
	assert.Equal(t, int32(1), remainingRetries(1, 3))
	assert.Equal(t, int32(2), remainingRetries(0, 2))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMalformedRequest))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeModelEmptyOutput))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeStorageWriteFailure))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
