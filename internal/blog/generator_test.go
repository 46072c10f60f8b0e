package blog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "blog-generator/internal/common/errors"
	"blog-generator/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testModelID = "meta.llama3-2-1b-instruct-v1:0"

func TestGeneratorRequest(t *testing.T) {
	client := new(MockBedrockClient)
	client.On("InvokeModel", mock.Anything, mock.MatchedBy(func(in *bedrockruntime.InvokeModelInput) bool {
		var req map[string]interface{}
		if err := json.Unmarshal(in.Body, &req); err != nil {
			return false
		}
		return *in.ModelId == testModelID &&
			*in.ContentType == "application/json" &&
			*in.Accept == "application/json" &&
			req["prompt"] == BuildPrompt("ocean conservation") &&
			req["max_gen_len"] == float64(512) &&
			req["temperature"] == 0.5 &&
			req["top_p"] == 0.9
	})).Return(modelResponse(`{"generation": "Lorem ipsum"}`), nil).Once()

	g := NewGenerator(client, testModelID, logger.NewTestLogger(t))
	text, err := g.Generate(context.Background(), "ocean conservation")

	require.NoError(t, err)
	assert.Equal(t, "Lorem ipsum", text)
	client.AssertExpectations(t)
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"<s>[INST]Human: Write a 200 words blog on the topic rust vs go\n    Assistant:[/INST]\n    ",
		BuildPrompt("rust vs go"))
}

func TestGeneratorResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"top level generation", `{"generation": "from generation", "stop_reason": "stop"}`, "from generation"},
		{"output text", `{"output": {"text": "from output"}}`, "from output"},
		{"first outputs element", `{"outputs": [{"text": "first"}, {"text": "second"}]}`, "first"},
		{"generation wins over output", `{"generation": "winner", "output": {"text": "loser"}}`, "winner"},
		{"output wins over outputs", `{"output": {"text": "winner"}, "outputs": [{"text": "loser"}]}`, "winner"},
		{"empty generation falls through", `{"generation": "", "output": {"text": "fallback"}}`, "fallback"},
		{"non-string generation falls through", `{"generation": 12, "outputs": [{"text": "fallback"}]}`, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockBedrockClient)
			client.On("InvokeModel", mock.Anything, mock.Anything).Return(modelResponse(tt.response), nil)

			text, err := NewGenerator(client, testModelID, logger.NewNoOpLogger()).Generate(context.Background(), "topic")
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestGeneratorFailures(t *testing.T) {
	invokeErr := errors.New("operation error Bedrock Runtime: InvokeModel, exceeded maximum number of attempts, 3")

	tests := []struct {
		name      string
		output    *bedrockruntime.InvokeModelOutput
		err       error
		wantCause error
	}{
		{name: "unknown shape", output: modelResponse(`{"unexpected": "shape"}`)},
		{name: "empty outputs", output: modelResponse(`{"outputs": []}`)},
		{name: "outputs of strings", output: modelResponse(`{"outputs": ["text"]}`)},
		{name: "non json body", output: modelResponse(`<html>`)},
		{name: "json array body", output: modelResponse(`["generation"]`)},
		{name: "invoke error", err: invokeErr, wantCause: invokeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockBedrockClient)
			if tt.err != nil {
				client.On("InvokeModel", mock.Anything, mock.Anything).Return(nil, tt.err)
			} else {
				client.On("InvokeModel", mock.Anything, mock.Anything).Return(tt.output, nil)
			}

			g := NewGenerator(client, testModelID, logger.NewNoOpLogger())
			text, err := g.Generate(context.Background(), "topic")

			assert.Empty(t, text)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeModelEmptyOutput))
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}

			assert.Empty(t, g.GenerateText(context.Background(), "topic"))
		})
	}
}

func TestGeneratorCustomExtractors(t *testing.T) {
	completion := Extractor{
		Name: "completion",
		Extract: func(resp map[string]interface{}) (string, bool) {
			s, ok := resp["completion"].(string)
			return s, ok
		},
	}

	t.Run("append keeps defaults first", func(t *testing.T) {
		client := new(MockBedrockClient)
		client.On("InvokeModel", mock.Anything, mock.Anything).
			Return(modelResponse(`{"completion": "claude text", "generation": "llama text"}`), nil)

		g := NewGenerator(client, testModelID, logger.NewNoOpLogger(), AppendExtractor(completion))
		text, err := g.Generate(context.Background(), "topic")
		require.NoError(t, err)
		assert.Equal(t, "llama text", text)
	})

	t.Run("append reaches new shape", func(t *testing.T) {
		client := new(MockBedrockClient)
		client.On("InvokeModel", mock.Anything, mock.Anything).
			Return(modelResponse(`{"completion": "claude text"}`), nil)

		g := NewGenerator(client, testModelID, logger.NewNoOpLogger(), AppendExtractor(completion))
		text, err := g.Generate(context.Background(), "topic")
		require.NoError(t, err)
		assert.Equal(t, "claude text", text)
	})

	t.Run("replace", func(t *testing.T) {
		client := new(MockBedrockClient)
		client.On("InvokeModel", mock.Anything, mock.Anything).
			Return(modelResponse(`{"generation": "llama text"}`), nil)

		g := NewGenerator(client, testModelID, logger.NewNoOpLogger(), WithExtractors(completion))
		_, err := g.Generate(context.Background(), "topic")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeModelEmptyOutput))
	})
}

func TestExtractTextSkipsNilExtractor(t *testing.T) {
	text, name, ok := ExtractText(
		map[string]interface{}{"generation": "x"},
		append([]Extractor{{Name: "broken"}}, DefaultExtractors()...),
	)
	assert.True(t, ok)
	assert.Equal(t, "x", text)
	assert.Equal(t, "generation", name)
}
