package blog

import (
	"context"
	"encoding/json"
	"sort"

	apperrors "blog-generator/internal/common/errors"
	"blog-generator/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const contentTypeJSON = "application/json"

// InvokeModelAPI is the part of the bedrock-runtime client the generator uses.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Generator turns a topic into blog text with a hosted model.
type Generator struct {
	client     InvokeModelAPI
	modelID    string
	extractors []Extractor
	logger     logger.Logger
}

type GeneratorOption func(*Generator)

// WithExtractors replaces the response shape extractors.
func WithExtractors(extractors ...Extractor) GeneratorOption {
	return func(g *Generator) {
		g.extractors = extractors
	}
}

// AppendExtractor adds a shape probed after the existing ones.
func AppendExtractor(ex Extractor) GeneratorOption {
	return func(g *Generator) {
		g.extractors = append(g.extractors, ex)
	}
}

func NewGenerator(client InvokeModelAPI, modelID string, log logger.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		client:     client,
		modelID:    modelID,
		extractors: DefaultExtractors(),
		logger:     log.With(map[string]interface{}{"operation": "generate", "modelId": modelID}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate invokes the model and returns the extracted text. Every failure is
// logged and returned as a MODEL_EMPTY_OUTPUT error.
func (g *Generator) Generate(ctx context.Context, topic string) (string, error) {
	payload, err := json.Marshal(NewGenerationRequest(topic))
	if err != nil {
		return "", apperrors.NewModelEmptyOutputError("failed to encode inference request", err)
	}

	out, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
		Body:        payload,
	})
	if err != nil {
		g.logger.Error("Error generating the blog", map[string]interface{}{
			"error": err.Error(),
		})
		return "", apperrors.NewModelEmptyOutputError("inference call failed", err)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		g.logger.Error("Unparseable model response", map[string]interface{}{
			"error":     err.Error(),
			"bodyBytes": len(out.Body),
		})
		return "", apperrors.NewModelEmptyOutputError("unparseable model response", err)
	}

	text, matched, ok := ExtractText(resp, g.extractors)
	if !ok {
		g.logger.Warn("Unexpected model response shape", map[string]interface{}{
			"responseKeys": responseKeys(resp),
		})
		return "", apperrors.NewModelEmptyOutputError("no known response shape matched", nil)
	}

	g.logger.Debug("Model returned text", map[string]interface{}{
		"shape": matched,
		"chars": len(text),
	})
	return text, nil
}

// GenerateText is Generate with failures collapsed to an empty string.
func (g *Generator) GenerateText(ctx context.Context, topic string) string {
	text, err := g.Generate(ctx, topic)
	if err != nil {
		return ""
	}
	return text
}

func responseKeys(resp map[string]interface{}) []string {
	keys := make([]string, 0, len(resp))
	for k := range resp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
