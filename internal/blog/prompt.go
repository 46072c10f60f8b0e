package blog

import "fmt"

// Sampling parameters sent with every generation request.
const (
	MaxGenLen   = 512
	Temperature = 0.5
	TopP        = 0.9
)

const promptTemplate = "<s>[INST]Human: Write a 200 words blog on the topic %s\n    Assistant:[/INST]\n    "

// GenerationRequest is the inference request body.
type GenerationRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

func BuildPrompt(topic string) string {
	return fmt.Sprintf(promptTemplate, topic)
}

func NewGenerationRequest(topic string) GenerationRequest {
	return GenerationRequest{
		Prompt:      BuildPrompt(topic),
		MaxGenLen:   MaxGenLen,
		Temperature: Temperature,
		TopP:        TopP,
	}
}
