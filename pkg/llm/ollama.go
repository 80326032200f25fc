package llm

import (
	"context"
	"fmt"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// OllamaGenerator runs generation against a local ollama daemon. It is an
// optional provider, useful as a last-resort fallback when neither hosted
// provider is configured.
type OllamaGenerator struct {
	client       *ollama.Client
	defaultModel string
}

// NewOllamaGenerator connects to the daemon named by OLLAMA_HOST (or the
// default local address).
func NewOllamaGenerator(defaultModel string) (*OllamaGenerator, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("could not create ollama client: %w", err)
	}
	return &OllamaGenerator{client: client, defaultModel: defaultModel}, nil
}

func (o *OllamaGenerator) Name() string { return "ollama:" + o.defaultModel }

func (o *OllamaGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := strings.TrimPrefix(req.Model, "ollama:")
	if model == "" {
		model = o.defaultModel
	}

	var messages []ollama.Message
	if req.SystemInstruction != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: req.SystemInstruction})
	}
	messages = append(messages, ollama.Message{Role: "user", Content: req.Prompt})

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
		},
	}

	var out strings.Builder
	err := o.client.Chat(ctx, chatReq, func(res ollama.ChatResponse) error {
		out.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
