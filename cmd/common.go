package cmd

import (
	"context"
	"fmt"

	"github.com/codesmith-ai/codesmith/pkg/config"
	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// buildGenerator assembles the provider fallback chain from the configured
// providers. The primary provider heads the chain; every other configured
// provider is a fallback in fixed order.
func buildGenerator(ctx context.Context, cfg *config.Config, logger *utils.Logger) (llm.Generator, error) {
	var gemini, openai, ollama llm.Generator

	if cfg.GeminiAPIKey != "" {
		g, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini provider: %w", err)
		}
		gemini = g
	}
	if cfg.OpenAIAPIKey != "" {
		openai = llm.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.OllamaModel != "" {
		o, err := llm.NewOllamaGenerator(cfg.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama provider: %w", err)
		}
		ollama = o
	}

	var providers []llm.Generator
	if cfg.PrimaryProvider == "openai" {
		providers = []llm.Generator{openai, gemini, ollama}
	} else {
		providers = []llm.Generator{gemini, openai, ollama}
	}

	chain := llm.NewFallbackChain(cfg.GenerationTimeout, logger, providers...)
	return chain, nil
}
