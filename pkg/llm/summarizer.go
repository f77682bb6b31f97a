// Package llm provides the optional abstractive summarizer backed by an
// OpenAI-compatible chat endpoint.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"newsbrief/pkg/config"
)

// systemPrompt keeps responses to a bare summary in the article's language.
const systemPrompt = `You summarize news articles. Reply with a concise summary of the requested length in the same language as the article. No preamble, no commentary, only the summary text.`

// Summarizer produces article summaries via chat completions.
type Summarizer struct {
	client *openai.Client
	cfg    config.LLMConfig
}

// NewSummarizer creates a summarizer for the configured endpoint and model.
func NewSummarizer(cfg config.LLMConfig) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	return &Summarizer{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}
}

// Summarize returns an abstractive summary of text in at most maxSentences
// sentences. Empty input yields empty output without a request.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxSentences int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: float32(s.cfg.Temperature),
		MaxTokens:   s.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Summarize in at most %d sentences:\n\n%s", maxSentences, text)},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
