package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"model-gateway/internal/chat"
	"model-gateway/internal/registry"
)

type openAIRequest struct {
	Model       string         `json:"model"`
	Messages    []chat.Message `json:"messages"`
	Temperature float64        `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAICompatibleAdapter serves every chat-completions style vendor. Vendors
// differ only in ProviderConfig.BaseURL and the credential they use.
type OpenAICompatibleAdapter struct{}

func (a *OpenAICompatibleAdapter) BuildRequest(ctx context.Context, cfg registry.ProviderConfig, apiKey string, req chat.Request) (*http.Request, error) {
	messages := req.Messages
	if messages == nil {
		messages = []chat.Message{}
	}
	body, err := json.Marshal(openAIRequest{
		Model:       cfg.ModelID,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai-compatible: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai-compatible: create request: %w", err)
	}
	setJSONHeaders(httpReq.Header)
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	return httpReq, nil
}

func (a *OpenAICompatibleAdapter) ParseReply(body []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", ErrNoText
	}

	text := strings.TrimSpace(*resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
