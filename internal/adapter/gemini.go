package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"model-gateway/internal/chat"
	"model-gateway/internal/registry"
)

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []*struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiAdapter speaks the generateContent API. System messages travel in
// systemInstruction; the conversation only knows the user and model roles.
type GeminiAdapter struct{}

func (a *GeminiAdapter) BuildRequest(ctx context.Context, cfg registry.ProviderConfig, apiKey string, req chat.Request) (*http.Request, error) {
	systemText, conversation := chat.Split(req.Messages)

	payload := geminiRequest{
		Contents:         make([]geminiContent, 0, len(conversation)),
		GenerationConfig: geminiGenerationConfig{Temperature: req.Temperature},
	}
	for _, m := range conversation {
		role := "model"
		if m.Role == chat.RoleUser {
			role = "user"
		}
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	if systemText != "" {
		payload.SystemInstruction = &geminiContent{
			Role:  "system",
			Parts: []geminiPart{{Text: systemText}},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint, err := geminiURL(cfg.BaseURL, cfg.ModelID, apiKey)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	setJSONHeaders(httpReq.Header)
	return httpReq, nil
}

func (a *GeminiAdapter) ParseReply(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoText
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Text == "" {
			continue
		}
		sb.WriteString(p.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func geminiURL(apiBase, modelID, apiKey string) (string, error) {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		base = registry.DefaultGeminiBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("gemini: parse api base: %w", err)
	}

	u = u.JoinPath("models", modelID+":generateContent")
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
