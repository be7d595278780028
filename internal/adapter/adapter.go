package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"model-gateway/internal/chat"
	"model-gateway/internal/registry"
)

var (
	// ErrNoText means a success response carried no usable reply text.
	ErrNoText         = errors.New("provider returned no text")
	ErrMalformedReply = errors.New("provider returned a malformed reply")
)

// Adapter translates between the canonical chat shapes and one vendor's wire
// format. Implementations hold no state.
type Adapter interface {
	BuildRequest(ctx context.Context, cfg registry.ProviderConfig, apiKey string, req chat.Request) (*http.Request, error)
	ParseReply(body []byte) (string, error)
}

var (
	gemini           Adapter = &GeminiAdapter{}
	openAICompatible Adapter = &OpenAICompatibleAdapter{}
)

// For returns the adapter for kind.
func For(kind registry.Kind) (Adapter, error) {
	switch kind {
	case registry.KindGemini:
		return gemini, nil
	case registry.KindOpenAICompatible:
		return openAICompatible, nil
	default:
		return nil, fmt.Errorf("no adapter for kind %q", kind)
	}
}

func setJSONHeaders(h http.Header) {
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
}
