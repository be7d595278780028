package registry

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Kind selects the wire format used to talk to a provider.
type Kind string

const (
	KindGemini           Kind = "gemini"
	KindOpenAICompatible Kind = "openai-compatible"
)

const (
	ProviderGemini   = "Gemini"
	ProviderOpenAI   = "OpenAI"
	ProviderDeepSeek = "DeepSeek"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	openAIChatURL   = "https://api.openai.com/v1/chat/completions"
	deepSeekChatURL = "https://api.deepseek.com/chat/completions"
)

var ErrUnknownModel = errors.New("unknown model")

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("adapter must be %s or %s, got %q", KindGemini, KindOpenAICompatible, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindGemini, KindOpenAICompatible:
		return true
	default:
		return false
	}
}

// ProviderConfig describes how to reach the back end serving one model id.
type ProviderConfig struct {
	ModelID            string
	Provider           string
	Kind               Kind
	CredentialVariable string
	// BaseURL is the full chat endpoint for openai-compatible providers and an
	// optional API root for gemini.
	BaseURL string
}

// Registry is an immutable model id -> ProviderConfig table. It has no
// mutating methods, so lookups are safe from any goroutine.
type Registry struct {
	entries map[string]ProviderConfig
}

func New(entries ...ProviderConfig) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New("registry: at least one model is required")
	}

	index := make(map[string]ProviderConfig, len(entries))
	for i, e := range entries {
		e.ModelID = strings.TrimSpace(e.ModelID)
		e.Provider = strings.TrimSpace(e.Provider)
		e.CredentialVariable = strings.TrimSpace(e.CredentialVariable)
		e.BaseURL = strings.TrimSpace(e.BaseURL)

		if e.ModelID == "" {
			return nil, fmt.Errorf("registry: entry %d: model id is required", i)
		}
		if _, exists := index[e.ModelID]; exists {
			return nil, fmt.Errorf("registry: duplicate model id: %s", e.ModelID)
		}
		if e.Provider == "" {
			return nil, fmt.Errorf("registry: %s: provider is required", e.ModelID)
		}
		if !e.Kind.Valid() {
			return nil, fmt.Errorf("registry: %s: invalid adapter kind %q", e.ModelID, e.Kind)
		}
		if e.CredentialVariable == "" {
			return nil, fmt.Errorf("registry: %s: credential variable is required", e.ModelID)
		}
		if e.Kind == KindGemini && e.BaseURL == "" {
			e.BaseURL = DefaultGeminiBaseURL
		}
		if e.BaseURL == "" {
			return nil, fmt.Errorf("registry: %s: base url is required for %s adapters", e.ModelID, e.Kind)
		}
		u, err := url.Parse(e.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("registry: %s: base url must be an absolute http/https url: %s", e.ModelID, e.BaseURL)
		}

		index[e.ModelID] = e
	}

	return &Registry{entries: index}, nil
}

// Lookup never performs I/O.
func (r *Registry) Lookup(modelID string) (ProviderConfig, error) {
	cfg, ok := r.entries[strings.TrimSpace(modelID)]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	}
	return cfg, nil
}

// Models returns every entry sorted by model id.
func (r *Registry) Models() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// DefaultEntries is the built-in model table used when no config file lists
// models.
func DefaultEntries() []ProviderConfig {
	return []ProviderConfig{
		{ModelID: "gemini-2.5-flash", Provider: ProviderGemini, Kind: KindGemini, CredentialVariable: "GEMINI_API_KEY"},
		{ModelID: "gemini-2.0-flash", Provider: ProviderGemini, Kind: KindGemini, CredentialVariable: "GEMINI_API_KEY"},
		{ModelID: "gpt-4o-mini", Provider: ProviderOpenAI, Kind: KindOpenAICompatible, CredentialVariable: "OPENAI_API_KEY", BaseURL: openAIChatURL},
		{ModelID: "gpt-4o", Provider: ProviderOpenAI, Kind: KindOpenAICompatible, CredentialVariable: "OPENAI_API_KEY", BaseURL: openAIChatURL},
		{ModelID: "deepseek-chat", Provider: ProviderDeepSeek, Kind: KindOpenAICompatible, CredentialVariable: "DEEPSEEK_API_KEY", BaseURL: deepSeekChatURL},
		{ModelID: "deepseek-reasoner", Provider: ProviderDeepSeek, Kind: KindOpenAICompatible, CredentialVariable: "DEEPSEEK_API_KEY", BaseURL: deepSeekChatURL},
	}
}

func Default() *Registry {
	r, err := New(DefaultEntries()...)
	if err != nil {
		panic(fmt.Sprintf("registry: built-in table is invalid: %v", err))
	}
	return r
}
