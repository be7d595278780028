// Package upstream turns provider failure bodies into one readable message.
package upstream

import (
	"encoding/json"
	"strconv"
	"strings"

	"model-gateway/internal/registry"
)

const (
	geminiModelNotFound = "Gemini model not found. Use a supported model id such as gemini-2.5-flash."
	deepSeekNoBalance   = "DeepSeek request failed: account lacks sufficient balance. Top up the DeepSeek account or choose another model."
)

// fields is what a provider error body carried, if anything.
type fields struct {
	message string
	status  string
}

// Translate never drops the raw body: when no structured message exists the
// body is echoed verbatim.
func Translate(provider string, body []byte) string {
	raw := string(body)
	f, ok := parse(body)
	if !ok {
		return generic(provider, raw)
	}
	return classify(provider, f, raw)
}

func parse(body []byte) (fields, bool) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fields{}, false
	}

	var f fields
	if msg, ok := lookup(doc, "error", "message").(string); ok {
		f.message = msg
	} else if msg, ok := lookup(doc, "message").(string); ok {
		f.message = msg
	}

	if status := scalar(lookup(doc, "error", "status")); status != "" {
		f.status = status
	} else {
		f.status = scalar(lookup(doc, "error", "code"))
	}
	return f, true
}

func classify(provider string, f fields, raw string) string {
	switch {
	case strings.EqualFold(provider, registry.ProviderGemini) && f.status == "NOT_FOUND":
		return geminiModelNotFound
	case strings.EqualFold(provider, registry.ProviderDeepSeek) && strings.Contains(strings.ToLower(f.message), "insufficient"):
		return deepSeekNoBalance
	}

	if strings.TrimSpace(f.message) != "" {
		return generic(provider, f.message)
	}
	return generic(provider, raw)
}

func generic(provider, detail string) string {
	return provider + " request failed: " + detail
}

func lookup(doc any, path ...string) any {
	cur := doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
