package models

import (
	"model-gateway/internal/registry"
)

type ListResponse struct {
	Models []Model `json:"models"`
}

type Model struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Adapter  string `json:"adapter"`
}

// BuildListResponse never exposes credential variable names or endpoints.
func BuildListResponse(reg *registry.Registry) ListResponse {
	entries := reg.Models()
	items := make([]Model, 0, len(entries))
	for _, e := range entries {
		items = append(items, Model{
			ID:       e.ModelID,
			Provider: e.Provider,
			Adapter:  string(e.Kind),
		})
	}
	return ListResponse{Models: items}
}
