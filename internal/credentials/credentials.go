// Package credentials resolves the named secrets that hold provider API keys.
package credentials

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrNotFound means the credential is not set in the store.
var ErrNotFound = errors.New("credential not set")

// Store looks up a credential by its variable name, e.g. GEMINI_API_KEY.
type Store interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// EnvStore reads process environment variables. Blank values count as unset.
type EnvStore struct{}

func (EnvStore) Lookup(_ context.Context, name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return strings.TrimSpace(v), nil
}

// Chain consults each store in order and returns the first hit. Errors other
// than ErrNotFound stop the search.
type Chain []Store

func (c Chain) Lookup(ctx context.Context, name string) (string, error) {
	for _, s := range c {
		v, err := s.Lookup(ctx, name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", ErrNotFound
}
