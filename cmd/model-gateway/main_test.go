package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"model-gateway/internal/credentials"
	"model-gateway/internal/registry"
)

type mapStore map[string]string

func (m mapStore) Lookup(_ context.Context, name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", credentials.ErrNotFound
}

func TestPrintModelsNeverPrintsKeys(t *testing.T) {
	var out bytes.Buffer
	err := printModels(context.Background(), &out, registry.Default(), mapStore{"OPENAI_API_KEY": "sk-secret"})
	require.NoError(t, err)

	text := out.String()
	require.NotContains(t, text, "sk-secret")

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, registry.Default().Len()+1)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		switch fields[3] {
		case "OPENAI_API_KEY":
			require.Equal(t, "yes", fields[4], line)
		default:
			require.Equal(t, "no", fields[4], line)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.env")
	require.NoError(t, os.WriteFile(path, []byte("GATEWAY_DOTENV_TEST=from-file\n"), 0o600))
	t.Setenv("GATEWAY_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("GATEWAY_DOTENV_TEST"))

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "from-file", os.Getenv("GATEWAY_DOTENV_TEST"))

	require.Error(t, loadEnvFile(filepath.Join(dir, "missing.env")))
}

func TestLoadEnvFileKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.env")
	require.NoError(t, os.WriteFile(path, []byte("GATEWAY_DOTENV_KEEP=from-file\n"), 0o600))
	t.Setenv("GATEWAY_DOTENV_KEEP", "from-env")

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "from-env", os.Getenv("GATEWAY_DOTENV_KEEP"))
}

func TestLoadConfigDefaultsToBuiltInRegistry(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	_, err = cfg.Registry().Lookup("deepseek-chat")
	require.NoError(t, err)
}

func TestNewCredentialStoreWithoutSSM(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	store, err := newCredentialStore(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, store.(credentials.Chain), 1)
}
