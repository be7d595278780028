package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"model-gateway/internal/chat"
	"model-gateway/internal/registry"
)

const (
	defaultListen          = ":8080"
	defaultUpstreamTimeout = 60 * time.Second
	defaultMaxBodyBytes    = 1 << 20
)

type Config struct {
	Listen             string        `yaml:"listen"`
	UpstreamTimeout    time.Duration `yaml:"upstream_timeout"`
	DefaultTemperature *float64      `yaml:"default_temperature"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	CORS               CORS          `yaml:"cors"`
	Credentials        Credentials   `yaml:"credentials"`
	Models             []Model       `yaml:"models"`

	registry *registry.Registry
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Credentials struct {
	// SSMPrefix enables AWS SSM Parameter Store lookups after the environment.
	SSMPrefix string `yaml:"ssm_prefix"`
}

type Model struct {
	ModelID       string `yaml:"model_id"`
	Provider      string `yaml:"provider"`
	Adapter       string `yaml:"adapter"`
	CredentialEnv string `yaml:"credential_env"`
	APIBase       string `yaml:"api_base"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: defaults are invalid: %v", err))
	}
	return cfg
}

func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(content))
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = defaultListen
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = defaultUpstreamTimeout
	}
	if c.DefaultTemperature == nil {
		t := chat.DefaultTemperature
		c.DefaultTemperature = &t
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	for i := range c.Models {
		if strings.TrimSpace(c.Models[i].Provider) == "" {
			c.Models[i].Provider = defaultProvider(c.Models[i].Adapter)
		}
	}
}

func defaultProvider(adapter string) string {
	if strings.EqualFold(strings.TrimSpace(adapter), string(registry.KindGemini)) {
		return registry.ProviderGemini
	}
	return registry.ProviderOpenAI
}

// Validate checks every field and builds the model registry. An empty model
// list selects the built-in registry.
func (c *Config) Validate() error {
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream_timeout must not be negative")
	}
	if c.DefaultTemperature != nil && (*c.DefaultTemperature < 0 || *c.DefaultTemperature > 2) {
		return fmt.Errorf("default_temperature must be between 0 and 2")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}

	if len(c.Models) == 0 {
		c.registry = registry.Default()
		return nil
	}

	entries := make([]registry.ProviderConfig, 0, len(c.Models))
	for i, m := range c.Models {
		if strings.TrimSpace(m.ModelID) == "" {
			return fmt.Errorf("models[%d].model_id is required", i)
		}
		kind, err := registry.ParseKind(m.Adapter)
		if err != nil {
			return fmt.Errorf("models[%d].adapter: %w", i, err)
		}
		if strings.TrimSpace(m.CredentialEnv) == "" {
			return fmt.Errorf("models[%d].credential_env is required", i)
		}
		if kind == registry.KindOpenAICompatible && strings.TrimSpace(m.APIBase) == "" {
			return fmt.Errorf("models[%d].api_base is required for openai-compatible models", i)
		}
		entries = append(entries, registry.ProviderConfig{
			ModelID:            m.ModelID,
			Provider:           m.Provider,
			Kind:               kind,
			CredentialVariable: m.CredentialEnv,
			BaseURL:            m.APIBase,
		})
	}

	reg, err := registry.New(entries...)
	if err != nil {
		return err
	}
	c.registry = reg
	return nil
}

// Registry is only valid after Load, Default or Validate succeeded.
func (c *Config) Registry() *registry.Registry {
	return c.registry
}

func (c *Config) Temperature() float64 {
	if c.DefaultTemperature == nil {
		return chat.DefaultTemperature
	}
	return *c.DefaultTemperature
}
