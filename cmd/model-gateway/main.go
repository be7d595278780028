package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"model-gateway/internal/config"
	"model-gateway/internal/credentials"
)

const defaultEnvFile = ".env"

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	flags := &globalFlags{}
	root := newRootCmd(flags)

	if err := root.Execute(); err != nil {
		logger := newLogger(flags.logLevel)
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(flags *globalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:           "model-gateway",
		Short:         "Multi-provider chat completion gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(flags.envFile)
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to yaml config file (built-in model table when omitted)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", defaultEnvFile, "dotenv file with provider API keys")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newModelsCmd(flags))
	return root
}

// loadEnvFile never overrides variables that are already set. A missing
// default file is not an error.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == defaultEnvFile {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newCredentialStore(ctx context.Context, cfg *config.Config) (credentials.Store, error) {
	chain := credentials.Chain{credentials.EnvStore{}}

	prefix := strings.TrimSpace(cfg.Credentials.SSMPrefix)
	if prefix == "" {
		return chain, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	ps, err := credentials.NewParamStore(ssm.NewFromConfig(awsCfg), prefix)
	if err != nil {
		return nil, err
	}
	return append(chain, ps), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
