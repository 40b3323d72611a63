package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drover-ai/drover/internal/config"
	"github.com/drover-ai/drover/internal/observability"
	"github.com/drover-ai/drover/pkg/adapters/llm"
	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/drover"
	"github.com/drover-ai/drover/pkg/otel"
	storesqlite "github.com/drover-ai/drover/pkg/store/sqlite"

	// provider registration
	_ "github.com/drover-ai/drover/pkg/adapters/llm/anthropic"
	_ "github.com/drover-ai/drover/pkg/adapters/llm/gemini"
	_ "github.com/drover-ai/drover/pkg/adapters/llm/openai"
	_ "github.com/drover-ai/drover/pkg/adapters/sandbox/scrapybara"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "drover",
	Short:   "Drive a computer-use agent on a sandboxed instance.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console"})
			return err
		}
		if verbose {
			loaded.Logger.Level = "debug"
		}
		cfg = loaded
		observability.InitializeLogger(cfg.Logger)
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		observability.GetLogger().Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./drover.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each model turn and tool call")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// buildStack assembles the model client, the provisioner, and the run
// config from loaded configuration.
func buildStack(ctx context.Context) (llm.Client, sandbox.Provisioner, drover.Config, func(), error) {
	log := observability.GetLogger()

	shutdown, err := otel.Init(ctx, otel.Config{Stdout: cfg.Telemetry.Stdout})
	if err != nil {
		return nil, nil, drover.Config{}, nil, err
	}
	cleanup := func() { _ = shutdown(context.Background()) }

	client, err := llm.New(ctx, cfg.Model.Provider, map[string]any{
		"api_key":    cfg.Model.APIKey,
		"model":      cfg.Model.Model,
		"max_tokens": cfg.Model.MaxTokens,
	})
	if err != nil {
		cleanup()
		return nil, nil, drover.Config{}, nil, err
	}

	prov, err := sandbox.New(ctx, cfg.Sandbox.Provider, map[string]any{
		"api_key": cfg.Sandbox.APIKey,
	})
	if err != nil {
		cleanup()
		return nil, nil, drover.Config{}, nil, err
	}

	runCfg := drover.Config{
		Logger:        log,
		MaxIterations: cfg.Agent.MaxIterations,
		TokenBudget:   cfg.Agent.TokenBudget,
	}
	if cfg.Transcript.Enabled {
		ts, err := storesqlite.Open(ctx, cfg.Transcript.DSN)
		if err != nil {
			cleanup()
			return nil, nil, drover.Config{}, nil, err
		}
		runCfg.Transcripts = ts
		inner := cleanup
		cleanup = func() {
			_ = ts.Close()
			inner()
		}
	}
	return client, prov, runCfg, cleanup, nil
}
