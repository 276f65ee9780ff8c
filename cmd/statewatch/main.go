package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loykin/statewatch"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	root := createRootCommand(globalFlags)
	root.AddCommand(
		createServeCommand(globalFlags),
		createReplayCommand(),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "statewatch",
		Short: "Subject event and state observation daemon",
		Long: `Statewatch records events and state transitions for named subjects,
keeps a bounded in-memory history per subject, and exposes it over HTTP.

Examples:
  statewatch serve --config=statewatch.toml   # Start observation daemon
  statewatch replay --file=capture.jsonl      # Replay a recorded capture`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file")
	return root
}

// createServeCommand creates the serve subcommand
func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Start the statewatch daemon",
		Long: `Start the statewatch daemon. All configuration is loaded from
a TOML config file.

Examples:
  statewatch serve config.toml
  statewatch serve --config=config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(globalFlags, args)
		},
	}
	return cmd
}

func runServe(flags *GlobalFlags, args []string) error {
	configPath := flags.ConfigPath
	if len(args) > 0 {
		configPath = args[0]
	}
	if configPath == "" {
		return fmt.Errorf("config file required for serve command. Use --config=config.toml or provide as argument")
	}

	cfg, err := statewatch.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if cfg.Server == nil {
		return fmt.Errorf("server must be configured to run serve command")
	}

	logCfg := statewatch.LogConfig{}
	if cfg.Log != nil {
		logCfg = *cfg.Log
	}
	log, logCloser, err := statewatch.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	obs := statewatch.NewWithOptions(statewatch.Options{
		MaxRecords: cfg.Observer.MaxRecords,
		Logger:     log,
	})

	if cfg.History != nil {
		sink, err := statewatch.NewHistorySink(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("failed to create history sink: %w", err)
		}
		obs.SetHistorySinks(sink)
		log.Info("history sink configured", "dsn", cfg.History.DSN)
	}

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		if err := statewatch.RegisterMetricsDefault(); err != nil {
			log.Warn("failed to register metrics", "error", err)
		}
		if cfg.Metrics.Listen != "" {
			go func() {
				if err := statewatch.ServeMetrics(cfg.Metrics.Listen); err != nil {
					log.Error("metrics server error", "error", err)
				}
			}()
		}
	}

	server, err := statewatch.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, obs)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	log.Info("statewatch server started", "listen", cfg.Server.Listen, "base_path", cfg.Server.BasePath)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	return server.Close()
}
