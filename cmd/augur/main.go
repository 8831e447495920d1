// Package main is the Augur CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/foresight/augur/internal/aggregate"
	"github.com/foresight/augur/internal/cli"
	"github.com/foresight/augur/internal/config"
	"github.com/foresight/augur/internal/fetch"
	"github.com/foresight/augur/internal/llm"
	"github.com/foresight/augur/internal/predict"
	"github.com/foresight/augur/internal/server"
	"github.com/foresight/augur/internal/storage"
	"github.com/foresight/augur/internal/watcher"
	"github.com/foresight/augur/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/augur/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "predict":
		runPredict()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("augur version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds the initialized application dependencies.
type Components struct {
	Storage      storage.Storage
	Aggregator   *aggregate.Aggregator
	LLM          llm.Client
	Orchestrator *predict.Orchestrator
}

// Close releases component resources.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// buildFetchers constructs the fetcher set from config. Disabled providers
// are skipped.
func buildFetchers(cfg *config.Config, logger *zap.Logger) []fetch.Fetcher {
	timeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second

	var fetchers []fetch.Fetcher
	if cfg.Sources.WebSearch.Enabled {
		fetchers = append(fetchers, fetch.NewWebSearchFetcher(
			cfg.Sources.WebSearch.BaseURL,
			cfg.Sources.WebSearch.APIKey,
			cfg.Sources.WebSearch.EngineID,
			timeout, logger))
	}
	if cfg.Sources.News.Enabled {
		fetchers = append(fetchers, fetch.NewNewsFetcher(
			cfg.Sources.News.BaseURL,
			cfg.Sources.News.APIKey,
			timeout, logger))
	}
	if cfg.Sources.Finance.Enabled {
		fetchers = append(fetchers, fetch.NewFinanceFetcher(
			cfg.Sources.Finance.BaseURL,
			cfg.Sources.Finance.APIKey,
			timeout, logger))
	}
	if cfg.Sources.RSS.Enabled {
		fetchers = append(fetchers, fetch.NewRSSFetcher(cfg.Sources.RSS.Feeds, timeout, logger))
	}
	return fetchers
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	aggregator := aggregate.New(buildFetchers(cfg, logger), aggregate.Options{
		MaxSources:      cfg.Aggregate.MaxSources,
		MinTitleLength:  cfg.Aggregate.MinTitleLength,
		PerFetcherLimit: cfg.Sources.PerFetcherLimit,
	}, logger)

	client, err := llm.NewHTTPClient(
		cfg.LLM.Provider,
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		logger,
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}

	return &Components{
		Storage:      store,
		Aggregator:   aggregator,
		LLM:          client,
		Orchestrator: predict.New(aggregator, client, cfg.LLM.MaxTokens, logger),
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Reload the fetcher set (RSS feeds, provider keys) when the config
	// file changes on disk.
	watchCtx, watchCancel := context.WithCancel(context.Background())
	configWatcher := watcher.NewConfigWatcher(resolvedConfigPath, func(newCfg *config.Config) {
		components.Aggregator.SetFetchers(buildFetchers(newCfg, logger))
	}, logger)
	if err := configWatcher.Start(watchCtx); err != nil {
		logger.Warn("config watcher disabled", zap.Error(err))
	}

	srv := server.NewServer(
		components.Orchestrator,
		components.Storage,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	configWatcher.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runPredict() {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	noSave := fs.Bool("no-save", false, "skip persisting the result")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: augur predict [flags] <query>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	result, err := components.Orchestrator.Predict(ctx, query)
	switch {
	case errors.Is(err, predict.ErrNoData):
		fmt.Fprintln(os.Stderr, "No data found for query.")
		os.Exit(1)
	case errors.Is(err, predict.ErrPredictionUnavailable):
		// Degraded result still prints; the caveat names the failure.
	case err != nil:
		fmt.Fprintf(os.Stderr, "Predict failed: %v\n", err)
		os.Exit(1)
	}

	if err == nil && !*noSave {
		if _, saveErr := components.Storage.SavePrediction(ctx, query, result); saveErr != nil {
			logger.Warn("persist failed", zap.Error(saveErr))
		}
	}

	if err := cli.WritePrediction(os.Stdout, result, cli.OutputFormat(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 20, "number of queries to list")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	queries, err := store.RecentQueries(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "History failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteHistory(os.Stdout, queries, cli.OutputFormat(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Database: %s\n", cfg.Storage.DatabasePath)
	fmt.Printf("Queries: %d\n", stats.Queries)
	fmt.Printf("Predictions: %d\n", stats.Predictions)
	fmt.Printf("Sources: %d\n", stats.Sources)
	fmt.Printf("Average confidence: %.1f\n", stats.AvgConfidence)
}

func printUsage() {
	fmt.Println(`augur - Research-backed prediction engine

Usage:
  augur server [flags]            Start the HTTP server
  augur predict [flags] <query>   Run a prediction for a question
  augur history [flags]           List stored queries and predictions
  augur status [flags]            Show storage statistics
  augur version                   Show version
  augur help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/augur/config.yaml)
  --debug            Enable debug logging

Predict Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)
  --no-save          Skip persisting the result

History Flags:
  --config string    Config file path
  --limit int        Number of queries to list (default: 20)
  --output string    Output format: text or json (default: text)

Examples:
  augur server
  augur predict "will the fed cut rates this quarter"
  augur predict --output json "bitcoin price above 100k by june"
  augur history --limit 10
  augur status`)
}
