// ABOUTME: Command line entry point for fetching RSS, Atom and JSON feeds
// ABOUTME: Fetches URLs once or polls a watched feed list on an interval

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"feedfetcher/infrastructure/logger/structured"
	"feedfetcher/pkg/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("feedfetch", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	listPath := fs.String("list", "", "YAML feed list to poll (overrides FEED_LIST)")
	delta := fs.Bool("delta", false, "merge new entries with previously seen ones")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: feedfetch [flags] [url ...]\n\n")
		fmt.Fprintf(fs.Output(), "Fetches the given URLs once, or polls the feed list when no URLs are given.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if *listPath != "" {
		cfg.Poll.FeedList = *listPath
	}
	if *delta {
		cfg.Fetcher.DeltaEncoding = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	logger, err := structured.NewLogger(structured.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}

	urls := fs.Args()
	if len(urls) == 0 && cfg.Poll.FeedList == "" {
		fs.Usage()
		return 2
	}

	a, err := newApp(cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("Failed to start", map[string]interface{}{"error": err.Error()})
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting feed fetcher", map[string]interface{}{
		"cache_type": cfg.Cache.Type,
		"delta":      cfg.Fetcher.DeltaEncoding,
		"urls":       len(urls),
		"feed_list":  cfg.Poll.FeedList,
	})

	if len(urls) > 0 {
		if err := a.fetchAll(ctx, urls); err != nil {
			return 1
		}
		return 0
	}

	if err := a.poll(ctx, cfg.Poll.FeedList); err != nil {
		logger.Error("Polling stopped", map[string]interface{}{"error": err.Error()})
		return 1
	}
	logger.Info("Feed fetcher stopped", nil)
	return 0
}
