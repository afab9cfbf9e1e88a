package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"insight-agent/assembler"
	"insight-agent/config"
	"insight-agent/document"
	"insight-agent/engine"
	"insight-agent/llmclient"
	"insight-agent/web"
	"insight-agent/webcontent"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	// Wire the pipeline. The LLM client is constructed regardless of
	// credentials; without them the engine answers heuristically.
	fetcher := webcontent.NewFetcher(cfg, logger)
	asm := assembler.New(cfg, fetcher, logger)
	client := llmclient.New(cfg, logger)
	analysisEngine := engine.New(cfg, client, asm, logger)
	parser := document.NewParser(logger)

	if client.Configured() {
		logger.Info("Language model configured", zap.String("model", cfg.LLMModel))
	} else {
		logger.Warn("No language model credentials found, running in heuristic mode")
	}

	webServer := web.NewServer(analysisEngine, parser, logger, cfg)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting Insight Agent web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
