package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"capychat/config"
	"capychat/database"
	"capychat/faq"
	"capychat/llmclient"
	"capychat/web"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info", "console")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx, cfg.DefaultTenantKey); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; FAQ generation and chatbot answers will return 503")
	}
	llm := llmclient.New(cfg, logger)

	generator := faq.NewGenerator(cfg, llm.For("extraction"), store, logger)
	answerer := faq.NewAnswerer(cfg, llm.For("answer"), logger)

	webServer, err := web.NewServer(store, generator, answerer, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize web server", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting capychat web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
