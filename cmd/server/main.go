// cmd/server/main.go
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sozercan/ideator/internal/analyzer"
	"github.com/sozercan/ideator/internal/config"
	"github.com/sozercan/ideator/internal/llm"
	"github.com/sozercan/ideator/internal/reddit"
	"github.com/sozercan/ideator/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	redditClient, err := reddit.NewClient(&cfg.Reddit)
	if err != nil {
		log.Fatalf("failed to create Reddit client: %v", err)
	}

	llmProvider, err := llm.NewOpenAI(&cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create LLM provider: %v", err)
	}

	analyzer := analyzer.New(redditClient, llmProvider, cfg.Analyzer)

	srv := server.New(*cfg, analyzer)
	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"model", cfg.LLM.Model,
		"concurrency", cfg.Analyzer.Concurrency,
	)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
