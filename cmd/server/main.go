package main

import (
	"context"
	"log/slog"
	"os"
	_ "time/tzdata"

	"go-sales-agent/internal/ai"
	"go-sales-agent/internal/analytics"
	"go-sales-agent/internal/assistant"
	"go-sales-agent/internal/config"
	"go-sales-agent/internal/observability"
	"go-sales-agent/internal/pos"
	"go-sales-agent/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Log)
	slog.SetDefault(logger)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc := cfg.Location()

	// --- FEATURE FLAG: live POS data ---
	var sources *assistant.Sources
	if cfg.POS.Enabled() {
		client := pos.NewClient(cfg.POS, loc, logger)
		classifier := analytics.NewChannelClassifier(cfg.Business.DeliveryPlatforms)
		aggregator := analytics.NewAggregator(client, cfg.POS.ShopID, classifier, loc, logger)
		sources = &assistant.Sources{
			Aggregator: aggregator,
			Comparator: analytics.NewComparator(aggregator, loc),
			Ranker:     analytics.NewRanker(client, cfg.POS.ShopID),
		}
		logger.Info("POS integration enabled", "account_id", cfg.POS.AccountID, "shop_id", cfg.POS.ShopID)
	} else {
		logger.Warn("POS integration is DISABLED, answers will not include live sales data")
	}

	// --- FEATURE FLAG: language model ---
	var llm assistant.LanguageModel
	var agent *ai.Agent
	if cfg.LLM.Enabled() {
		agent, err = ai.NewAgent(context.Background(), cfg.LLM, logger)
		if err != nil {
			logger.Error("failed to create language model client", "error", err)
			os.Exit(1)
		}
		llm = agent
		logger.Info("language model enabled", "model", cfg.LLM.Model)
	} else {
		logger.Warn("language model is DISABLED, answers will be raw sales data")
	}

	bot := assistant.New(sources, llm, cfg.Business.Name, loc, logger)

	opts := server.Options{Asker: bot, Sources: sources, LLMReady: llm != nil}
	if cfg.Slack.Enabled() {
		opts.Poster = slack.New(cfg.Slack.BotToken)
	}

	srv := server.New(cfg, opts, logger)
	if agent != nil {
		srv.RegisterShutdownHook(func(ctx context.Context) error { return agent.Close() })
	}

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
