package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedback-bot/internal/config"
	"feedback-bot/internal/conversation"
	"feedback-bot/internal/database"
	"feedback-bot/internal/handlers"
	"feedback-bot/internal/logger"
	"feedback-bot/internal/notifier"
	"feedback-bot/internal/promo"
	"feedback-bot/internal/repository"
	"feedback-bot/internal/scheduler"
	"feedback-bot/internal/state"
	"feedback-bot/internal/stats"
	"feedback-bot/internal/telegram"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	logger.Init(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("❌ Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Feedback storage
	feedbackRepo, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to open feedback storage")
	}
	defer closeStorage()

	schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := feedbackRepo.EnsureSchema(schemaCtx); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("❌ Failed to prepare feedback schema")
	}
	cancel()

	// Conversation state
	states, closeStates, err := openStateStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to open state store")
	}
	defer closeStates()

	client, err := telegram.NewClient(cfg.Bot.Token, cfg.Bot.RatePerSecond)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to connect to Telegram")
	}

	staff := buildNotifier(cfg, client)
	aggregator := stats.NewAggregator(feedbackRepo)

	engine := conversation.NewEngine(
		states,
		feedbackRepo,
		promo.NewGenerator(),
		aggregator,
		staff,
		conversation.Options{
			PromoValidDays: cfg.Promo.ValidDays,
			Texts:          conversation.Texts{RestaurantName: cfg.Bot.RestaurantName},
		},
	)

	if cfg.Digest.Cron != "" {
		digest, err := scheduler.NewDigest(cfg.Digest.Cron, cfg.Digest.Days, aggregator, staff)
		if err != nil {
			logger.Fatal().Err(err).Msg("❌ Failed to schedule digest")
		}
		digest.Start()
		defer digest.Stop()
	}

	// Staff HTTP API
	if cfg.Server.JWTSecret == "" {
		logger.Warn().Msg("⚠️  STAFF_JWT_SECRET is empty, staff API disabled")
	}
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.NewRouter(handlers.NewFeedbackHandler(feedbackRepo, aggregator), cfg.Server.JWTSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("🚀 HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("❌ HTTP server failed")
			stop()
		}
	}()

	logger.Info().Str("restaurant", cfg.Bot.RestaurantName).Msg("🚀 Feedback bot starting")
	telegram.NewTransport(client, engine).Run(ctx)

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("⚠️  HTTP server shutdown")
	}
	engine.Drain()
}

func openStorage(ctx context.Context, cfg *config.Config) (repository.FeedbackRepository, func(), error) {
	if cfg.Mongo.URI != "" {
		db, err := database.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("db", cfg.Mongo.DBName).Msg("✅ Feedback stored in MongoDB")
		return repository.NewMongoFeedbackRepo(db), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(ctx)
		}, nil
	}

	db, err := database.OpenSQL(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("✅ Feedback stored in SQL database")
	return repository.NewFeedbackRepo(db), func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

func openStateStore(ctx context.Context, cfg *config.Config) (state.Store, func(), error) {
	if cfg.Redis.URL == "" {
		return state.NewMemoryStore(), func() {}, nil
	}

	client, err := state.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	ttl := time.Duration(cfg.Redis.TTLHours) * time.Hour
	logger.Info().Dur("ttl", ttl).Msg("✅ Conversation state stored in Redis")
	return state.NewRedisStore(client, ttl), func() { _ = client.Close() }, nil
}

func buildNotifier(cfg *config.Config, client *telegram.Client) notifier.Notifier {
	multi := notifier.NewMulti()
	if cfg.Bot.ManagersChatID != 0 {
		multi.Add("telegram", notifier.NewTelegramNotifier(client, cfg.Bot.ManagersChatID))
	}
	if cfg.Slack.BotToken != "" && cfg.Slack.ChannelID != "" {
		multi.Add("slack", notifier.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.ChannelID))
	}
	if cfg.Email.ResendAPIKey != "" && cfg.Email.StaffAddress != "" {
		multi.Add("email", notifier.NewEmailNotifier(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.StaffAddress))
	}
	if multi.Len() == 0 {
		logger.Warn().Msg("⚠️  No staff channel configured, feedback cards go to the log")
		multi.Add("log", notifier.NewLogNotifier())
	}
	return multi
}
