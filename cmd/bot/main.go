package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-co-op/gocron/v2"
	goredis "github.com/redis/go-redis/v9"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/delivery/discord"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	filerepo "giveaway-bot-backend/internal/features/giveaway/repository/file"
	redisrepo "giveaway-bot-backend/internal/features/giveaway/repository/redis"
	giveawayservice "giveaway-bot-backend/internal/features/giveaway/service"
	statusservice "giveaway-bot-backend/internal/features/status/service"
	httpserver "giveaway-bot-backend/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init("giveaway-bot-backend", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting giveaway bot")

	repo, err := newRepository(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer repo.Close()

	svc := giveawayservice.NewGiveawayService(repo)

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	handler := discord.NewHandler(session, svc, cfg)
	handler.Register()
	svc.SetNotifier(handler)

	if err := session.Open(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Discord gateway")
	}
	defer session.Close()

	startedAt := time.Now()
	status := statusservice.NewStatusService(session, repo, cfg)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	// Expiry checks and countdown refreshes. Singleton mode keeps a slow
	// run from piling up behind itself.
	_, err = scheduler.NewJob(
		gocron.DurationJob(giveawayservice.TickInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), giveawayservice.TickInterval)
			defer cancel()
			if err := svc.Tick(ctx); err != nil {
				logger.Error().Err(err).Msg("Giveaway tick failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule giveaway tick")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(statusservice.RefreshInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := status.Refresh(ctx); err != nil {
				logger.Warn().Err(err).Msg("Status panel refresh failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule status panel refresh")
	}

	scheduler.Start()

	server := httpserver.NewServer(cfg, repo, startedAt)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shut down")
	}
	if err := scheduler.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Scheduler shutdown failed")
	}

	logger.Info().Msg("Bot exited")
}

func newRepository(cfg *config.Config) (repository.GiveawayRepository, error) {
	switch cfg.Store.Backend {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis unavailable: %w", err)
		}
		return redisrepo.New(client), nil
	case "file":
		return filerepo.New(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
