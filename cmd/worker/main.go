package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/denisok-ai/LytSlot/internal/jobs"
	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/internal/telegram"
	"github.com/denisok-ai/LytSlot/pkg/config"
	"github.com/denisok-ai/LytSlot/pkg/database"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("lytslot-worker")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting worker...", zap.String("environment", cfg.Server.Env))

	if !cfg.Queue.Enabled() {
		log.Fatal("QUEUE_BROKER_URL is not set; worker has nothing to consume")
	}

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db,
		&model.Tenant{}, &model.Channel{}, &model.Slot{}, &model.Order{},
		&model.Payment{}, &model.View{}, &model.APIKey{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	brokerOpts, err := redis.ParseURL(cfg.Queue.BrokerURL)
	if err != nil {
		log.Fatal("Invalid QUEUE_BROKER_URL", zap.Error(err))
	}
	broker := jobs.NewRedisQueue(redis.NewClient(brokerOpts))

	// Telegram sends are optional: without a token the tasks log and skip.
	var messenger jobs.Messenger
	if cfg.Telegram.BotToken != "" {
		sender, err := telegram.NewSender(cfg.Telegram.BotToken)
		if err != nil {
			log.Fatal("Failed to create telegram client", zap.Error(err))
		}
		messenger = sender
	} else {
		log.Warn("BOT_TOKEN not set; telegram sends disabled")
	}

	worker := jobs.NewWorker(broker)
	jobs.NewTasks(store.New(db), messenger).Register(worker)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		log.Error("Worker stopped", zap.Error(err))
	}
	log.Info("Worker shut down")
}
