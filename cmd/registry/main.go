package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/ConsensusSentry/pkg/config"
	"github.com/NeuralTrust/ConsensusSentry/pkg/dependency_container"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/database"
	infraLogger "github.com/NeuralTrust/ConsensusSentry/pkg/infra/logger"
	_ "github.com/NeuralTrust/ConsensusSentry/pkg/infra/migrations"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/NeuralTrust/ConsensusSentry/pkg/server"
	"github.com/NeuralTrust/ConsensusSentry/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title ConsensusSentry Registry API
// @version 0.3.0
// @description Community governed guardrail registry and content moderation gateway.
// @BasePath /
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, err := infraLogger.NewLogger(infraLogger.Options{File: "registry.log"})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Close()
	}()

	if err := config.Load("config"); err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			logger.Fatalf("failed to load config: %v", err)
		}
		logger.Warn(err.Error())
	}
	cfg := config.GetConfig()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	prometheus.Initialize(prometheus.MetricsConfig{Enabled: cfg.Metrics.Enabled})

	var db *database.DB
	if cfg.Registry.Store == config.StorePostgres {
		db, err = database.NewDB(logger.Logger, &database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
		defer func() {
			_ = db.Close()
		}()
	}

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger.Logger,
		DB:     db,
	})
	if err != nil {
		logger.Fatalf("failed to initialize dependencies: %v", err)
	}

	if container.RedisListener != nil {
		go container.RedisListener.Listen(ctx, container.EventsChannel)
	}

	srv := server.NewRegistryServer(server.RegistryServerDI{
		MiddlewareTransport: container.MiddlewareTransport,
		HandlerTransport:    container.HandlerTransport,
		Config:              cfg,
		Logger:              logger.Logger,
	})

	logger.WithFields(logrus.Fields{
		"version":     version.Version,
		"store":       cfg.Registry.Store,
		"instance_id": container.InstanceID,
		"redis":       cfg.Redis.Enabled(),
	}).Info("registry configured")

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
		return
	}
	logger.Info("server gracefully stopped")
}
