package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ray-remotestate/tableqr/config"
	"github.com/ray-remotestate/tableqr/database"
	"github.com/ray-remotestate/tableqr/database/dbhelper"
	"github.com/ray-remotestate/tableqr/database/memstore"
	"github.com/ray-remotestate/tableqr/handlers"
	"github.com/ray-remotestate/tableqr/repository"
	"github.com/ray-remotestate/tableqr/server"
	"github.com/ray-remotestate/tableqr/services"
	"github.com/ray-remotestate/tableqr/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config, error: %v", err)
	}
	setupLogger(cfg)

	store, err := openStore(cfg)
	if err != nil {
		logrus.Panicf("failed to initialize store, error: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("failed to close store")
		}
	}()

	if cfg.SeedDemo {
		err := services.SeedDemo(context.Background(), store, nil)
		if err != nil && !dbhelper.IsUniqueViolation(err) {
			logrus.Panicf("failed to seed demo data, error: %v", err)
		}
		if err != nil {
			logrus.Info("demo data already seeded by another instance")
		}
	}

	settings := services.SettingsFromConfig(cfg)
	tokens := utils.NewTokenManager(cfg.JWT)
	h := &handlers.Handler{
		Menu:   services.NewMenuService(store),
		Orders: services.NewOrderService(store, settings, nil),
		Calls:  services.NewServiceCallService(store, settings, nil),
		Staff:  services.NewStaffOrderService(store, nil),
		Auth:   services.NewAuthService(store, tokens),
		Store:  store,
	}
	srv := server.SetupRoutes(h, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("server started")
		return srv.Run(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down...")
		return srv.Shutdown(cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("server stopped with error")
	}
	logrus.Info("system is shut ..zzz")
}

func setupLogger(cfg *config.Config) {
	if cfg.LogFormat == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logrus.Warn("using the in-memory store, data is lost on restart")
		return memstore.New(), nil
	}
	db, err := database.ConnectAndMigrate(cfg.Database)
	if err != nil {
		return nil, err
	}
	logrus.Println("migration is successful")
	return dbhelper.NewStore(db), nil
}
