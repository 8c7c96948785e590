package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imagegallery/config"
	"imagegallery/controller"
	"imagegallery/database"
	"imagegallery/repository"
	"imagegallery/route"
	"imagegallery/service"
	"imagegallery/storage"
	"imagegallery/utils"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	objects, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to create S3 client", zap.Error(err))
	}

	images, closeStore, err := openImageRepository(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open metadata store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeStore()

	catalog := service.NewCatalog(images, objects, logger.Named("catalog"),
		service.WithPresignTTL(cfg.Storage.PresignTTL),
	)
	ic := controller.NewImageController(catalog, logger.Named("http"), int64(cfg.MaxUploadMB)<<20)

	store, err := route.SessionStore(cfg.Session)
	if err != nil {
		logger.Fatal("failed to create session store", zap.Error(err))
	}
	router := route.NewRouter(cfg, ic, store, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("bucket", objects.Bucket()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// openImageRepository connects the configured metadata backend.
func openImageRepository(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (service.ImageRepository, func(), error) {
	if cfg.Driver == "mongo" {
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoImageRepository(client.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		logger.Info("metadata store connected", zap.String("driver", "mongo"), zap.String("database", cfg.MongoDB))
		return repo, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("mongo disconnect failed", zap.Error(err))
			}
		}, nil
	}

	db, dialect, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("metadata store connected", zap.String("driver", dialect.String()))
	return repository.NewSQLImageRepository(db, dialect), func() {
		if err := db.Close(); err != nil {
			logger.Error("database close failed", zap.Error(err))
		}
	}, nil
}
