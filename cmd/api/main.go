package main

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/pkg/database"
	"Trendspotter/internal/pkg/logger"
	"Trendspotter/internal/pkg/mongo"
	"Trendspotter/internal/pkg/redis"
	"Trendspotter/internal/pkg/security"
	"Trendspotter/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// infra 进程级连接，退出时统一释放
type infra struct {
	db    *gorm.DB
	mongo *mongoDB.Database
}

func main() {
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		os.Exit(1)
	}
	cfg := config.Cfg
	logger.InitLogger(cfg)

	if err := run(cfg); err != nil {
		log.Error("App exited with error", "err", err)
		os.Exit(1)
	}
	log.Info("App exited successfully.")
}

func run(cfg *config.Config) error {
	if err := security.InitJWT(cfg.JWT); err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	inf, err := connect(cfg)
	if err != nil {
		return err
	}
	defer inf.close()

	app, err := wire.BuildApplication(inf.db, inf.mongo, redis.GetRdbClient(), cfg)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	if err = app.CronMgr.RegisterJobs(); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.CronMgr.Run(ctx)
	})

	// captured_trends binlog 补记分，未启用时只走 HTTP 提交
	if app.KafkaManager != nil {
		g.Go(func() error {
			log.Info("Kafka Consumers starting...")
			return app.KafkaManager.Start(ctx)
		})
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// connect MySQL、Redis、MongoDB 任一不可用都拒绝启动
func connect(cfg *config.Config) (*infra, error) {
	db, err := database.NewGormDB(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if err = redis.InitRedis(cfg.Redis); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	mongoConn, err := mongo.InitMongo(cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &infra{db: db, mongo: mongoConn}, nil
}

func (i *infra) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := i.mongo.Client().Disconnect(ctx); err != nil {
		log.Warn("close mongo failed", "err", err)
	}
	if err := redis.GetRdbClient().Close(); err != nil {
		log.Warn("close redis failed", "err", err)
	}
	if sqlDB, err := i.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
