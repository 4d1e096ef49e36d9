package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yassirelk/darijalearn/internal/cache"
	"github.com/yassirelk/darijalearn/internal/config"
	"github.com/yassirelk/darijalearn/internal/infra/postgres"
	"github.com/yassirelk/darijalearn/internal/logger"
	"github.com/yassirelk/darijalearn/internal/progress"
	"github.com/yassirelk/darijalearn/internal/repository"
	"github.com/yassirelk/darijalearn/internal/resume"
	"github.com/yassirelk/darijalearn/internal/xpsync"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote store pool.
	pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zlog.Fatal("connect to remote store", zap.Error(err))
	}
	defer pool.Close()

	// Local durable cache for snapshots.
	snapshots, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		zlog.Fatal("connect to local cache", zap.Error(err))
	}
	defer func() { _ = snapshots.Close() }()

	statsRepo := repository.NewStatsRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	pusher := xpsync.New(statsRepo, zlog)
	if err := pusher.StartRetryLoop(ctx, cfg.SyncInterval); err != nil {
		zlog.Fatal("start xp retry loop", zap.Error(err))
	}
	defer pusher.Stop()

	store := progress.NewStore(statsRepo, settingsRepo, snapshots, pusher, activityRepo, zlog)
	store.Restore(ctx)
	store.LoadUserData(ctx, cfg.UserID)
	store.UpdateStreak(ctx)

	resolver := resume.NewResolver(activityRepo, zlog)
	dest := resolver.Destination(ctx, cfg.UserID)

	profile := store.Profile()
	zlog.Info("session ready",
		zap.String("user_id", cfg.UserID),
		zap.Int("xp", profile.XP),
		zap.Int("level", profile.Level),
		zap.Int("streak", profile.Streak),
		zap.String("resume_route", string(dest.Route)),
		zap.String("resume_lesson", dest.LessonID),
		zap.String("resume_exercise", dest.ResumeExerciseID),
	)

	<-ctx.Done()
	zlog.Info("shutdown signal received")

	// Deliver anything still queued before exiting.
	pusher.Flush(context.Background())
}
