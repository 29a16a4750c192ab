package main

import (
	"time"

	"github.com/go-redis/redis/v8"

	"preflight/internal/jobs"
	"preflight/pkg/logger"
	redisstore "preflight/pkg/store/redis"
)

func (app *Application) initJobs() error {
	if app.catalogService == nil || app.historyService == nil {
		logger.WarnCtx(app.ctx, "Service layer not fully initialized yet, skipping background job registration")
		return nil
	}

	manager := jobs.NewManager(app.ctx)

	// The scan lock prevents multiple replicas from enqueueing the same
	// due jobs. Without Redis the lock downgrades to single-instance mode.
	var redisClient *redis.Client
	if app.redisClient != nil {
		redisClient = app.redisClient.GetClient()
	}
	scanLock := redisstore.NewDistributedLock(redisClient, jobs.ScanLockKey)

	scanInterval := time.Duration(app.config.Predictor.ScanInterval) * time.Second
	scanHorizon := time.Duration(app.config.Predictor.ScanHorizon) * time.Second
	syncInterval := time.Duration(app.config.Predictor.SyncInterval) * time.Second

	manager.Register(jobs.NewScheduleScanJob(app.catalogService, app.queueManager, scanLock, scanInterval, scanHorizon))
	manager.Register(jobs.NewHistorySyncJob(app.historyService, syncInterval))

	app.jobsManager = manager
	return nil
}
