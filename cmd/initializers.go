package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"preflight/app/handler"
	"preflight/app/router"
	"preflight/internal/service"
	awscol "preflight/pkg/collector/aws"
	k8scol "preflight/pkg/collector/k8s"
	"preflight/pkg/config"
	"preflight/pkg/interfaces"
	"preflight/pkg/llm/anthropic"
	"preflight/pkg/logger"
	"preflight/pkg/notification"
	"preflight/pkg/predictor"
	queue "preflight/pkg/queue/asynq"
	mysqlstore "preflight/pkg/store/mysql"
	redisstore "preflight/pkg/store/redis"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
		logger.InfoCtx(app.ctx, "Logging system has been closed")
	})
	return nil
}

// initMySQL initializes MySQL
func (app *Application) initMySQL() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		app.config.MySQL.User,
		app.config.MySQL.Password,
		app.config.MySQL.Host,
		app.config.MySQL.Port,
		app.config.MySQL.Database,
	)

	repo, err := mysqlstore.NewRepository(dsn)
	if err != nil {
		return err
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.ctx, "MySQL connection has been closed")
	})

	return nil
}

// initRedis initializes Redis
func (app *Application) initRedis() error {
	client, err := redisstore.NewRedisClient(&app.config.Redis)
	if err != nil {
		return err
	}

	app.redisClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "Redis connection has been closed")
	})

	return nil
}

// initCollectors initializes the cluster collectors. The Kubernetes
// client is required; AWS metadata collection is optional and a failed
// SDK setup only disables the metadata endpoint.
func (app *Application) initCollectors() error {
	client, err := k8scol.NewClientset(app.config.Cluster.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	app.k8sClient = client
	app.capacityCollector = k8scol.NewCapacityCollector(client, app.config.Cluster.Name)
	app.historyCollector = k8scol.NewHistoryCollector(client, app.config.Cluster.Namespace, app.config.Cluster.LabelSelector)

	sdkCfg, err := awscol.NewAWSConfig(app.ctx, &app.config.AWS)
	if err != nil {
		logger.WarnCtx(app.ctx, "AWS SDK config unavailable, metadata collection disabled: %v", err)
		return nil
	}
	app.metadataCollector = awscol.NewMetadataCollector(sdkCfg, client, &app.config.Cluster, app.config.AWS.BucketFilter)

	return nil
}

// initQueue initializes the asynq queue manager. The task handler is
// registered once the prediction service exists.
func (app *Application) initQueue() error {
	manager, err := queue.NewManager(app.config)
	if err != nil {
		return err
	}

	app.queueManager = manager
	app.registerCleanup(func() {
		manager.Close()
		logger.InfoCtx(app.ctx, "Queue client has been closed")
	})

	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	// Job catalog is the source of truth for what can be predicted
	catalogService, err := service.NewCatalogService(app.config.Predictor.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load job catalog: %w", err)
	}
	app.catalogService = catalogService

	// Execution history: synced from the cluster, read from MySQL
	app.historyService = service.NewHistoryService(
		app.mysqlRepo.Execution,
		app.historyCollector,
		app.config.Predictor.LookbackWindow(),
	)

	// Cluster state service; the metadata collector may be absent
	var metadataSource interfaces.MetadataSource
	if app.metadataCollector != nil {
		metadataSource = app.metadataCollector
	}
	app.clusterService = service.NewClusterService(app.capacityCollector, metadataSource)

	// Model boundary and prediction engine
	llmClient, err := anthropic.NewClient(&app.config.Anthropic)
	if err != nil {
		return fmt.Errorf("failed to create anthropic client: %w", err)
	}
	app.llmClient = llmClient

	app.streamHub = handler.NewStreamHub()
	app.engine = predictor.NewEngine(llmClient, app.streamHub)
	app.notifier = notification.NewWebhookNotifier()

	modelCfg := interfaces.ModelConfig{
		Model:       app.config.Anthropic.Model,
		MaxTokens:   app.config.Anthropic.MaxTokens,
		Temperature: app.config.Anthropic.Temperature,
	}

	app.predictionService = service.NewPredictionService(
		app.catalogService,
		app.historyService,
		app.capacityCollector,
		app.engine,
		app.mysqlRepo.Prediction,
		redisstore.NewPredictionCache(app.redisClient.GetClient(), app.config.Predictor.CacheTTL()),
		app.notifier,
		app.queueManager,
		modelCfg,
		app.config.Predictor.OutputDir,
	)

	// Queue worker runs the same cycle as the synchronous API path
	app.queueManager.RegisterHandler(queue.TypePredictionRun, queue.NewPredictionTaskHandler(app.predictionService))

	// Failure-pattern analysis reads the same stored history
	app.analysisService = service.NewAnalysisService(
		app.catalogService,
		app.historyService,
		predictor.NewFailureAnalyzer(llmClient),
		modelCfg,
	)

	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.jobHandler = handler.NewJobHandler(app.catalogService, app.historyService)
	app.recordHandler = handler.NewRecordHandler(app.historyService)
	app.predictionHandler = handler.NewPredictionHandler(app.predictionService)
	app.analysisHandler = handler.NewAnalysisHandler(app.analysisService)
	app.clusterHandler = handler.NewClusterHandler(app.clusterService)
	app.streamHandler = handler.NewStreamHandler(app.streamHub)

	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	// Initialize router
	r := router.NewRouter(app.jobHandler, app.recordHandler, app.predictionHandler, app.analysisHandler, app.clusterHandler, app.streamHandler)

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	// Create Gin engine
	app.ginEngine = gin.New()
	app.ginEngine.Use(gin.Recovery())

	// Setup routes
	r.Setup(app.ginEngine)

	// Create HTTP server
	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}

	return nil
}
