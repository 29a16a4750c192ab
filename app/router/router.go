package router

import (
	"preflight/app/handler"
	"preflight/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	jobHandler        *handler.JobHandler
	recordHandler     *handler.RecordHandler
	predictionHandler *handler.PredictionHandler
	analysisHandler   *handler.AnalysisHandler
	clusterHandler    *handler.ClusterHandler
	streamHandler     *handler.StreamHandler
}

// NewRouter creates a new Router
func NewRouter(jobHandler *handler.JobHandler, recordHandler *handler.RecordHandler, predictionHandler *handler.PredictionHandler, analysisHandler *handler.AnalysisHandler, clusterHandler *handler.ClusterHandler, streamHandler *handler.StreamHandler) *Router {
	return &Router{
		jobHandler:        jobHandler,
		recordHandler:     recordHandler,
		predictionHandler: predictionHandler,
		analysisHandler:   analysisHandler,
		clusterHandler:    clusterHandler,
		streamHandler:     streamHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	// API v1 - catalog, history and prediction interface
	api := engine.Group("/api/v1")
	api.Use(middleware.AuthMiddleware()) // Simple token authentication, skipped when no key is configured
	{
		// Job catalog and execution history
		jobs := api.Group("/jobs")
		{
			jobs.GET("", r.jobHandler.ListJobs)                      // List catalog jobs
			jobs.GET("/:name", r.jobHandler.GetJob)                  // Get one job config
			jobs.GET("/:name/history", r.jobHandler.GetJobHistory)   // Summarized historical context
			jobs.GET("/:name/records", r.jobHandler.ListJobRecords)  // Raw execution records
			// Model-driven failure-pattern analysis
			jobs.POST("/:name/failure-analysis", r.analysisHandler.AnalyzeFailures)
		}

		// External execution record ingestion
		api.POST("/records", r.recordHandler.IngestRecords)

		// Prediction cycles and persisted results
		predictions := api.Group("/predictions")
		{
			predictions.GET("/stream", r.streamHandler.Stream) // Prediction event stream (WebSocket)
			predictions.POST("", r.predictionHandler.BatchPredict)
			predictions.POST("/:name", r.predictionHandler.RunPrediction)
			predictions.GET("/:name/latest", r.predictionHandler.GetLatest)
			predictions.GET("/:name", r.predictionHandler.ListPredictions)
		}

		// Cluster state
		cluster := api.Group("/cluster")
		{
			cluster.GET("/snapshot", r.clusterHandler.GetSnapshot)
			cluster.GET("/metadata", r.clusterHandler.GetMetadata)
		}
	}

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
