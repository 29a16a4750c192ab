package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"preflight/internal/model"
	"preflight/internal/service"
	"preflight/pkg/constants"
	"preflight/pkg/logger"
	"preflight/pkg/predictor"
)

// PredictionHandler handles prediction operations
type PredictionHandler struct {
	predictionService *service.PredictionService
}

// NewPredictionHandler creates prediction handler
func NewPredictionHandler(predictionService *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
	}
}

// RunPrediction runs one synchronous prediction cycle
// @Summary Run prediction
// @Description Run one prediction cycle for a job and wait for the result
// @Tags predictions
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} model.RunPredictionResponse
// @Router /api/v1/predictions/{name} [post]
func (h *PredictionHandler) RunPrediction(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name required"})
		return
	}

	ctx := logger.WithRequestID(c.Request.Context(), uuid.New().String())
	saved, err := h.predictionService.RunCycle(ctx, jobName, constants.OriginAPI)
	if err != nil {
		writeCycleError(c, jobName, err)
		return
	}

	c.JSON(http.StatusOK, &model.RunPredictionResponse{
		ID:         saved.ID,
		JobName:    saved.JobName,
		Prediction: saved.Prediction,
		CreatedAt:  saved.Timestamp,
	})
}

// BatchPredict enqueues prediction tasks
// @Summary Enqueue batch predictions
// @Description Enqueue one prediction task per job; empty body means every catalog job
// @Tags predictions
// @Accept json
// @Produce json
// @Param request body model.BatchPredictRequest false "Job list"
// @Success 200 {object} model.BatchPredictResponse
// @Router /api/v1/predictions [post]
func (h *PredictionHandler) BatchPredict(c *gin.Context) {
	var req model.BatchPredictRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.ErrorCtx(c.Request.Context(), "invalid batch predict request: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	tasks, err := h.predictionService.EnqueueBatch(c.Request.Context(), req.Jobs)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.ErrorCtx(c.Request.Context(), "failed to enqueue batch predictions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, &model.BatchPredictResponse{Tasks: tasks})
}

// GetLatest gets the latest persisted prediction for a job
// @Summary Get latest prediction
// @Description Get the most recent persisted prediction (Redis cache, MySQL fallback)
// @Tags predictions
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} model.SavedPrediction
// @Router /api/v1/predictions/{name}/latest [get]
func (h *PredictionHandler) GetLatest(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name required"})
		return
	}

	saved, err := h.predictionService.GetLatest(c.Request.Context(), jobName)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to get latest prediction for %s: %v", jobName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if saved == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no prediction for job"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

// ListPredictions gets persisted prediction history for a job
// @Summary Get prediction history
// @Description Get persisted predictions for a job, newest first, paged
// @Tags predictions
// @Produce json
// @Param name path string true "Job name"
// @Param limit query int false "Return count limit (default 20)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {object} map[string]interface{} "Return format: {predictions: [], total: 0, limit: 20, offset: 0}"
// @Router /api/v1/predictions/{name} [get]
func (h *PredictionHandler) ListPredictions(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name required"})
		return
	}

	limit := 20
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsedLimit, err := strconv.Atoi(limitParam); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	offset := 0
	if offsetParam := c.Query("offset"); offsetParam != "" {
		if parsedOffset, err := strconv.Atoi(offsetParam); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	predictions, total, err := h.predictionService.ListPredictions(c.Request.Context(), jobName, limit, offset)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list predictions for %s: %v", jobName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": predictions,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// writeCycleError maps a failed prediction cycle to its status code:
// unknown job 404, missing snapshot 424, model boundary or reply
// rejection 502, anything else 500.
func writeCycleError(c *gin.Context, jobName string, err error) {
	ctx := c.Request.Context()

	var schemaErr *predictor.SchemaViolation
	var parseErr *predictor.ParseSyntaxError
	var svcErr *predictor.ServiceError

	switch {
	case errors.Is(err, service.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, predictor.ErrNoCapacity):
		logger.WarnCtx(ctx, "prediction refused for %s: %v", jobName, err)
		c.JSON(http.StatusFailedDependency, gin.H{"error": err.Error()})
	case errors.As(err, &schemaErr):
		logger.ErrorCtx(ctx, "prediction for %s rejected: %v", jobName, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "schema_violation"})
	case errors.As(err, &parseErr):
		logger.ErrorCtx(ctx, "prediction for %s rejected: %v", jobName, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "parse_syntax"})
	case errors.As(err, &svcErr):
		logger.ErrorCtx(ctx, "prediction for %s failed at the model boundary: %v", jobName, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.ErrorCtx(ctx, "prediction for %s failed: %v", jobName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
