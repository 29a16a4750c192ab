package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"preflight/internal/service"
	"preflight/pkg/logger"
	"preflight/pkg/predictor"
)

// AnalysisHandler handles failure-pattern analysis operations
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// AnalyzeFailures runs a failure-pattern analysis for one job
// @Summary Analyze job failures
// @Description Ask the model for a pattern analysis of the job's stored failures over the lookback window
// @Tags jobs
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} model.FailureAnalysis
// @Router /api/v1/jobs/{name}/failure-analysis [post]
func (h *AnalysisHandler) AnalyzeFailures(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name required"})
		return
	}

	ctx := logger.WithRequestID(c.Request.Context(), uuid.New().String())
	analysis, err := h.analysisService.AnalyzeFailures(ctx, jobName)
	if err != nil {
		var svcErr *predictor.ServiceError
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.As(err, &svcErr):
			logger.ErrorCtx(ctx, "failure analysis for %s failed at the model boundary: %v", jobName, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			logger.ErrorCtx(ctx, "failure analysis for %s failed: %v", jobName, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, analysis)
}
