package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"preflight/internal/service"
	"preflight/pkg/logger"
)

// JobHandler handles job catalog operations
type JobHandler struct {
	catalogService *service.CatalogService
	historyService *service.HistoryService
}

// NewJobHandler creates job handler
func NewJobHandler(catalogService *service.CatalogService, historyService *service.HistoryService) *JobHandler {
	return &JobHandler{
		catalogService: catalogService,
		historyService: historyService,
	}
}

// ListJobs gets the job catalog
// @Summary List jobs
// @Description Get every job declared in the catalog
// @Tags jobs
// @Produce json
// @Success 200 {object} map[string]interface{} "Return format: {jobs: [], total: 0}"
// @Router /api/v1/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs := h.catalogService.ListJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob gets one job configuration
// @Summary Get job
// @Description Get the declared configuration of one job
// @Tags jobs
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} model.JobConfig
// @Router /api/v1/jobs/{name} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name required"})
		return
	}

	job := h.catalogService.FindJob(jobName)
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found: " + jobName})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetJobHistory gets the summarized execution history of one job
// @Summary Get job history
// @Description Get the historical context derived from the stored records over the lookback window
// @Tags jobs
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} model.HistoricalContext
// @Router /api/v1/jobs/{name}/history [get]
func (h *JobHandler) GetJobHistory(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name required"})
		return
	}

	if h.catalogService.FindJob(jobName) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found: " + jobName})
		return
	}

	hist, err := h.historyService.GetHistoricalContext(c.Request.Context(), jobName)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to get history for %s: %v", jobName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, hist)
}

// ListJobRecords gets raw execution records of one job
// @Summary List job records
// @Description Get stored execution records for a job, newest first, paged
// @Tags jobs
// @Produce json
// @Param name path string true "Job name"
// @Param limit query int false "Return count limit (default 20)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {object} map[string]interface{} "Return format: {records: [], total: 0, limit: 20, offset: 0}"
// @Router /api/v1/jobs/{name}/records [get]
func (h *JobHandler) ListJobRecords(c *gin.Context) {
	jobName := c.Param("name")
	if jobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name required"})
		return
	}

	if h.catalogService.FindJob(jobName) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found: " + jobName})
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

	records, total, err := h.historyService.ListRecords(c.Request.Context(), jobName, limit, offset)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list records for %s: %v", jobName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
