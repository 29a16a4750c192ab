package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"preflight/internal/model"
	"preflight/internal/service"
	"preflight/pkg/logger"
)

// RecordHandler handles execution record ingestion
type RecordHandler struct {
	historyService *service.HistoryService
}

// NewRecordHandler creates record handler
func NewRecordHandler(historyService *service.HistoryService) *RecordHandler {
	return &RecordHandler{
		historyService: historyService,
	}
}

// IngestRecords stores execution records pushed by an external producer
// @Summary Ingest execution records
// @Description Store execution records; job names are normalized and failures categorized on the way in
// @Tags records
// @Accept json
// @Produce json
// @Param request body model.IngestRecordsRequest true "Records to store"
// @Success 200 {object} map[string]interface{} "Return format: {stored: 0}"
// @Router /api/v1/records [post]
func (h *RecordHandler) IngestRecords(c *gin.Context) {
	var req model.IngestRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorCtx(c.Request.Context(), "invalid ingest request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records required"})
		return
	}

	stored, err := h.historyService.IngestRecords(c.Request.Context(), req.Records)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecord) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.ErrorCtx(c.Request.Context(), "failed to ingest records: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stored": stored})
}
