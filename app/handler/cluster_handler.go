package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"preflight/internal/service"
	"preflight/pkg/logger"
)

// ClusterHandler handles cluster inspection operations
type ClusterHandler struct {
	clusterService *service.ClusterService
}

// NewClusterHandler creates cluster handler
func NewClusterHandler(clusterService *service.ClusterService) *ClusterHandler {
	return &ClusterHandler{
		clusterService: clusterService,
	}
}

// GetSnapshot gets the current capacity snapshot
// @Summary Get cluster snapshot
// @Description Read currently schedulable capacity from ready nodes
// @Tags cluster
// @Produce json
// @Success 200 {object} model.ClusterSnapshot
// @Router /api/v1/cluster/snapshot [get]
func (h *ClusterHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.clusterService.GetSnapshot(c.Request.Context())
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to take cluster snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetMetadata gets the collected AWS metadata document
// @Summary Get cluster metadata
// @Description Collect EKS, EFS, S3 and IAM metadata; failed sections come back empty
// @Tags cluster
// @Produce json
// @Success 200 {object} model.ClusterMetadata
// @Router /api/v1/cluster/metadata [get]
func (h *ClusterHandler) GetMetadata(c *gin.Context) {
	meta, err := h.clusterService.GetMetadata(c.Request.Context())
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to collect cluster metadata: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, meta)
}
