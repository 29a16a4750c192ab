package service

import (
	"context"
	"fmt"

	"preflight/internal/model"
	"preflight/pkg/interfaces"
)

// ClusterService exposes the live cluster collectors to the API.
type ClusterService struct {
	capacity interfaces.CapacitySource
	metadata interfaces.MetadataSource
}

// NewClusterService creates a cluster service. Either source may be nil
// when its collector is not configured.
func NewClusterService(capacity interfaces.CapacitySource, metadata interfaces.MetadataSource) *ClusterService {
	return &ClusterService{capacity: capacity, metadata: metadata}
}

// GetSnapshot reads current schedulable capacity from the cluster.
func (s *ClusterService) GetSnapshot(ctx context.Context) (*model.ClusterSnapshot, error) {
	if s.capacity == nil {
		return nil, fmt.Errorf("no capacity collector configured")
	}
	return s.capacity.Snapshot(ctx)
}

// GetMetadata collects the AWS-side metadata document.
func (s *ClusterService) GetMetadata(ctx context.Context) (*model.ClusterMetadata, error) {
	if s.metadata == nil {
		return nil, fmt.Errorf("no metadata collector configured")
	}
	return s.metadata.CollectMetadata(ctx)
}
