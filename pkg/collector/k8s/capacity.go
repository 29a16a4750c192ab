package k8s

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"preflight/internal/model"
)

// CapacityCollector reads node allocatable capacity. Implements
// interfaces.CapacitySource. Unlike history, capacity is mandatory
// prediction input: errors surface to the caller.
type CapacityCollector struct {
	client      kubernetes.Interface
	clusterName string
}

// NewCapacityCollector creates a capacity collector
func NewCapacityCollector(client kubernetes.Interface, clusterName string) *CapacityCollector {
	return &CapacityCollector{client: client, clusterName: clusterName}
}

// Snapshot sums allocatable CPU cores and memory GB over Ready nodes
func (c *CapacityCollector) Snapshot(ctx context.Context) (*model.ClusterSnapshot, error) {
	nodes, err := c.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	snapshot := &model.ClusterSnapshot{
		ClusterName: c.clusterName,
		TakenAt:     time.Now().UTC(),
	}

	for i := range nodes.Items {
		node := &nodes.Items[i]
		if !nodeReady(node) {
			continue
		}
		snapshot.NodeCount++

		cpu := node.Status.Allocatable[corev1.ResourceCPU]
		snapshot.AvailableCPUCores += float64(cpu.MilliValue()) / 1000

		mem := node.Status.Allocatable[corev1.ResourceMemory]
		snapshot.AvailableMemoryGB += float64(mem.Value()) / (1 << 30)
	}

	return snapshot, nil
}

func nodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
