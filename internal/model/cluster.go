package model

import "time"

// ClusterSnapshot point-in-time read of available compute capacity.
// One snapshot feeds one prediction cycle; a cycle must refuse to run
// without a usable snapshot.
type ClusterSnapshot struct {
	ClusterName       string    `json:"cluster_name"`
	AvailableCPUCores float64   `json:"available_cpu_cores"`
	AvailableMemoryGB float64   `json:"available_memory_gb"`
	NodeCount         int       `json:"node_count"`
	TakenAt           time.Time `json:"taken_at"`
}

// Usable reports whether the snapshot carries real capacity figures.
func (s *ClusterSnapshot) Usable() bool {
	return s != nil && s.NodeCount > 0 && (s.AvailableCPUCores > 0 || s.AvailableMemoryGB > 0)
}

// NodegroupInfo one EKS managed nodegroup
type NodegroupInfo struct {
	Name          string   `json:"name"`
	Status        string   `json:"status,omitempty"`
	InstanceTypes []string `json:"instance_types,omitempty"`
	DesiredSize   int32    `json:"desired_size"`
	VCPUs         int32    `json:"vcpus,omitempty"`     // per instance, from EC2 instance type
	MemoryMiB     int64    `json:"memory_mib,omitempty"` // per instance, from EC2 instance type
}

// EKSInfo control-plane and nodegroup description
type EKSInfo struct {
	ClusterName string          `json:"cluster_name"`
	Version     string          `json:"version,omitempty"`
	Status      string          `json:"status,omitempty"`
	Nodegroups  []NodegroupInfo `json:"nodegroups,omitempty"`
}

// FileSystemInfo one EFS filesystem
type FileSystemInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	State        string `json:"state,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	MountTargets int    `json:"mount_targets"`
}

// BucketInfo one S3 bucket relevant to the batch jobs
type BucketInfo struct {
	Name      string `json:"name"`
	Encrypted bool   `json:"encrypted"`
}

// IdentityInfo IAM wiring of the job service account
type IdentityInfo struct {
	ServiceAccount string   `json:"service_account,omitempty"`
	RoleARN        string   `json:"role_arn,omitempty"`
	Policies       []string `json:"policies,omitempty"`
}

// ClusterMetadata collected cloud-side context. Every section is
// best-effort: a failed lookup leaves its section empty rather than
// failing the collection.
type ClusterMetadata struct {
	EKS         *EKSInfo         `json:"eks,omitempty"`
	FileSystems []FileSystemInfo `json:"file_systems,omitempty"`
	Buckets     []BucketInfo     `json:"buckets,omitempty"`
	Identity    *IdentityInfo    `json:"identity,omitempty"`
	CollectedAt time.Time        `json:"collected_at"`
}
