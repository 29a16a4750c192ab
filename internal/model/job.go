package model

// ResourceList CPU/memory quantities in Kubernetes notation ("2", "8Gi")
type ResourceList struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
}

// JobResources declared requests and limits for one job
type JobResources struct {
	Requests ResourceList `json:"requests"`
	Limits   ResourceList `json:"limits"`
}

// StorageMount one declared EFS mount
type StorageMount struct {
	FileSystemID string `json:"filesystem_id"`
	MountPath    string `json:"mount_path"`
}

// JobConfig declared configuration of one scheduled batch job.
// Immutable input, supplied by the job catalog.
type JobConfig struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schedule    string         `json:"schedule"` // cron expression
	Resources   JobResources   `json:"resources"`
	Storage     []StorageMount `json:"storage,omitempty"`
	IAM         []string       `json:"iam,omitempty"` // required IAM capabilities
}

// JobCatalog the full set of jobs this cluster runs
type JobCatalog struct {
	Jobs []JobConfig `json:"jobs"`
}

// Find returns the job with the given name, or nil.
func (c *JobCatalog) Find(name string) *JobConfig {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i]
		}
	}
	return nil
}
