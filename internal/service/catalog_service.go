package service

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"sigs.k8s.io/yaml"

	"preflight/internal/model"
	"preflight/pkg/logger"
)

// CatalogService serves the declared job catalog. The catalog is loaded
// once at startup and read-only afterwards; predictions only make sense
// for jobs it names.
type CatalogService struct {
	path    string
	catalog *model.JobCatalog
}

// NewCatalogService loads and validates the job catalog from a YAML
// file. Every job needs a unique name and a parseable cron schedule.
func NewCatalogService(path string) (*CatalogService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job catalog: %w", err)
	}

	var catalog model.JobCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse job catalog: %w", err)
	}

	if len(catalog.Jobs) == 0 {
		return nil, fmt.Errorf("job catalog %s declares no jobs", path)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	seen := make(map[string]bool, len(catalog.Jobs))
	for _, job := range catalog.Jobs {
		if job.Name == "" {
			return nil, fmt.Errorf("job catalog %s contains a job without a name", path)
		}
		if seen[job.Name] {
			return nil, fmt.Errorf("duplicate job name in catalog: %s", job.Name)
		}
		seen[job.Name] = true

		if _, err := parser.Parse(job.Schedule); err != nil {
			return nil, fmt.Errorf("invalid schedule for job %s: %w", job.Name, err)
		}
	}

	logger.Infof("loaded job catalog from %s: %d jobs", path, len(catalog.Jobs))
	return &CatalogService{path: path, catalog: &catalog}, nil
}

// ListJobs returns every catalog job.
func (s *CatalogService) ListJobs() []model.JobConfig {
	return s.catalog.Jobs
}

// FindJob returns the named job, or nil when the catalog does not
// declare it.
func (s *CatalogService) FindJob(name string) *model.JobConfig {
	return s.catalog.Find(name)
}
