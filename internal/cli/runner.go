// Package cli implements the one-shot modes: run a single prediction
// cycle or a failure-pattern analysis against the live cluster and
// render the result to the terminal, without starting the server, queue
// or database.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/pretty"

	"preflight/internal/model"
	"preflight/internal/service"
	k8scol "preflight/pkg/collector/k8s"
	"preflight/pkg/config"
	"preflight/pkg/constants"
	"preflight/pkg/interfaces"
	"preflight/pkg/llm/anthropic"
	"preflight/pkg/logger"
	"preflight/pkg/predictor"
)

// cliEnv holds the collaborators every one-shot mode shares.
type cliEnv struct {
	cfg      *config.Config
	catalog  *service.CatalogService
	capacity *k8scol.CapacityCollector
	history  *liveHistory
	llm      *anthropic.Client
	modelCfg interfaces.ModelConfig
}

// setup loads config, initializes logging and builds the shared
// one-shot collaborators. The caller owns logger.Sync.
func setup() (*cliEnv, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	cfg := config.GlobalConfig

	catalogService, err := service.NewCatalogService(cfg.Predictor.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load job catalog: %w", err)
	}

	client, err := k8scol.NewClientset(cfg.Cluster.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	historyCollector := k8scol.NewHistoryCollector(client, cfg.Cluster.Namespace, cfg.Cluster.LabelSelector)

	llmClient, err := anthropic.NewClient(&cfg.Anthropic)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}

	return &cliEnv{
		cfg:      cfg,
		catalog:  catalogService,
		capacity: k8scol.NewCapacityCollector(client, cfg.Cluster.Name),
		history:  &liveHistory{collector: historyCollector, lookback: cfg.Predictor.LookbackWindow()},
		llm:      llmClient,
		modelCfg: interfaces.ModelConfig{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   cfg.Anthropic.MaxTokens,
			Temperature: cfg.Anthropic.Temperature,
		},
	}, nil
}

// Run executes one prediction cycle for jobName and prints the
// colorized report. Returns the process exit code: 0 when the cycle
// completes, 1 on any terminal error.
func Run(jobName string) int {
	ctx := context.Background()

	env, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	// One-shot mode reads history straight off the cluster and skips
	// every persistence collaborator except the file sink. A prediction
	// without a capacity snapshot is refused, so cluster access is
	// required here.
	predictionService := service.NewPredictionService(
		env.catalog,
		env.history,
		env.capacity,
		predictor.NewEngine(env.llm, nil),
		nil,
		nil,
		nil,
		nil,
		env.modelCfg,
		env.cfg.Predictor.OutputDir,
	)

	saved, err := predictionService.RunCycle(ctx, jobName, constants.OriginCLI)
	if err != nil {
		logger.ErrorCtx(ctx, "prediction failed for job %s: %v", jobName, err)
		return 1
	}

	presenter := predictor.NewPresenter(true)
	fmt.Print(presenter.Render(saved.JobName, saved.Prediction))

	if data, err := json.Marshal(saved.Prediction); err == nil {
		fmt.Println("Raw prediction payload:")
		fmt.Println(string(pretty.Pretty(data)))
	}

	return 0
}

// RunAnalysis asks the model for a pattern analysis of jobName's recent
// failures, read straight off the cluster, and prints the prose report.
// Returns the process exit code: 0 when the analysis completes, 1 on
// any error.
func RunAnalysis(jobName string) int {
	ctx := context.Background()

	env, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	analysisService := service.NewAnalysisService(
		env.catalog,
		env.history,
		predictor.NewFailureAnalyzer(env.llm),
		env.modelCfg,
	)

	analysis, err := analysisService.AnalyzeFailures(ctx, jobName)
	if err != nil {
		logger.ErrorCtx(ctx, "failure analysis failed for job %s: %v", jobName, err)
		return 1
	}

	fmt.Printf("=== Historical Failure Analysis: %s ===\n\n", jobName)
	if analysis.FailureCount == 0 {
		fmt.Println("No failures found in historical data")
		return 0
	}

	fmt.Printf("Found %d failures. Analyzing patterns...\n\n", analysis.FailureCount)
	fmt.Println(analysis.Analysis)
	return 0
}

// liveHistory feeds a cycle from a direct cluster read instead of the
// server's MySQL-backed store.
type liveHistory struct {
	collector *k8scol.HistoryCollector
	lookback  time.Duration
}

func (h *liveHistory) GetHistoricalContext(ctx context.Context, jobName string) (model.HistoricalContext, error) {
	records, err := h.RecentExecutions(ctx, jobName)
	if err != nil {
		return model.HistoricalContext{}, err
	}
	return predictor.Summarize(records, jobName), nil
}

// RecentExecutions returns the job's runs over the lookback window. The
// collector reads the whole namespace, so other jobs' runs are filtered
// out here.
func (h *liveHistory) RecentExecutions(ctx context.Context, jobName string) ([]model.ExecutionRecord, error) {
	since := time.Now().UTC().Add(-h.lookback)
	records, err := h.collector.CollectHistory(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to collect execution history: %w", err)
	}

	var matched []model.ExecutionRecord
	for i := range records {
		if records[i].JobName == jobName {
			matched = append(matched, records[i])
		}
	}
	return matched, nil
}
