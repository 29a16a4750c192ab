package asynq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"preflight/pkg/config"
	"preflight/pkg/constants"
	"preflight/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TypePredictionRun is the task type for one prediction cycle
	TypePredictionRun = "prediction:run"
)

// PredictionPayload is the JSON payload of a prediction:run task
type PredictionPayload struct {
	JobName     string `json:"job_name"`
	RequestedBy string `json:"requested_by"` // "api", "schedule_scan"
}

// Manager queue manager. Prediction tasks are terminal on failure and
// never retried: re-running a failed cycle would bill another model
// call without new inputs.
type Manager struct {
	cfg    *config.Config
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewManager creates queue manager
func NewManager(cfg *config.Config) (*Manager, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Queues: map[string]int{
				"default": 10,
			},
		},
	)

	mux := asynq.NewServeMux()

	return &Manager{
		cfg:    cfg,
		client: client,
		server: server,
		mux:    mux,
	}, nil
}

// EnqueuePrediction enqueues one prediction cycle for a job and returns
// the task id. Implements interfaces.TaskEnqueuer.
func (m *Manager) EnqueuePrediction(ctx context.Context, jobName string) (string, error) {
	payload, err := json.Marshal(PredictionPayload{
		JobName:     jobName,
		RequestedBy: requestedBy(ctx),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal prediction payload: %w", err)
	}

	taskID := uuid.New().String()
	task := asynq.NewTask(TypePredictionRun, payload)

	opts := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.MaxRetry(0),
		asynq.Timeout(time.Duration(m.cfg.Queue.TaskTimeout) * time.Second),
	}

	info, err := m.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue prediction task: %w", err)
	}

	logger.InfoCtx(ctx, "prediction task enqueued, job: %s, task_id: %s, queue: %s", jobName, taskID, info.Queue)

	return taskID, nil
}

// GetTaskInfo retrieves task information
func (m *Manager) GetTaskInfo(taskID string) (*asynq.TaskInfo, error) {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     m.cfg.Redis.Addr,
		Password: m.cfg.Redis.Password,
		DB:       m.cfg.Redis.DB,
	})
	defer inspector.Close()

	info, err := inspector.GetTaskInfo("default", taskID)
	if err == nil {
		return info, nil
	}

	return nil, fmt.Errorf("task not found: %s", taskID)
}

// RegisterHandler registers task handler
func (m *Manager) RegisterHandler(pattern string, handler asynq.Handler) {
	m.mux.Handle(pattern, handler)
}

// Start starts queue processor
func (m *Manager) Start() error {
	logger.InfoCtx(context.Background(), "starting queue server")
	return m.server.Start(m.mux)
}

// Stop stops queue processor
func (m *Manager) Stop() {
	logger.InfoCtx(context.Background(), "stopping queue server")
	m.server.Stop()
	m.server.Shutdown()
}

// Close closes client
func (m *Manager) Close() error {
	return m.client.Close()
}

// GetPendingTaskCount retrieves pending task count
func (m *Manager) GetPendingTaskCount() (int, error) {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     m.cfg.Redis.Addr,
		Password: m.cfg.Redis.Password,
		DB:       m.cfg.Redis.DB,
	})
	defer inspector.Close()

	stats, err := inspector.GetQueueInfo("default")
	if err != nil {
		return 0, err
	}

	return stats.Pending, nil
}

type requestedByKey struct{}

// WithRequestedBy tags the context with the enqueue origin
func WithRequestedBy(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, requestedByKey{}, origin)
}

func requestedBy(ctx context.Context) string {
	if origin, ok := ctx.Value(requestedByKey{}).(string); ok && origin != "" {
		return origin
	}
	return constants.OriginAPI
}
