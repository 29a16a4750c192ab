package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	count int
	err   error
	calls atomic.Int32
}

func (f *fakeSyncer) SyncHistory(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return f.count, f.err
}

func TestHistorySyncRun(t *testing.T) {
	syncer := &fakeSyncer{count: 12}
	job := NewHistorySyncJob(syncer, time.Minute)

	assert.Equal(t, "history_sync", job.Name())
	assert.Equal(t, time.Minute, job.Interval())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, int32(1), syncer.calls.Load())
}

func TestHistorySyncRunError(t *testing.T) {
	syncErr := errors.New("cluster unreachable")
	job := NewHistorySyncJob(&fakeSyncer{err: syncErr}, time.Minute)

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, syncErr)
}

func TestManagerRunsRegisteredJobs(t *testing.T) {
	syncer := &fakeSyncer{}
	manager := NewManager(context.Background())
	manager.Register(NewHistorySyncJob(syncer, time.Hour))

	manager.Start()
	// The first run fires immediately; give it a moment.
	assert.Eventually(t, func() bool { return syncer.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)

	manager.Stop()
	manager.Wait()
}
