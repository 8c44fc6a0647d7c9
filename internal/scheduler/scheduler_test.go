package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbrain/pkg/config"
	"healthbrain/pkg/logger"
)

type fakePublisher struct {
	mu    sync.Mutex
	queue string
	jobs  [][]byte
	err   error
}

func (p *fakePublisher) Publish(queue string, data []byte, _ uint32) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.queue = queue
	p.jobs = append(p.jobs, data)
	return "job", nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func TestScheduler_Enqueue(t *testing.T) {
	pub := &fakePublisher{}
	s, err := New(config.ScheduleConfig{Spec: "@every 15m", AutoFix: true, Queue: "brain_run"}, pub, time.UTC, logger.NewNop())
	require.NoError(t, err)

	requestID, err := s.Enqueue(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "brain_run", pub.queue)
	assert.EqualValues(t, 1, s.Enqueued())
	assert.False(t, s.LastRun().IsZero())

	var job struct {
		Payload struct {
			Data struct {
				RequestID  string `json:"request_id"`
				ActionType string `json:"action_type"`
				ID         string `json:"id"`
				Data       struct {
					AutoFix bool `json:"auto_fix"`
				} `json:"data"`
			} `json:"data"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(pub.jobs[0], &job))
	assert.Equal(t, requestID, job.Payload.Data.RequestID)
	assert.Equal(t, "brain_run", job.Payload.Data.ActionType)
	assert.Equal(t, SourceScheduler, job.Payload.Data.ID)
	assert.True(t, job.Payload.Data.Data.AutoFix)
}

func TestScheduler_EnqueueError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("lmstfy down")}
	s, err := New(config.ScheduleConfig{Spec: "@every 15m", Queue: "brain_run"}, pub, nil, logger.NewNop())
	require.NoError(t, err)

	_, err = s.Enqueue(context.Background())
	assert.Error(t, err)
	assert.Zero(t, s.Enqueued())
	assert.True(t, s.LastRun().IsZero())
}

func TestScheduler_InvalidConfig(t *testing.T) {
	_, err := New(config.ScheduleConfig{Spec: "not a cron", Queue: "brain_run"}, &fakePublisher{}, time.UTC, logger.NewNop())
	assert.Error(t, err)

	_, err = New(config.ScheduleConfig{Spec: "@every 1m"}, &fakePublisher{}, time.UTC, logger.NewNop())
	assert.Error(t, err)
}

func TestScheduler_Ticks(t *testing.T) {
	pub := &fakePublisher{}
	s, err := New(config.ScheduleConfig{Spec: "@every 1s", Queue: "brain_run"}, pub, time.UTC, logger.NewNop())
	require.NoError(t, err)

	s.Start()
	s.Start()
	require.Eventually(t, func() bool { return pub.count() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
	s.Stop()

	assert.GreaterOrEqual(t, s.Enqueued(), int64(1))
}
