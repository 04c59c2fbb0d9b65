// Package taskrunner executes analysis jobs with in-memory workers. It is
// the default execution host when no Redis queue is configured.
package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"viracoach/internal/dto"
	"viracoach/internal/service"
	"viracoach/log"
)

const (
	defaultQueueSize   = 64
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// AnalysisTaskPayload contains analysis enqueue data.
type AnalysisTaskPayload struct {
	TaskID    string `json:"task_id"`
	URL       string `json:"url"`
	OpenaiKey string `json:"openai_key,omitempty"`
	GeminiKey string `json:"gemini_key,omitempty"`
}

// Runner executes queued analyses with in-memory workers. There is no
// long-lived service: each task builds its own, so config edits and
// per-task key overrides both take effect.
type Runner struct {
	config Config

	queue  chan AnalysisTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(cfg Config) *Runner {
	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		config: cfg,
		queue:  make(chan AnalysisTaskPayload, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// Submit queues an analysis job.
func (r *Runner) Submit(payload AnalysisTaskPayload) error {
	if payload.URL == "" {
		return errors.New("analysis task url is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.String("task_id", payload.TaskID))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			r.processTask(workerID, payload)
		}
	}
}

func (r *Runner) processTask(workerID int, payload AnalysisTaskPayload) {
	svc, err := serviceForPayload(payload)
	if err != nil {
		log.GetLogger().Error("[TaskRunner] service build failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
		return
	}

	err = svc.ProcessAnalysisTask(r.ctx, dto.StartAnalysisReq{
		Url:       payload.URL,
		OpenaiKey: payload.OpenaiKey,
		GeminiKey: payload.GeminiKey,
	}, payload.TaskID)
	if err != nil {
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.String("task_id", payload.TaskID))
}

// serviceForPayload builds a fresh service for one task. Payload keys
// override the configured ones; empty payloads pick up whatever the config
// holds right now, so a key saved through the config endpoint applies to the
// next task without restarting the pool.
func serviceForPayload(payload AnalysisTaskPayload) (*service.Service, error) {
	return service.NewService(service.KeyOverrides{
		OpenaiKey: payload.OpenaiKey,
		GeminiKey: payload.GeminiKey,
	})
}

// Stop shuts down the runner and waits for in-flight tasks.
func (r *Runner) Stop() {
	if r.closed.Swap(true) {
		return
	}
	r.cancel()
	r.workerWg.Wait()
}
