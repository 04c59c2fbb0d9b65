// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"viracoach/internal/dto"
	"viracoach/internal/service"
	"viracoach/log"
)

// TaskHandlers provides handlers for queued task types.
type TaskHandlers struct{}

func NewTaskHandlers() *TaskHandlers {
	return &TaskHandlers{}
}

// HandleAnalysisTask processes one queued virality analysis. Every failure
// is wrapped in asynq.SkipRetry: a run either finishes or ends in a
// persisted terminal error, and recovery is a fresh user-initiated task,
// never an automatic re-run. The worker ctx is threaded into the pipeline
// so the task timeout stops a run at its next stage boundary.
func (h *TaskHandlers) HandleAnalysisTask(ctx context.Context, t *asynq.Task) error {
	var payload AnalysisPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.GetLogger().Info("[Queue] Processing analysis task",
		zap.String("task_id", payload.TaskID),
		zap.String("url", payload.URL))

	// fresh service per task: config edits and payload key overrides
	// both take effect
	svc, err := service.NewService(service.KeyOverrides{
		OpenaiKey: payload.OpenaiKey,
		GeminiKey: payload.GeminiKey,
	})
	if err != nil {
		return fmt.Errorf("failed to build service: %v: %w", err, asynq.SkipRetry)
	}

	err = svc.ProcessAnalysisTask(ctx, dto.StartAnalysisReq{
		Url:       payload.URL,
		OpenaiKey: payload.OpenaiKey,
		GeminiKey: payload.GeminiKey,
	}, payload.TaskID)
	if err != nil {
		return fmt.Errorf("analysis task %s: %v: %w", payload.TaskID, err, asynq.SkipRetry)
	}

	log.GetLogger().Info("[Queue] Analysis task completed",
		zap.String("task_id", payload.TaskID))
	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux.
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeAnalysisTask, h.HandleAnalysisTask)
}

// StartWorker starts the Asynq worker with registered handlers.
func StartWorker(q *Queue) error {
	handlers := NewTaskHandlers()

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
