package service

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"viracoach/internal/artifact"
	"viracoach/internal/dto"
	"viracoach/internal/pipeline"
	"viracoach/internal/storage"
	"viracoach/internal/types"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
	"viracoach/pkg/util"
)

// ProcessAnalysisTask runs an analysis to completion on the calling
// goroutine. Queue and pool workers use it so their concurrency limits
// actually bound the number of running pipelines, and a canceled ctx stops
// the run at the next stage boundary. A non-empty taskId reuses an identity
// assigned at enqueue time.
func (s *Service) ProcessAnalysisTask(ctx context.Context, req dto.StartAnalysisReq, taskId string) error {
	run, task, err := s.prepareTask(req, taskId)
	if err != nil {
		return err
	}

	s.executeAnalysis(ctx, run, task)
	if run.State == pipeline.StateError {
		return run.Err
	}
	return nil
}

// RegisterAnalysisTask persists a pollable task row without starting the
// pipeline. Dispatchers call it before handing the task id to a queue or
// pool worker, which later runs ProcessAnalysisTask under the same id.
func (s *Service) RegisterAnalysisTask(req dto.StartAnalysisReq) (string, error) {
	task, err := registerTaskRow(req, "")
	if err != nil {
		return "", err
	}
	return task.TaskId, nil
}

func registerTaskRow(req dto.StartAnalysisReq, taskId string) (*types.AnalysisTask, error) {
	src := strings.TrimSpace(req.Url)
	if src == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "Video source is required")
	}
	if taskId == "" {
		taskId = uuid.NewString()
	}

	task := &types.AnalysisTask{
		TaskId:    taskId,
		VideoSrc:  src,
		VideoStem: stemForSource(src),
		Stage:     string(pipeline.StateIdle),
		Status:    types.AnalysisTaskStatusProcessing,
		StatusMsg: "queued",
	}
	if err := storage.SaveTask(task); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to persist task", err)
	}
	return task, nil
}

func (s *Service) prepareTask(req dto.StartAnalysisReq, taskId string) (*pipeline.RunContext, *types.AnalysisTask, error) {
	task, err := registerTaskRow(req, taskId)
	if err != nil {
		return nil, nil, err
	}

	run := pipeline.NewRunContext(task.TaskId, task.VideoSrc, task.VideoStem)
	runs.Store(task.TaskId, run)
	return run, task, nil
}

// executeAnalysis drives the sequencer to a terminal state, persisting the
// task row and publishing progress after every transition.
func (s *Service) executeAnalysis(ctx context.Context, run *pipeline.RunContext, task *types.AnalysisTask) {
	defer runs.Delete(run.TaskId)
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Error("analysis panic",
				zap.String("task_id", run.TaskId),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			task.Status = types.AnalysisTaskStatusFailed
			task.FailReason = fmt.Sprintf("internal error: %v", r)
			task.StatusMsg = "failed"
			_ = storage.SaveTask(task)
		}
	}()

	seq := pipeline.NewSequencer(s.NewStageRunner())
	seq.Run(ctx, run, func(t pipeline.Transition) {
		s.syncTask(run, task)
		listeners.publish(ProgressEvent{
			TaskId:   run.TaskId,
			State:    string(t.To),
			Progress: t.Progress,
			Message:  task.StatusMsg,
		})
	})
}

// syncTask mirrors the run state into the persistent task row.
func (s *Service) syncTask(run *pipeline.RunContext, task *types.AnalysisTask) {
	task.Stage = string(run.State)
	task.ProcessPct = uint8(run.Progress)
	if logJSON, err := json.Marshal(run.StatusLog); err == nil {
		task.StatusLog = string(logJSON)
	}

	switch run.State {
	case pipeline.StateDone:
		task.Status = types.AnalysisTaskStatusSuccess
		task.StatusMsg = "done"
		task.ReportPath = s.Store.Path(run.VideoStem, artifact.StageFinalReport)
	case pipeline.StateCanceled:
		task.Status = types.AnalysisTaskStatusCanceled
		task.StatusMsg = "canceled"
	case pipeline.StateError:
		task.Status = types.AnalysisTaskStatusFailed
		task.StatusMsg = "failed"
		task.FailReason = apperrors.GetMessage(run.Err)
		task.FailedProvider = run.FailedProvider
	default:
		task.Status = types.AnalysisTaskStatusProcessing
		task.StatusMsg = string(run.State)
	}

	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("failed to persist task state",
			zap.String("task_id", run.TaskId), zap.Error(err))
	}
}

// GetTaskStatus reads the persisted task row; it works for finished tasks
// from past sessions, not just in-flight ones.
func (s *Service) GetTaskStatus(taskId string) (*dto.AnalysisTaskStatusResData, error) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Task not found", err)
	}

	var statusLog []string
	if task.StatusLog != "" {
		_ = json.Unmarshal([]byte(task.StatusLog), &statusLog)
	}

	return &dto.AnalysisTaskStatusResData{
		TaskId:          task.TaskId,
		VideoStem:       task.VideoStem,
		Stage:           task.Stage,
		Status:          uint8(task.Status),
		ProcessPercent:  task.ProcessPct,
		StatusMsg:       task.StatusMsg,
		StatusLog:       statusLog,
		FailReason:      task.FailReason,
		FailedProvider:  task.FailedProvider,
		ReportAvailable: s.Store.Exists(task.VideoStem, artifact.StageFinalReport),
	}, nil
}

// CancelTask requests a stop at the next stage boundary. Canceling a task
// that already finished (or never existed in this session) is a no-op error.
func (s *Service) CancelTask(taskId string) error {
	value, ok := runs.Load(taskId)
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "No running task with this id")
	}
	value.(*pipeline.RunContext).Cancel()
	return nil
}

// GetReport loads the final report for a finished task.
func (s *Service) GetReport(taskId string) (*types.FinalReport, error) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Task not found", err)
	}

	var report types.FinalReport
	if err := s.Store.Read(task.VideoStem, artifact.StageFinalReport, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// stemForSource derives the stable video identity used for artifact paths.
// Local files use their base name; URLs use the last path element.
func stemForSource(src string) string {
	if strings.HasPrefix(src, LocalPrefix) {
		return util.VideoStem(strings.TrimPrefix(src, LocalPrefix))
	}
	trimmed := src
	if idx := strings.IndexByte(trimmed, '?'); idx != -1 {
		trimmed = trimmed[:idx]
	}
	return util.VideoStem(strings.TrimRight(trimmed, "/"))
}
