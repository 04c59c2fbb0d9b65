// Package pipeline owns the analysis run state machine. It sequences the
// stages, checks cancellation at every boundary, and maps stage failures to
// terminal states; the stage bodies themselves live in internal/service.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"viracoach/log"
	apperrors "viracoach/pkg/errors"
)

type State string

const (
	StateIdle             State = "idle"
	StateDownloadingVideo State = "downloading_video"
	StateDetectingScenes  State = "detecting_scenes"
	StateExtractingFrames State = "extracting_frames"
	StateAnalyzingFrames  State = "analyzing_frames"
	StateAnalyzingAudio   State = "analyzing_audio"
	StateAnalyzingHook    State = "analyzing_hook"
	StateGeneratingReport State = "generating_report"
	StateDone             State = "done"
	StateCanceled         State = "canceled"
	StateError            State = "error"
)

func (s State) IsTerminal() bool {
	return s == StateDone || s == StateCanceled || s == StateError
}

// progress milestones reached on completion of each stage
var stateProgress = map[State]int{
	StateIdle:             0,
	StateDownloadingVideo: 10,
	StateDetectingScenes:  25,
	StateExtractingFrames: 40,
	StateAnalyzingFrames:  55,
	StateAnalyzingAudio:   70,
	StateAnalyzingHook:    85,
	StateGeneratingReport: 100,
	StateDone:             100,
}

var stageOrder = []State{
	StateDownloadingVideo,
	StateDetectingScenes,
	StateExtractingFrames,
	StateAnalyzingFrames,
	StateAnalyzingAudio,
	StateAnalyzingHook,
	StateGeneratingReport,
}

// RunContext is the mutable record of one analysis run. It is owned by a
// single goroutine; only the cancel flag may be touched from outside.
type RunContext struct {
	TaskId    string
	VideoSrc  string
	VideoStem string

	// MediaPath is set once the download stage has resolved a local file.
	MediaPath string

	State    State
	Progress int

	StatusLog      []string
	Err            error
	FailedProvider string

	canceled atomic.Bool
}

func NewRunContext(taskId, videoSrc, videoStem string) *RunContext {
	return &RunContext{
		TaskId:    taskId,
		VideoSrc:  videoSrc,
		VideoStem: videoStem,
		State:     StateIdle,
	}
}

// Cancel requests a stop at the next stage boundary. Safe from any goroutine.
func (r *RunContext) Cancel() {
	r.canceled.Store(true)
}

func (r *RunContext) CancelRequested() bool {
	return r.canceled.Load()
}

func (r *RunContext) Log(msg string) {
	r.StatusLog = append(r.StatusLog, msg)
}

// Stages are the stage bodies the sequencer drives. Each call runs one whole
// stage to completion or error; partial progress inside a stage is the
// stage's own business.
type Stages interface {
	// Download resolves VideoSrc into a local MediaPath.
	Download(ctx context.Context, run *RunContext) error
	// ReportExists reports whether a finished report is already cached for
	// this video. Checked once, right after download.
	ReportExists(run *RunContext) bool
	DetectScenes(ctx context.Context, run *RunContext) error
	ExtractFrames(ctx context.Context, run *RunContext) error
	AnalyzeFrames(ctx context.Context, run *RunContext) error
	AnalyzeAudio(ctx context.Context, run *RunContext) error
	AnalyzeHook(ctx context.Context, run *RunContext) error
	GenerateReport(ctx context.Context, run *RunContext) error
	// Cleanup removes raw downloaded media. Called on cancellation.
	Cleanup(run *RunContext)
}

// Transition is the observable outcome of one Step call.
type Transition struct {
	From     State
	To       State
	Progress int
}

type Sequencer struct {
	stages Stages
}

func NewSequencer(stages Stages) *Sequencer {
	return &Sequencer{stages: stages}
}

// Step advances the run by exactly one stage. Callers loop until the state
// is terminal; between calls they may persist status, push progress events,
// or honor their own scheduling.
func (s *Sequencer) Step(ctx context.Context, run *RunContext) Transition {
	from := run.State
	if from.IsTerminal() {
		return Transition{From: from, To: from, Progress: run.Progress}
	}

	if run.CancelRequested() || ctx.Err() != nil {
		s.stages.Cleanup(run)
		run.State = StateCanceled
		run.Log("analysis canceled")
		return Transition{From: from, To: StateCanceled, Progress: run.Progress}
	}

	next := s.nextStage(from)
	if err := s.runStage(ctx, next, run); err != nil {
		run.Err = err
		run.FailedProvider = apperrors.GetDetail(err)
		run.State = StateError
		run.Log(fmt.Sprintf("stage %s failed: %s", next, apperrors.GetMessage(err)))
		log.GetLogger().Error("pipeline stage failed",
			zap.String("task_id", run.TaskId),
			zap.String("stage", string(next)),
			zap.Error(err))
		return Transition{From: from, To: StateError, Progress: run.Progress}
	}

	run.State = next
	run.Progress = stateProgress[next]
	run.Log(fmt.Sprintf("stage %s complete", next))

	// A cached report makes the remaining stages pointless. The check
	// happens exactly once, after the media is local; partially cached
	// intermediate artifacts never short-circuit.
	if next == StateDownloadingVideo && s.stages.ReportExists(run) {
		run.State = StateDone
		run.Progress = stateProgress[StateDone]
		run.Log("cached report found, skipping analysis")
		return Transition{From: from, To: StateDone, Progress: run.Progress}
	}

	if next == StateGeneratingReport {
		run.State = StateDone
		return Transition{From: from, To: StateDone, Progress: run.Progress}
	}
	return Transition{From: from, To: next, Progress: run.Progress}
}

// Run drives the state machine to a terminal state, invoking observe (when
// non-nil) after every transition.
func (s *Sequencer) Run(ctx context.Context, run *RunContext, observe func(Transition)) State {
	for !run.State.IsTerminal() {
		t := s.Step(ctx, run)
		if observe != nil {
			observe(t)
		}
	}
	return run.State
}

func (s *Sequencer) nextStage(from State) State {
	if from == StateIdle {
		return stageOrder[0]
	}
	for i, st := range stageOrder {
		if st == from && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return StateGeneratingReport
}

func (s *Sequencer) runStage(ctx context.Context, stage State, run *RunContext) error {
	switch stage {
	case StateDownloadingVideo:
		return s.stages.Download(ctx, run)
	case StateDetectingScenes:
		return s.stages.DetectScenes(ctx, run)
	case StateExtractingFrames:
		return s.stages.ExtractFrames(ctx, run)
	case StateAnalyzingFrames:
		return s.stages.AnalyzeFrames(ctx, run)
	case StateAnalyzingAudio:
		return s.stages.AnalyzeAudio(ctx, run)
	case StateAnalyzingHook:
		return s.stages.AnalyzeHook(ctx, run)
	case StateGeneratingReport:
		return s.stages.GenerateReport(ctx, run)
	default:
		return apperrors.New(apperrors.CodeUnknown, fmt.Sprintf("no stage body for state %s", stage))
	}
}
