package service

import (
	"viracoach/internal/artifact"
	"viracoach/internal/pipeline"
	"viracoach/internal/types"
	apperrors "viracoach/pkg/errors"
)

// StageRunner binds one analysis run to the service's collaborators. Frame
// samples flow between stages in memory; everything durable goes through the
// artifact store.
type StageRunner struct {
	svc     *Service
	samples []types.FrameSample
}

func (s *Service) NewStageRunner() *StageRunner {
	return &StageRunner{svc: s}
}

func (r *StageRunner) ReportExists(run *pipeline.RunContext) bool {
	return r.svc.Store.Exists(run.VideoStem, artifact.StageFinalReport)
}

// isProviderFatal reports whether an AI collaborator error stops the run
// instead of degrading to defaults. A bad key and an exhausted quota both
// need user action; anything else falls through to the stage's fallback.
func isProviderFatal(err error) bool {
	code := apperrors.GetCode(err)
	return code == apperrors.CodeCredentialInvalid || code == apperrors.CodeLLMQuotaExceeded
}
