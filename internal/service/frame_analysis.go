package service

import (
	"context"
	"encoding/json"
	"path/filepath"

	"go.uber.org/zap"

	"viracoach/internal/artifact"
	"viracoach/internal/pipeline"
	"viracoach/internal/types"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
	"viracoach/pkg/util"
)

// AnalyzeFrames runs the vision model over every sampled center frame with
// its prev/next context. Any one frame's failure, credential failures
// included, is recorded in its insight entry and the batch continues. This
// stage deliberately never aborts the run; the audio and hook stages are the
// ones that surface a bad key.
func (r *StageRunner) AnalyzeFrames(ctx context.Context, run *pipeline.RunContext) error {
	if len(r.samples) == 0 {
		return apperrors.New(apperrors.CodeFrameExtractFailed, "No frame samples to analyze")
	}

	art := make(types.FrameAnalysisArtifact, len(r.samples))
	for _, sample := range r.samples {
		key := filepath.Base(sample.FramePath)

		insight, err := r.analyzeOneFrame(ctx, sample)
		if err != nil {
			log.GetLogger().Warn("frame analysis failed for one frame",
				zap.String("task_id", run.TaskId),
				zap.String("frame", key),
				zap.Error(err))
			art[key] = types.FrameInsight{Error: apperrors.GetMessage(err)}
			continue
		}
		art[key] = insight
	}

	return r.svc.Store.Write(run.VideoStem, artifact.StageFrameAnalysis, art)
}

func (r *StageRunner) analyzeOneFrame(ctx context.Context, sample types.FrameSample) (types.FrameInsight, error) {
	images := make([]string, 0, 3)
	if sample.PrevFramePath != "" {
		images = append(images, sample.PrevFramePath)
	}
	images = append(images, sample.FramePath)
	if sample.NextFramePath != "" {
		images = append(images, sample.NextFramePath)
	}

	text, err := r.svc.Vision.VisionCompletion(ctx, types.FrameAnalysisPrompt, images)
	if err != nil {
		return types.FrameInsight{}, err
	}

	var insight types.FrameInsight
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(text)), &insight); err != nil {
		return types.FrameInsight{}, apperrors.Wrap(apperrors.CodeMalformedResponse,
			"Unparseable frame analysis response", err)
	}
	return insight, nil
}
