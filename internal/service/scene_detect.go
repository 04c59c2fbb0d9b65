package service

import (
	"context"

	"go.uber.org/zap"

	"viracoach/internal/artifact"
	"viracoach/internal/pipeline"
	"viracoach/internal/types"
	"viracoach/log"
)

// fallbackScene stands in when the detector fails or finds nothing, so the
// rest of the pipeline still has one scene to work with.
var fallbackScene = types.Scene{StartTime: 0, EndTime: 30}

// DetectScenes runs shot detection and persists the scene artifact. Detector
// failure is not fatal; the single fallback scene is recorded instead, with
// the artifact flagged so the report can mention reduced confidence.
func (r *StageRunner) DetectScenes(ctx context.Context, run *pipeline.RunContext) error {
	art := types.SceneArtifact{}

	scenes, err := r.svc.Detector.DetectScenes(ctx, run.MediaPath, r.svc.SceneThreshold)
	if err != nil || len(scenes) == 0 {
		log.GetLogger().Warn("scene detection unavailable, using fallback scene",
			zap.String("task_id", run.TaskId),
			zap.Error(err))
		art.Scenes = []types.Scene{fallbackScene}
		art.Fallback = true
		run.Log("scene detection unavailable, analyzing opening segment only")
	} else {
		art.Scenes = scenes
	}

	return r.svc.Store.Write(run.VideoStem, artifact.StageScene, art)
}
