package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"viracoach/internal/artifact"
	"viracoach/internal/pipeline"
	"viracoach/internal/types"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
	"viracoach/pkg/util"
)

// AnalyzeHook judges whether the opening seconds hang together: do the first
// scene's visuals match the audio mood the previous stage found. Credential
// failures are fatal; anything else degrades to the documented default.
func (r *StageRunner) AnalyzeHook(ctx context.Context, run *pipeline.RunContext) error {
	var audio types.AudioAnalysis
	if err := r.svc.Store.Read(run.VideoStem, artifact.StageAudioAnalysis, &audio); err != nil {
		return err
	}

	summary, _ := json.Marshal(map[string]any{
		"tone":             audio.Tone,
		"emotion":          audio.Emotion,
		"pace":             audio.Pace,
		"delivery_score":   audio.DeliveryScore,
		"is_hooking_start": audio.IsHookingStart,
		"comment":          audio.Comment,
	})
	prompt := fmt.Sprintf(types.HookAnalysisPrompt, string(summary))

	hook, err := r.judgeHook(ctx, prompt)
	if err != nil {
		if isProviderFatal(err) {
			return err
		}
		log.GetLogger().Warn("hook judgment degraded to defaults",
			zap.String("task_id", run.TaskId), zap.Error(err))
		hook = types.DefaultHookAnalysis("model unavailable, hook not scored")
		run.Log("hook judgment unavailable, defaults applied")
	}

	return r.svc.Store.Write(run.VideoStem, artifact.StageHookAnalysis, hook)
}

func (r *StageRunner) judgeHook(ctx context.Context, prompt string) (types.HookAnalysis, error) {
	text, err := r.svc.Vision.VisionCompletion(ctx, prompt, r.firstSceneImages())
	if err != nil {
		return types.HookAnalysis{}, err
	}

	var hook types.HookAnalysis
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(text)), &hook); err != nil {
		return types.HookAnalysis{}, apperrors.Wrap(apperrors.CodeMalformedResponse,
			"Unparseable hook analysis response", err)
	}
	hook.FacialSync = util.NormalizeLabel(hook.FacialSync, types.FacialSyncLabels, "none")
	return hook, nil
}
