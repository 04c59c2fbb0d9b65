package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"viracoach/internal/artifact"
	"viracoach/internal/pipeline"
	"viracoach/internal/types"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
	"viracoach/pkg/util"
)

// GenerateReport folds the three analysis artifacts into the final scored
// report. The model judges the five sub-scores; the total is computed here,
// never trusted from the model. A non-credential model failure produces a
// neutral report rather than failing the whole run at the last stage.
func (r *StageRunner) GenerateReport(ctx context.Context, run *pipeline.RunContext) error {
	var frames types.FrameAnalysisArtifact
	if err := r.svc.Store.Read(run.VideoStem, artifact.StageFrameAnalysis, &frames); err != nil {
		return err
	}
	var audio types.AudioAnalysis
	if err := r.svc.Store.Read(run.VideoStem, artifact.StageAudioAnalysis, &audio); err != nil {
		return err
	}
	var hook types.HookAnalysis
	if err := r.svc.Store.Read(run.VideoStem, artifact.StageHookAnalysis, &hook); err != nil {
		return err
	}

	report, err := r.judgeReport(ctx, run.VideoStem, frames, audio, hook)
	if err != nil {
		if isProviderFatal(err) {
			return err
		}
		log.GetLogger().Warn("report judgment degraded to neutral defaults",
			zap.String("task_id", run.TaskId), zap.Error(err))
		report = neutralReport(run.VideoStem, audio, hook)
		run.Log("report judgment unavailable, neutral scores applied")
	}

	report.TotalScore = ComputeTotalScore(report.Scores, report.Matrices)

	if err := r.svc.Store.Write(run.VideoStem, artifact.StageFinalReport, report); err != nil {
		return err
	}
	run.Log(fmt.Sprintf("total score %d", report.TotalScore))
	return nil
}

func (r *StageRunner) judgeReport(ctx context.Context, videoStem string, frames types.FrameAnalysisArtifact, audio types.AudioAnalysis, hook types.HookAnalysis) (types.FinalReport, error) {
	framesJSON, _ := json.MarshalIndent(frames, "", "  ")
	audioJSON, _ := json.MarshalIndent(audio, "", "  ")
	hookJSON, _ := json.MarshalIndent(hook, "", "  ")

	var b strings.Builder
	b.WriteString(types.ReportPromptHeader)
	b.WriteString("\n\n### Frame Analysis\n")
	b.Write(framesJSON)
	b.WriteString("\n\n### Audio Analysis\n")
	b.Write(audioJSON)
	b.WriteString("\n\n### Hook Analysis\n")
	b.Write(hookJSON)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(types.ReportPromptFooter, videoStem))

	text, err := r.svc.ChatCompleter.ChatCompletion(ctx, b.String())
	if err != nil {
		return types.FinalReport{}, err
	}

	var report types.FinalReport
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(text)), &report); err != nil {
		return types.FinalReport{}, apperrors.Wrap(apperrors.CodeMalformedResponse,
			"Unparseable report response", err)
	}
	if report.VideoName == "" {
		report.VideoName = videoStem
	}
	report.Matrices.Tone = util.NormalizeLabel(report.Matrices.Tone, types.ToneLabels, audio.Tone)
	report.Matrices.Emotion = util.NormalizeLabel(report.Matrices.Emotion, types.EmotionLabels, audio.Emotion)
	report.Matrices.Pace = util.NormalizeLabel(report.Matrices.Pace, types.PaceLabels, audio.Pace)
	report.Matrices.FacialSync = util.NormalizeLabel(report.Matrices.FacialSync, types.FacialSyncLabels, hook.FacialSync)
	return report, nil
}

// neutralReport carries the already-computed qualitative reads through with
// middle-of-the-road sub-scores.
func neutralReport(videoStem string, audio types.AudioAnalysis, hook types.HookAnalysis) types.FinalReport {
	return types.FinalReport{
		VideoName: videoStem,
		Scores: types.ReportScores{
			Hook:            50,
			Visuals:         50,
			Audio:           50,
			Engagement:      50,
			VisualDiversity: 50,
		},
		Matrices: types.ReportMatrices{
			Tone:       audio.Tone,
			Emotion:    audio.Emotion,
			Pace:       audio.Pace,
			FacialSync: hook.FacialSync,
		},
		Summary:     "Automatic evaluation was unavailable; neutral scores were applied.",
		Suggestions: []string{"Re-run the analysis once the evaluation model is reachable."},
	}
}
