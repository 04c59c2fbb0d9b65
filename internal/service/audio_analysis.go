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

// AnalyzeAudio demuxes and transcribes the soundtrack, measures loudness,
// then asks the vision model for a tone/emotion/pace read using the first
// scene's frames as visual context. Media and transcription failures are
// fatal; a failed or unparseable model response degrades to the documented
// neutral default so the pipeline can still finish.
func (r *StageRunner) AnalyzeAudio(ctx context.Context, run *pipeline.RunContext) error {
	audioPath := audioPathFor(r.svc.DataRoot, run.VideoStem)
	if err := r.svc.Audio.ExtractAudio(ctx, run.MediaPath, audioPath); err != nil {
		return err
	}

	transcript, err := r.svc.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}

	loudness, err := r.svc.Loudness.LoudnessStats(ctx, audioPath)
	if err != nil {
		log.GetLogger().Warn("loudness measurement failed",
			zap.String("task_id", run.TaskId), zap.Error(err))
		loudness = types.LoudnessStats{}
	}

	duration := spokenDuration(transcript)
	wordCount := len(strings.Fields(transcript.Text))
	wps := 0.0
	if duration > 0 {
		wps = float64(wordCount) / duration
	}

	brightness := -1.0
	if len(r.samples) > 0 {
		brightness = r.samples[0].Brightness
	}

	analysis, err := r.judgeAudio(ctx, transcript.Text, loudness, wps, brightness)
	if err != nil {
		if isProviderFatal(err) {
			return err
		}
		log.GetLogger().Warn("audio judgment degraded to defaults",
			zap.String("task_id", run.TaskId), zap.Error(err))
		analysis = types.DefaultAudioAnalysis(brightness, "model unavailable, neutral defaults applied")
		run.Log("audio judgment unavailable, neutral defaults applied")
	}

	analysis.FullTranscript = transcript.Text
	analysis.DurationSeconds = duration
	analysis.WordCount = wordCount
	analysis.WordsPerSecond = wps
	analysis.LoudnessMean = loudness.Mean
	analysis.LoudnessPeak = loudness.Peak

	return r.svc.Store.Write(run.VideoStem, artifact.StageAudioAnalysis, analysis)
}

func (r *StageRunner) judgeAudio(ctx context.Context, transcript string, loudness types.LoudnessStats, wps, brightness float64) (types.AudioAnalysis, error) {
	loudnessJSON, _ := json.Marshal(loudness)
	prompt := fmt.Sprintf(types.AudioAnalysisPrompt, transcript, string(loudnessJSON), wps, brightness)

	text, err := r.svc.Vision.VisionCompletion(ctx, prompt, r.firstSceneImages())
	if err != nil {
		return types.AudioAnalysis{}, err
	}

	var analysis types.AudioAnalysis
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(text)), &analysis); err != nil {
		return types.AudioAnalysis{}, apperrors.Wrap(apperrors.CodeMalformedResponse,
			"Unparseable audio analysis response", err)
	}

	analysis.Tone = util.NormalizeLabel(analysis.Tone, types.ToneLabels, "neutral")
	analysis.Emotion = util.NormalizeLabel(analysis.Emotion, types.EmotionLabels, "neutral")
	analysis.Pace = util.NormalizeLabel(analysis.Pace, types.PaceLabels, "medium")
	return analysis, nil
}

// firstSceneImages returns the opening scene's frame triple, if sampled.
func (r *StageRunner) firstSceneImages() []string {
	if len(r.samples) == 0 {
		return nil
	}
	first := r.samples[0]
	images := make([]string, 0, 3)
	if first.PrevFramePath != "" {
		images = append(images, first.PrevFramePath)
	}
	images = append(images, first.FramePath)
	if first.NextFramePath != "" {
		images = append(images, first.NextFramePath)
	}
	return images
}

// spokenDuration prefers segment timing over container duration so trailing
// silence does not dilute the speaking pace.
func spokenDuration(t *types.Transcript) float64 {
	if t == nil || len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}
