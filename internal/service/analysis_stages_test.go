package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"viracoach/internal/artifact"
	"viracoach/internal/mocks"
	"viracoach/internal/types"
	apperrors "viracoach/pkg/errors"
)

func TestDetectScenesWritesFallbackOnDetectorFailure(t *testing.T) {
	svc := newTestService(t)
	detector := &mocks.MockSceneDetector{}
	detector.On("DetectScenes", mock.Anything, mock.Anything, 0.4).
		Return(nil, apperrors.New(apperrors.CodeSceneDetectFailed, "ffprobe exploded"))
	svc.Detector = detector

	run := newTestRun("clip")
	require.NoError(t, svc.NewStageRunner().DetectScenes(context.Background(), run))

	var art types.SceneArtifact
	require.NoError(t, svc.Store.Read("clip", artifact.StageScene, &art))
	assert.True(t, art.Fallback)
	require.Len(t, art.Scenes, 1)
	assert.Equal(t, 0.0, art.Scenes[0].StartTime)
	assert.Equal(t, 30.0, art.Scenes[0].EndTime)
}

func TestAnalyzeFramesRecordsPerFrameErrors(t *testing.T) {
	svc := newTestService(t)
	vision := &mocks.MockVisionCompleter{}
	vision.On("VisionCompletion", mock.Anything, mock.Anything,
		mock.MatchedBy(func(images []string) bool { return images[0] == "/f/clip_scene_01.jpg" })).
		Return(`{"lighting": 80, "composition": 70, "hook_strength": 60}`, nil)
	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("", apperrors.New(apperrors.CodeAnalysisFailed, "model timeout"))
	svc.Vision = vision

	runner := svc.NewStageRunner()
	runner.samples = []types.FrameSample{
		{SceneIndex: 1, FramePath: "/f/clip_scene_01.jpg"},
		{SceneIndex: 2, FramePath: "/f/clip_scene_02.jpg"},
	}

	run := newTestRun("clip")
	require.NoError(t, runner.AnalyzeFrames(context.Background(), run))

	var art types.FrameAnalysisArtifact
	require.NoError(t, svc.Store.Read("clip", artifact.StageFrameAnalysis, &art))
	require.Len(t, art, 2)
	assert.Equal(t, 80, art["clip_scene_01.jpg"].Lighting)
	assert.Empty(t, art["clip_scene_01.jpg"].Error)
	assert.Equal(t, "model timeout", art["clip_scene_02.jpg"].Error)
}

func TestAnalyzeFramesContinuesPastCredentialFailure(t *testing.T) {
	svc := newTestService(t)
	vision := &mocks.MockVisionCompleter{}
	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("", apperrors.WrapWithDetail(apperrors.CodeCredentialInvalid, "Invalid API key", "gemini", assert.AnError))
	svc.Vision = vision

	runner := svc.NewStageRunner()
	runner.samples = []types.FrameSample{
		{SceneIndex: 1, FramePath: "/f/clip_scene_01.jpg"},
		{SceneIndex: 2, FramePath: "/f/clip_scene_02.jpg"},
	}

	run := newTestRun("clip")
	require.NoError(t, runner.AnalyzeFrames(context.Background(), run))

	// a bad key shows up as per-frame error entries, not a run abort;
	// the audio stage is where a bad key stops the pipeline
	var art types.FrameAnalysisArtifact
	require.NoError(t, svc.Store.Read("clip", artifact.StageFrameAnalysis, &art))
	require.Len(t, art, 2)
	assert.Equal(t, "Invalid API key", art["clip_scene_01.jpg"].Error)
	assert.Equal(t, "Invalid API key", art["clip_scene_02.jpg"].Error)
	vision.AssertNumberOfCalls(t, "VisionCompletion", 2)
}

func TestAnalyzeAudioDegradesToDefaultsOnModelFailure(t *testing.T) {
	svc := newTestService(t)

	audio := &mocks.MockAudioExtractor{}
	audio.On("ExtractAudio", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc.Audio = audio

	transcriber := &mocks.MockTranscriber{}
	transcriber.On("Transcribe", mock.Anything, mock.Anything).Return(&types.Transcript{
		Text: "five words are spoken here",
		Segments: []types.TranscriptSegment{
			{Start: 0, End: 2.5, Text: "five words are spoken here"},
		},
	}, nil)
	svc.Transcriber = transcriber

	mean := -21.0
	loudness := &mocks.MockLoudnessMeter{}
	loudness.On("LoudnessStats", mock.Anything, mock.Anything).
		Return(types.LoudnessStats{Mean: &mean}, nil)
	svc.Loudness = loudness

	vision := &mocks.MockVisionCompleter{}
	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("", apperrors.New(apperrors.CodeAnalysisFailed, "model timeout"))
	svc.Vision = vision

	runner := svc.NewStageRunner()
	runner.samples = []types.FrameSample{{SceneIndex: 1, FramePath: "/f/clip_scene_01.jpg", Brightness: 77}}

	run := newTestRun("clip")
	require.NoError(t, runner.AnalyzeAudio(context.Background(), run))

	var art types.AudioAnalysis
	require.NoError(t, svc.Store.Read("clip", artifact.StageAudioAnalysis, &art))
	assert.Equal(t, "neutral", art.Tone)
	assert.Equal(t, "medium", art.Pace)
	assert.Equal(t, 50, art.DeliveryScore)
	assert.Equal(t, 77.0, art.Brightness)
	// transcript stats survive the degraded judgment
	assert.Equal(t, 5, art.WordCount)
	assert.InDelta(t, 2.0, art.WordsPerSecond, 1e-9)
	require.NotNil(t, art.LoudnessMean)
	assert.Equal(t, -21.0, *art.LoudnessMean)
}

func TestAnalyzeAudioQuotaExhaustionIsFatal(t *testing.T) {
	svc := newTestService(t)

	audio := &mocks.MockAudioExtractor{}
	audio.On("ExtractAudio", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc.Audio = audio

	transcriber := &mocks.MockTranscriber{}
	transcriber.On("Transcribe", mock.Anything, mock.Anything).Return(&types.Transcript{
		Text:     "some words",
		Segments: []types.TranscriptSegment{{Start: 0, End: 1, Text: "some words"}},
	}, nil)
	svc.Transcriber = transcriber

	loudness := &mocks.MockLoudnessMeter{}
	loudness.On("LoudnessStats", mock.Anything, mock.Anything).
		Return(types.LoudnessStats{}, nil)
	svc.Loudness = loudness

	vision := &mocks.MockVisionCompleter{}
	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("", apperrors.WrapWithDetail(apperrors.CodeLLMQuotaExceeded, "LLM quota exceeded", "gemini", assert.AnError))
	svc.Vision = vision

	run := newTestRun("clip")
	err := svc.NewStageRunner().AnalyzeAudio(context.Background(), run)

	// an exhausted quota needs user action, same as a bad key; no
	// neutral-default artifact must mask it
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeLLMQuotaExceeded, apperrors.GetCode(err))
	assert.Equal(t, "gemini", apperrors.GetDetail(err))
	assert.False(t, svc.Store.Exists("clip", artifact.StageAudioAnalysis))
}

func TestAnalyzeAudioFailsOnTranscriptionError(t *testing.T) {
	svc := newTestService(t)

	audio := &mocks.MockAudioExtractor{}
	audio.On("ExtractAudio", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc.Audio = audio

	transcriber := &mocks.MockTranscriber{}
	transcriber.On("Transcribe", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.CodeTranscribeFailed, "whisper unavailable"))
	svc.Transcriber = transcriber

	run := newTestRun("clip")
	err := svc.NewStageRunner().AnalyzeAudio(context.Background(), run)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTranscribeFailed, apperrors.GetCode(err))
	assert.False(t, svc.Store.Exists("clip", artifact.StageAudioAnalysis))
}

func TestAnalyzeAudioNormalizesNearMissLabels(t *testing.T) {
	svc := newTestService(t)

	audio := &mocks.MockAudioExtractor{}
	audio.On("ExtractAudio", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc.Audio = audio

	transcriber := &mocks.MockTranscriber{}
	transcriber.On("Transcribe", mock.Anything, mock.Anything).Return(&types.Transcript{
		Text:     "hello",
		Segments: []types.TranscriptSegment{{Start: 0, End: 1, Text: "hello"}},
	}, nil)
	svc.Transcriber = transcriber

	loudness := &mocks.MockLoudnessMeter{}
	loudness.On("LoudnessStats", mock.Anything, mock.Anything).Return(types.LoudnessStats{}, nil)
	svc.Loudness = loudness

	vision := &mocks.MockVisionCompleter{}
	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("```json\n{\"tone\": \"Excited.\", \"emotion\": \"joyy\", \"pace\": \"Fast\", \"delivery_score\": 82}\n```", nil)
	svc.Vision = vision

	run := newTestRun("clip")
	require.NoError(t, svc.NewStageRunner().AnalyzeAudio(context.Background(), run))

	var art types.AudioAnalysis
	require.NoError(t, svc.Store.Read("clip", artifact.StageAudioAnalysis, &art))
	assert.Equal(t, "excited", art.Tone)
	assert.Equal(t, "joy", art.Emotion)
	assert.Equal(t, "fast", art.Pace)
	assert.Equal(t, 82, art.DeliveryScore)
}

func TestAnalyzeHookDegradesToDefaults(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Store.Write("clip", artifact.StageAudioAnalysis,
		types.DefaultAudioAnalysis(50, "test")))

	vision := &mocks.MockVisionCompleter{}
	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("not json at all", nil)
	svc.Vision = vision

	run := newTestRun("clip")
	require.NoError(t, svc.NewStageRunner().AnalyzeHook(context.Background(), run))

	var hook types.HookAnalysis
	require.NoError(t, svc.Store.Read("clip", artifact.StageHookAnalysis, &hook))
	assert.Equal(t, -1, hook.HookAlignmentScore)
	assert.Equal(t, "none", hook.FacialSync)
}

func TestGenerateReportComputesTotalLocally(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Store.Write("clip", artifact.StageFrameAnalysis,
		types.FrameAnalysisArtifact{"clip_scene_01.jpg": {Lighting: 80}}))
	audioArt := types.DefaultAudioAnalysis(50, "test")
	audioArt.Tone = "funny"
	audioArt.Emotion = "joy"
	require.NoError(t, svc.Store.Write("clip", artifact.StageAudioAnalysis, audioArt))
	require.NoError(t, svc.Store.Write("clip", artifact.StageHookAnalysis,
		types.HookAnalysis{HookAlignmentScore: 70, FacialSync: "ok"}))

	chat := &mocks.MockChatCompleter{}
	chat.On("ChatCompletion", mock.Anything, mock.Anything).Return(`{
		"video_name": "clip",
		"scores": {"hook": 55, "visuals": 60, "audio": 55, "engagement": 65, "visual_diversity": 79},
		"matrices": {"tone": "funny", "emotion": "joy", "pace": "fast", "facial_sync": "ok"},
		"summary": "solid",
		"suggestions": ["tighten the intro"]
	}`, nil)
	svc.ChatCompleter = chat

	run := newTestRun("clip")
	require.NoError(t, svc.NewStageRunner().GenerateReport(context.Background(), run))

	var report types.FinalReport
	require.NoError(t, svc.Store.Read("clip", artifact.StageFinalReport, &report))
	assert.Equal(t, 77, report.TotalScore)
	assert.Equal(t, "solid", report.Summary)
}

func TestGenerateReportNeutralFallbackOnModelFailure(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Store.Write("clip", artifact.StageFrameAnalysis, types.FrameAnalysisArtifact{}))
	audioArt := types.DefaultAudioAnalysis(50, "test")
	require.NoError(t, svc.Store.Write("clip", artifact.StageAudioAnalysis, audioArt))
	require.NoError(t, svc.Store.Write("clip", artifact.StageHookAnalysis,
		types.HookAnalysis{HookAlignmentScore: -1, FacialSync: "none"}))

	chat := &mocks.MockChatCompleter{}
	chat.On("ChatCompletion", mock.Anything, mock.Anything).
		Return("", apperrors.New(apperrors.CodeAnalysisFailed, "model timeout"))
	svc.ChatCompleter = chat

	run := newTestRun("clip")
	require.NoError(t, svc.NewStageRunner().GenerateReport(context.Background(), run))

	var report types.FinalReport
	require.NoError(t, svc.Store.Read("clip", artifact.StageFinalReport, &report))
	// all 50s base (=50) minus the facial sync penalty
	assert.Equal(t, 45, report.TotalScore)
	assert.Equal(t, "clip", report.VideoName)
}

func TestGenerateReportCredentialFailureIsFatal(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Store.Write("clip", artifact.StageFrameAnalysis, types.FrameAnalysisArtifact{}))
	require.NoError(t, svc.Store.Write("clip", artifact.StageAudioAnalysis, types.DefaultAudioAnalysis(50, "t")))
	require.NoError(t, svc.Store.Write("clip", artifact.StageHookAnalysis, types.DefaultHookAnalysis("t")))

	chat := &mocks.MockChatCompleter{}
	chat.On("ChatCompletion", mock.Anything, mock.Anything).
		Return("", apperrors.WrapWithDetail(apperrors.CodeCredentialInvalid, "Invalid API key", "openai", assert.AnError))
	svc.ChatCompleter = chat

	run := newTestRun("clip")
	err := svc.NewStageRunner().GenerateReport(context.Background(), run)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCredentialInvalid, apperrors.GetCode(err))
	assert.False(t, svc.Store.Exists("clip", artifact.StageFinalReport))
}

func TestStemForSource(t *testing.T) {
	assert.Equal(t, "my_clip", stemForSource("local:/videos/My Clip.mp4"))
	assert.Equal(t, "clip-01", stemForSource("https://cdn.example.com/media/Clip-01.mp4?token=abc"))
	assert.Equal(t, "dqw4w9wgxcq", stemForSource("https://youtube.com/shorts/dQw4w9WgXcQ/"))
}
