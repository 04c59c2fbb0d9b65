package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"viracoach/internal/artifact"
	"viracoach/internal/mocks"
	"viracoach/internal/pipeline"
	"viracoach/internal/types"
	apperrors "viracoach/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dataRoot := t.TempDir()
	return &Service{
		Store:            artifact.NewStore(dataRoot),
		SceneThreshold:   0.4,
		MinSceneDuration: 0.2,
		FrameDelta:       0.5,
		FrameWorkers:     1,
		DataRoot:         dataRoot,
		RawDir:           filepath.Join(dataRoot, "raw"),
	}
}

func newTestRun(stem string) *pipeline.RunContext {
	run := pipeline.NewRunContext("task-test", "local:/tmp/"+stem+".mp4", stem)
	run.MediaPath = "/tmp/" + stem + ".mp4"
	return run
}

func TestKeepScenesFiltersShortScenes(t *testing.T) {
	scenes := []types.Scene{
		{StartTime: 0, EndTime: 0.1},
		{StartTime: 0.1, EndTime: 4.0},
		{StartTime: 4.0, EndTime: 4.15},
		{StartTime: 4.15, EndTime: 9.0},
	}

	kept := keepScenes(scenes, 0.2)

	require.Len(t, kept, 2)
	assert.Equal(t, 0.1, kept[0].StartTime)
	assert.Equal(t, 4.15, kept[1].StartTime)
}

func TestExtractFramesNamesTriplesBySceneIndex(t *testing.T) {
	svc := newTestService(t)
	sampler := &mocks.MockFrameSampler{}
	sampler.On("ExtractFrameAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sampler.On("BrightnessAt", mock.Anything, mock.Anything, mock.Anything).Return(128.0, nil)
	svc.Sampler = sampler

	run := newTestRun("clip")
	require.NoError(t, svc.Store.Write("clip", artifact.StageScene, types.SceneArtifact{
		Scenes: []types.Scene{
			{StartTime: 0, EndTime: 4},
			{StartTime: 4, EndTime: 6},
			{StartTime: 6, EndTime: 9},
		},
	}))

	runner := svc.NewStageRunner()
	require.NoError(t, runner.ExtractFrames(context.Background(), run))

	require.Len(t, runner.samples, 3)
	third := runner.samples[2]
	assert.Equal(t, 3, third.SceneIndex)
	assert.Equal(t, 7.5, third.Timestamp)
	assert.Equal(t, "clip_scene_03.jpg", filepath.Base(third.FramePath))
	assert.Equal(t, "clip_scene_03_prev.jpg", filepath.Base(third.PrevFramePath))
	assert.Equal(t, "clip_scene_03_next.jpg", filepath.Base(third.NextFramePath))
	assert.Equal(t, 128.0, third.Brightness)
}

func TestExtractFramesSkipsFailingScene(t *testing.T) {
	svc := newTestService(t)
	sampler := &mocks.MockFrameSampler{}
	sampler.On("ExtractFrameAt", mock.Anything, mock.Anything, mock.Anything,
		mock.MatchedBy(func(path string) bool { return strings.Contains(path, "_scene_01") })).
		Return(apperrors.New(apperrors.CodeFrameExtractFailed, "boom"))
	sampler.On("ExtractFrameAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sampler.On("BrightnessAt", mock.Anything, mock.Anything, mock.Anything).Return(90.0, nil)
	svc.Sampler = sampler

	run := newTestRun("clip")
	require.NoError(t, svc.Store.Write("clip", artifact.StageScene, types.SceneArtifact{
		Scenes: []types.Scene{
			{StartTime: 0, EndTime: 4},
			{StartTime: 4, EndTime: 8},
		},
	}))

	runner := svc.NewStageRunner()
	require.NoError(t, runner.ExtractFrames(context.Background(), run))

	require.Len(t, runner.samples, 1)
	assert.Equal(t, 2, runner.samples[0].SceneIndex)
}

func TestExtractFramesFailsWhenNoSceneLongEnough(t *testing.T) {
	svc := newTestService(t)
	svc.Sampler = &mocks.MockFrameSampler{}

	run := newTestRun("clip")
	require.NoError(t, svc.Store.Write("clip", artifact.StageScene, types.SceneArtifact{
		Scenes: []types.Scene{{StartTime: 0, EndTime: 0.1}},
	}))

	err := svc.NewStageRunner().ExtractFrames(context.Background(), run)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFrameExtractFailed, apperrors.GetCode(err))
}

func TestExtractFramesDefaultsBrightnessOnProbeFailure(t *testing.T) {
	svc := newTestService(t)
	sampler := &mocks.MockFrameSampler{}
	sampler.On("ExtractFrameAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sampler.On("BrightnessAt", mock.Anything, mock.Anything, mock.Anything).
		Return(0.0, apperrors.New(apperrors.CodeBrightnessFailed, "no sample"))
	svc.Sampler = sampler

	run := newTestRun("clip")
	require.NoError(t, svc.Store.Write("clip", artifact.StageScene, types.SceneArtifact{
		Scenes: []types.Scene{{StartTime: 0, EndTime: 4}},
	}))

	runner := svc.NewStageRunner()
	require.NoError(t, runner.ExtractFrames(context.Background(), run))
	assert.Equal(t, -1.0, runner.samples[0].Brightness)
}
