// Package mocks provides mock implementations of the collaborator
// interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"viracoach/internal/types"
)

// MockSceneDetector is a mock implementation of types.SceneDetector
type MockSceneDetector struct {
	mock.Mock
}

func (m *MockSceneDetector) DetectScenes(ctx context.Context, mediaPath string, threshold float64) ([]types.Scene, error) {
	args := m.Called(ctx, mediaPath, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Scene), args.Error(1)
}

// MockFrameSampler is a mock implementation of types.FrameSampler
type MockFrameSampler struct {
	mock.Mock
}

func (m *MockFrameSampler) ExtractFrameAt(ctx context.Context, mediaPath string, timestamp float64, outPath string) error {
	args := m.Called(ctx, mediaPath, timestamp, outPath)
	return args.Error(0)
}

func (m *MockFrameSampler) BrightnessAt(ctx context.Context, mediaPath string, timestamp float64) (float64, error) {
	args := m.Called(ctx, mediaPath, timestamp)
	return args.Get(0).(float64), args.Error(1)
}

// MockAudioExtractor is a mock implementation of types.AudioExtractor
type MockAudioExtractor struct {
	mock.Mock
}

func (m *MockAudioExtractor) ExtractAudio(ctx context.Context, mediaPath, outPath string) error {
	args := m.Called(ctx, mediaPath, outPath)
	return args.Error(0)
}

// MockTranscriber is a mock implementation of types.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) (*types.Transcript, error) {
	args := m.Called(ctx, audioPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transcript), args.Error(1)
}

// MockLoudnessMeter is a mock implementation of types.LoudnessMeter
type MockLoudnessMeter struct {
	mock.Mock
}

func (m *MockLoudnessMeter) LoudnessStats(ctx context.Context, audioPath string) (types.LoudnessStats, error) {
	args := m.Called(ctx, audioPath)
	return args.Get(0).(types.LoudnessStats), args.Error(1)
}

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockVisionCompleter is a mock implementation of types.VisionCompleter
type MockVisionCompleter struct {
	mock.Mock
}

func (m *MockVisionCompleter) VisionCompletion(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	args := m.Called(ctx, prompt, imagePaths)
	return args.String(0), args.Error(1)
}
