package service

import (
	"strings"
	"sync"

	"viracoach/config"
	"viracoach/internal/artifact"
	"viracoach/internal/types"
	"viracoach/log"
	"viracoach/pkg/ffmpeg"
	"viracoach/pkg/gemini"
	"viracoach/pkg/openai"
	"viracoach/pkg/whisper"

	"go.uber.org/zap"
)

type Service struct {
	Detector      types.SceneDetector
	Sampler       types.FrameSampler
	Audio         types.AudioExtractor
	Loudness      types.LoudnessMeter
	Transcriber   types.Transcriber
	ChatCompleter types.ChatCompleter
	Vision        types.VisionCompleter

	Store *artifact.Store

	SceneThreshold   float64
	MinSceneDuration float64
	FrameDelta       float64
	FrameWorkers     int

	DataRoot  string
	RawDir    string
	YtdlpPath string
}

// runs tracks in-flight analyses across all Service instances, since a
// request-scoped key override builds its own Service.
var runs sync.Map // task id -> *pipeline.RunContext

// KeyOverrides are request-scoped API keys. Empty fields fall back to the
// configured keys.
type KeyOverrides struct {
	OpenaiKey string
	GeminiKey string
}

func NewService(overrides KeyOverrides) (*Service, error) {
	dataRoot, err := resolveDataRoot()
	if err != nil {
		return nil, err
	}
	rawDir, err := resolveRawDir()
	if err != nil {
		return nil, err
	}

	openaiKey := firstNonEmpty(overrides.OpenaiKey, config.Conf.Openai.ApiKey)
	geminiKey := firstNonEmpty(overrides.GeminiKey, config.Conf.Gemini.ApiKey)

	chatClient := openai.NewClient(
		config.Conf.Openai.BaseUrl,
		openaiKey,
		config.Conf.App.Proxy,
		config.Conf.Openai.ChatModel,
		config.Conf.Openai.VisionModel,
	)

	// Gemini handles the multimodal calls when a key is available, the
	// OpenAI vision model otherwise.
	var vision types.VisionCompleter = chatClient
	visionProvider := "openai"
	if geminiKey != "" {
		vision = gemini.NewClient(geminiKey, config.Conf.Gemini.Model)
		visionProvider = "gemini"
	}
	log.GetLogger().Info("analysis providers selected",
		zap.String("vision", visionProvider),
		zap.String("chat", "openai"))

	processor := ffmpeg.NewProcessor(config.Conf.App.FfmpegPath, config.Conf.App.FfprobePath)

	return &Service{
		Detector:      processor,
		Sampler:       processor,
		Audio:         processor,
		Loudness:      processor,
		Transcriber:   whisper.NewClient(config.Conf.Openai.BaseUrl, openaiKey, config.Conf.App.Proxy, config.Conf.Openai.WhisperModel),
		ChatCompleter: chatClient,
		Vision:        vision,

		Store: artifact.NewStore(dataRoot),

		SceneThreshold:   config.Conf.Pipeline.SceneThreshold,
		MinSceneDuration: config.Conf.Pipeline.MinSceneDuration,
		FrameDelta:       config.Conf.Pipeline.FrameDelta,
		FrameWorkers:     config.Conf.Pipeline.FrameWorkers,

		DataRoot:  dataRoot,
		RawDir:    rawDir,
		YtdlpPath: firstNonEmpty(config.Conf.App.YtdlpPath, "yt-dlp"),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
