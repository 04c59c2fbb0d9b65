package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"viracoach/internal/appdirs"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AppConfig struct {
	Proxy string `toml:"proxy"`

	// Configured tool paths override PATH lookup; empty means look up.
	FfmpegPath  string `toml:"ffmpeg_path"`
	FfprobePath string `toml:"ffprobe_path"`
	YtdlpPath   string `toml:"ytdlp_path"`
}

type PipelineConfig struct {
	// SceneThreshold is the scene-change score cutoff fed to the detector.
	SceneThreshold float64 `toml:"scene_threshold"`
	// MinSceneDuration in seconds; shorter scenes are dropped before frame extraction.
	MinSceneDuration float64 `toml:"min_scene_duration"`
	// FrameDelta is the prev/next frame offset around a scene midpoint, seconds.
	FrameDelta float64 `toml:"frame_delta"`
	// FrameWorkers bounds concurrent ffmpeg frame extractions per stage.
	FrameWorkers int `toml:"frame_workers"`
}

type OpenaiConfig struct {
	BaseUrl      string `toml:"base_url"`
	ApiKey       string `toml:"api_key"`
	ChatModel    string `toml:"chat_model"`
	VisionModel  string `toml:"vision_model"`
	WhisperModel string `toml:"whisper_model"`
}

type GeminiConfig struct {
	ApiKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// QueueConfig enables the Redis-backed asynq queue when RedisAddr is set;
// otherwise tasks run on the in-process runner.
type QueueConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	App      AppConfig      `toml:"app"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Openai   OpenaiConfig   `toml:"openai"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Queue    QueueConfig    `toml:"queue"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Pipeline: PipelineConfig{
			SceneThreshold:   0.4,
			MinSceneDuration: 0.2,
			FrameDelta:       0.5,
			FrameWorkers:     3,
		},
		Openai: OpenaiConfig{
			ChatModel:    "gpt-4o",
			VisionModel:  "gpt-4o-mini",
			WhisperModel: "whisper-1",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-pro",
		},
		Queue: QueueConfig{
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig reads the TOML config, creating a default file when none
// exists yet. Returns whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		applyEnvOverrides()
		if err := SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	}

	Conf = defaultConfig()
	if _, err := toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	applyEnvOverrides()
	return false, nil
}

// SaveConfig writes the current config, creating parent directories.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// applyEnvOverrides lets API keys come from the environment (or a .env file)
// without being written to disk. Keys submitted per-request through the UI
// take precedence over both at run time.
func applyEnvOverrides() {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		Conf.Openai.ApiKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		Conf.Openai.BaseUrl = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		Conf.Gemini.ApiKey = v
	}
}

// CheckConfig validates ranges that would otherwise fail deep inside a run.
func CheckConfig() error {
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", Conf.Server.Port)
	}
	if Conf.Pipeline.SceneThreshold <= 0 || Conf.Pipeline.SceneThreshold >= 1 {
		return fmt.Errorf("scene threshold %.2f must be in (0,1)", Conf.Pipeline.SceneThreshold)
	}
	if Conf.Pipeline.MinSceneDuration < 0 {
		return fmt.Errorf("min scene duration must not be negative")
	}
	if Conf.Pipeline.FrameDelta <= 0 {
		return fmt.Errorf("frame delta must be positive")
	}
	if Conf.Pipeline.FrameWorkers <= 0 {
		Conf.Pipeline.FrameWorkers = 3
	}
	return nil
}
