package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadOrCreateConfigMissingCreatesDefault(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	// Ensure missing
	if _, err := os.Stat(configPath); err == nil {
		t.Fatalf("expected config file to be missing")
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if !created {
		t.Fatalf("LoadOrCreateConfig() created=false, want true")
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if got.Server.Host != "127.0.0.1" {
		t.Fatalf("default server host = %q, want %q", got.Server.Host, "127.0.0.1")
	}
	if got.Server.Port != 8888 {
		t.Fatalf("default server port = %d, want %d", got.Server.Port, 8888)
	}
	if got.Pipeline.MinSceneDuration != 0.2 {
		t.Fatalf("default min scene duration = %v, want 0.2", got.Pipeline.MinSceneDuration)
	}
	if got.Openai.ChatModel != "gpt-4o" {
		t.Fatalf("default chat model = %q, want gpt-4o", got.Openai.ChatModel)
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "deep", "nest", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	Conf = defaultConfig()
	Conf.Server.Port = 9999

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); err != nil {
		t.Fatalf("expected parent directories to exist: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if got.Server.Port != 9999 {
		t.Fatalf("saved server port = %d, want %d", got.Server.Port, 9999)
	}
}

func TestCheckConfig(t *testing.T) {
	Conf = defaultConfig()
	if err := CheckConfig(); err != nil {
		t.Fatalf("CheckConfig() on defaults error: %v", err)
	}

	Conf.Server.Port = 0
	if err := CheckConfig(); err == nil {
		t.Fatalf("CheckConfig() with port 0 should fail")
	}

	Conf = defaultConfig()
	Conf.Pipeline.SceneThreshold = 1.5
	if err := CheckConfig(); err == nil {
		t.Fatalf("CheckConfig() with threshold 1.5 should fail")
	}

	Conf = defaultConfig()
	Conf.Pipeline.FrameWorkers = 0
	if err := CheckConfig(); err != nil {
		t.Fatalf("CheckConfig() should normalize frame workers: %v", err)
	}
	if Conf.Pipeline.FrameWorkers != 3 {
		t.Fatalf("frame workers = %d, want normalized 3", Conf.Pipeline.FrameWorkers)
	}
}

func TestLoadOrCreateConfigReadsExisting(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	content := "[server]\nhost = \"0.0.0.0\"\nport = 7777\n\n[pipeline]\nscene_threshold = 0.3\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if created {
		t.Fatalf("LoadOrCreateConfig() created=true, want false")
	}
	if Conf.Server.Port != 7777 {
		t.Fatalf("server port = %d, want 7777", Conf.Server.Port)
	}
	if Conf.Pipeline.SceneThreshold != 0.3 {
		t.Fatalf("scene threshold = %v, want 0.3", Conf.Pipeline.SceneThreshold)
	}
	// Unset keys keep defaults
	if Conf.Gemini.Model != "gemini-2.5-pro" {
		t.Fatalf("gemini model = %q, want default", Conf.Gemini.Model)
	}
}
