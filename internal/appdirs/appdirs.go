package appdirs

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// HomeEnv points the whole on-disk layout (config, logs, data, cache)
	// at a single base directory. Unset means "relative to the working dir".
	HomeEnv = "VIRACOACH_HOME"

	configFileName = "config.toml"
)

type Paths struct {
	ConfigDir  string
	ConfigFile string
	LogDir     string
	DataDir    string
	CacheDir   string
}

type resolveDeps struct {
	getenv func(string) string
}

func Resolve() (Paths, error) {
	return resolve(resolveDeps{getenv: os.Getenv})
}

func resolve(deps resolveDeps) (Paths, error) {
	if deps.getenv == nil {
		deps.getenv = os.Getenv
	}

	base := strings.TrimSpace(deps.getenv(HomeEnv))
	if base == "" {
		return defaultPaths(), nil
	}

	configDir := filepath.Join(base, "config")
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(base, "logs"),
		DataDir:    filepath.Join(base, "data"),
		CacheDir:   filepath.Join(base, "cache"),
	}, nil
}

func defaultPaths() Paths {
	configDir := "config"
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     "logs",
		DataDir:    "data",
		CacheDir:   "cache",
	}
}
