package appdirs

import (
	"path/filepath"
	"testing"
)

func TestResolveDefaultsToWorkingDirLayout(t *testing.T) {
	paths, err := resolve(resolveDeps{getenv: func(string) string { return "" }})
	if err != nil {
		t.Fatalf("resolve() error: %v", err)
	}

	if paths.ConfigFile != filepath.Join("config", "config.toml") {
		t.Fatalf("ConfigFile = %q, want %q", paths.ConfigFile, filepath.Join("config", "config.toml"))
	}
	if paths.DataDir != "data" {
		t.Fatalf("DataDir = %q, want %q", paths.DataDir, "data")
	}
	if paths.LogDir != "logs" {
		t.Fatalf("LogDir = %q, want %q", paths.LogDir, "logs")
	}
}

func TestResolveHonorsHomeEnv(t *testing.T) {
	base := filepath.Join("srv", "viracoach")
	paths, err := resolve(resolveDeps{getenv: func(key string) string {
		if key == HomeEnv {
			return base
		}
		return ""
	}})
	if err != nil {
		t.Fatalf("resolve() error: %v", err)
	}

	if paths.ConfigFile != filepath.Join(base, "config", "config.toml") {
		t.Fatalf("ConfigFile = %q", paths.ConfigFile)
	}
	if paths.DataDir != filepath.Join(base, "data") {
		t.Fatalf("DataDir = %q", paths.DataDir)
	}
	if paths.CacheDir != filepath.Join(base, "cache") {
		t.Fatalf("CacheDir = %q", paths.CacheDir)
	}
}

func TestRuntimePathHelpers(t *testing.T) {
	paths := Paths{DataDir: "data", CacheDir: "cache"}

	if got := RawDirFor(paths); got != filepath.Join("data", "raw") {
		t.Fatalf("RawDirFor = %q", got)
	}
	if got := UploadRootFor(paths); got != filepath.Join("data", "uploads") {
		t.Fatalf("UploadRootFor = %q", got)
	}
	if got := DBPathFor(paths); got != filepath.Join("cache", "viracoach.db") {
		t.Fatalf("DBPathFor = %q", got)
	}
}

func TestRuntimePathHelpersFallBackOnEmptyDirs(t *testing.T) {
	paths := Paths{DataDir: "  ", CacheDir: ""}

	if got := RawDirFor(paths); got != filepath.Join("data", "raw") {
		t.Fatalf("RawDirFor = %q", got)
	}
	if got := DBPathFor(paths); got != filepath.Join("cache", "viracoach.db") {
		t.Fatalf("DBPathFor = %q", got)
	}
}
