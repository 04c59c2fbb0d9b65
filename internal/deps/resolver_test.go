package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func notFoundErr(command string) error {
	return &exec.Error{Name: command, Err: exec.ErrNotFound}
}

func TestPathResolverResolvePrefersConfiguredPath(t *testing.T) {
	binPath := filepath.Join(t.TempDir(), "ffmpeg-custom")
	if err := os.WriteFile(binPath, []byte("ffmpeg"), 0o755); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		return "", notFoundErr(file)
	}

	state := resolver.Resolve(DependencySpec{
		ID:             "ffmpeg",
		Name:           "ffmpeg",
		Command:        "ffmpeg",
		ConfiguredPath: binPath,
	})

	if state.Status != DependencyStatusOK {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusOK)
	}
	if state.Source != DependencySourceConfig {
		t.Fatalf("state.Source = %q, want %q", state.Source, DependencySourceConfig)
	}
	if state.ResolvedPath != binPath {
		t.Fatalf("state.ResolvedPath = %q, want %q", state.ResolvedPath, binPath)
	}
}

func TestPathResolverResolveFallsBackToLookPath(t *testing.T) {
	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		if file != "ffprobe" {
			t.Fatalf("LookPath() received %q, want %q", file, "ffprobe")
		}
		return "/mock/bin/ffprobe", nil
	}

	state := resolver.Resolve(DependencySpec{ID: "ffprobe", Name: "ffprobe", Command: "ffprobe"})

	if state.Status != DependencyStatusOK {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusOK)
	}
	if state.Source != DependencySourceLookPath {
		t.Fatalf("state.Source = %q, want %q", state.Source, DependencySourceLookPath)
	}
	if state.ResolvedPath != "/mock/bin/ffprobe" {
		t.Fatalf("state.ResolvedPath = %q, want %q", state.ResolvedPath, "/mock/bin/ffprobe")
	}
}

func TestPathResolverResolveReportsMissingWhenNotFound(t *testing.T) {
	resolver := NewPathResolver()
	resolver.LookPath = func(file string) (string, error) {
		return "", notFoundErr(file)
	}

	state := resolver.Resolve(DependencySpec{ID: "yt-dlp", Name: "yt-dlp", Command: "yt-dlp"})

	if state.Status != DependencyStatusMissing {
		t.Fatalf("state.Status = %q, want %q", state.Status, DependencyStatusMissing)
	}
	if state.Error == "" {
		t.Fatal("state.Error is empty, want lookup error message")
	}
}

func TestResolvedPathForFallsBackToCommand(t *testing.T) {
	states := []DependencyState{
		{
			DependencySpec: DependencySpec{ID: "ffmpeg"},
			Status:         DependencyStatusOK,
			ResolvedPath:   "/usr/bin/ffmpeg",
		},
		{
			DependencySpec: DependencySpec{ID: "yt-dlp"},
			Status:         DependencyStatusMissing,
		},
	}

	if got := ResolvedPathFor(states, "ffmpeg"); got != "/usr/bin/ffmpeg" {
		t.Fatalf("ResolvedPathFor(ffmpeg) = %q", got)
	}
	if got := ResolvedPathFor(states, "yt-dlp"); got != "yt-dlp" {
		t.Fatalf("ResolvedPathFor(yt-dlp) = %q", got)
	}
}

func TestFormatDependencyReportIncludesHintAndError(t *testing.T) {
	report := FormatDependencyReport([]DependencyState{
		{
			DependencySpec: DependencySpec{
				Name: "ffmpeg",
				Tier: DependencyTierMust,
				Hint: "Required for frame extraction.",
			},
			Status: DependencyStatusMissing,
			Error:  "exec: \"ffmpeg\": executable file not found in $PATH",
		},
	})

	if !strings.Contains(report, "ffmpeg [MUST]: missing") {
		t.Fatalf("report missing status line:\n%s", report)
	}
	if !strings.Contains(report, "hint: Required for frame extraction.") {
		t.Fatalf("report missing hint:\n%s", report)
	}
	if !strings.Contains(report, "error:") {
		t.Fatalf("report missing error:\n%s", report)
	}
}
