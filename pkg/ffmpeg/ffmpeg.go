// Package ffmpeg implements the media collaborator contracts (scene
// detection, frame sampling, audio demux, loudness) by shelling out to
// ffmpeg/ffprobe. Nothing here is an original algorithm; the pipeline only
// depends on the declared input/output shapes.
package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"viracoach/internal/types"
	apperrors "viracoach/pkg/errors"
)

type Processor struct {
	FfmpegPath  string
	FfprobePath string
}

func NewProcessor(ffmpegPath, ffprobePath string) *Processor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Processor{FfmpegPath: ffmpegPath, FfprobePath: ffprobePath}
}

// DetectScenes finds shot boundaries with ffprobe's scene-change score.
// Changes scoring above threshold become boundaries; the clip's full duration
// closes the last scene.
func (p *Processor) DetectScenes(ctx context.Context, mediaPath string, threshold float64) ([]types.Scene, error) {
	duration, err := p.MediaDuration(ctx, mediaPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, p.FfprobePath,
		"-v", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("movie=%s,select=gt(scene\\,%g)", escapeFilterPath(mediaPath), threshold),
		"-show_entries", "frame=pts_time",
		"-of", "csv=p=0",
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSceneDetectFailed, "Scene detection failed", err)
	}

	cuts := parseTimestamps(string(output))
	return scenesFromCuts(cuts, duration), nil
}

// ExtractFrameAt writes a single jpeg sampled at the given timestamp.
func (p *Processor) ExtractFrameAt(ctx context.Context, mediaPath string, timestamp float64, outPath string) error {
	if timestamp < 0 {
		timestamp = 0
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFrameExtractFailed, "Failed to create frame directory", err)
	}

	cmd := exec.CommandContext(ctx, p.FfmpegPath,
		"-loglevel", "error",
		"-y",
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-t", "1",
		"-i", mediaPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-pix_fmt", "yuvj420p",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeFrameExtractFailed,
			"Frame extraction failed", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// BrightnessAt returns the average luma (YAVG, 0-255) of the first frame at
// or after the timestamp.
func (p *Processor) BrightnessAt(ctx context.Context, mediaPath string, timestamp float64) (float64, error) {
	cmd := exec.CommandContext(ctx, p.FfprobePath,
		"-v", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("movie=%s,select=gte(t\\,%.3f),signalstats", escapeFilterPath(mediaPath), timestamp),
		"-show_entries", "frame_tags=lavfi.signalstats.YAVG",
		"-of", "csv=p=0",
		"-read_intervals", "%+#1",
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeBrightnessFailed, "Brightness probe failed", err)
	}

	values := parseTimestamps(string(output))
	if len(values) == 0 {
		return 0, apperrors.New(apperrors.CodeBrightnessFailed, "No brightness sample returned")
	}
	return values[0], nil
}

// ExtractAudio demuxes the audio track into mono 16k wav for transcription.
func (p *Processor) ExtractAudio(ctx context.Context, mediaPath, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeAudioExtract, "Failed to create audio directory", err)
	}

	cmd := exec.CommandContext(ctx, p.FfmpegPath,
		"-loglevel", "error",
		"-y",
		"-i", mediaPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeAudioExtract,
			"Audio extraction failed", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// LoudnessStats runs volumedetect and scrapes mean/max volume from stderr.
// Either value may stay nil when ffmpeg reports nothing measurable.
func (p *Processor) LoudnessStats(ctx context.Context, audioPath string) (types.LoudnessStats, error) {
	cmd := exec.CommandContext(ctx, p.FfmpegPath,
		"-i", audioPath,
		"-af", "volumedetect",
		"-f", "null", os.DevNull,
	)
	// volumedetect reports on stderr; a nonzero exit still often carries the
	// report, so parse before deciding to fail.
	out, err := cmd.CombinedOutput()
	stats := parseLoudness(string(out))
	if err != nil && stats.Mean == nil && stats.Peak == nil {
		return stats, apperrors.Wrap(apperrors.CodeAudioExtract, "Loudness probe failed", err)
	}
	return stats, nil
}

// MediaDuration reads the container duration in seconds.
func (p *Processor) MediaDuration(ctx context.Context, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.FfprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		mediaPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeVideoNotFound, "Failed to probe media duration", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeVideoNotFound, "Unparseable media duration", err)
	}
	return duration, nil
}

func parseTimestamps(output string) []float64 {
	var values []float64
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
		if line == "" {
			continue
		}
		if v, err := strconv.ParseFloat(line, 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// scenesFromCuts converts scene-change timestamps into chronological,
// non-overlapping [start,end) pairs covering the whole clip.
func scenesFromCuts(cuts []float64, duration float64) []types.Scene {
	boundaries := []float64{0}
	for _, cut := range cuts {
		if cut > boundaries[len(boundaries)-1] && cut < duration {
			boundaries = append(boundaries, cut)
		}
	}
	boundaries = append(boundaries, duration)

	var scenes []types.Scene
	for i := 0; i+1 < len(boundaries); i++ {
		start := round2(boundaries[i])
		end := round2(boundaries[i+1])
		if end > start {
			scenes = append(scenes, types.Scene{StartTime: start, EndTime: end})
		}
	}
	return scenes
}

func parseLoudness(output string) types.LoudnessStats {
	var stats types.LoudnessStats
	for _, line := range strings.Split(output, "\n") {
		if idx := strings.Index(line, "mean_volume:"); idx != -1 {
			if v, ok := parseDb(line[idx+len("mean_volume:"):]); ok {
				stats.Mean = &v
			}
		}
		if idx := strings.Index(line, "max_volume:"); idx != -1 {
			if v, ok := parseDb(line[idx+len("max_volume:"):]); ok {
				stats.Peak = &v
			}
		}
	}
	return stats
}

func parseDb(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// escapeFilterPath escapes characters that break lavfi filter arguments.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`,`, `\,`,
	)
	return replacer.Replace(path)
}
