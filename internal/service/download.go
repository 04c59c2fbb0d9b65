package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"viracoach/config"
	"viracoach/internal/pipeline"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
)

// LocalPrefix marks a video source that is already a file on disk.
const LocalPrefix = "local:"

var directExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
}

// Download resolves run.VideoSrc into a local media file under the raw dir.
// Local sources are used in place; a media file already present from an
// earlier run is reused without fetching.
func (r *StageRunner) Download(ctx context.Context, run *pipeline.RunContext) error {
	src := strings.TrimSpace(run.VideoSrc)

	if strings.HasPrefix(src, LocalPrefix) {
		localPath := strings.TrimPrefix(src, LocalPrefix)
		if _, err := os.Stat(localPath); err != nil {
			return apperrors.Wrap(apperrors.CodeVideoNotFound, "Local video file not found", err)
		}
		run.MediaPath = localPath
		run.Log("using local file " + filepath.Base(localPath))
		return nil
	}

	parsed, err := url.Parse(src)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return apperrors.New(apperrors.CodeUnsupportedURL,
			fmt.Sprintf("Unsupported video source %q", src))
	}

	if err := os.MkdirAll(r.svc.RawDir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeVideoDownload, "Failed to create raw media directory", err)
	}

	ext := strings.ToLower(filepath.Ext(parsed.Path))
	if directExtensions[ext] {
		return r.downloadDirect(ctx, run, src, ext)
	}
	return r.downloadWithYtdlp(ctx, run, src)
}

// downloadDirect fetches a plain media URL straight to disk.
func (r *StageRunner) downloadDirect(ctx context.Context, run *pipeline.RunContext, src, ext string) error {
	outPath := filepath.Join(r.svc.RawDir, run.VideoStem+ext)
	if _, err := os.Stat(outPath); err == nil {
		run.MediaPath = outPath
		run.Log("reusing cached download")
		return nil
	}

	client := resty.New()
	if proxy := strings.TrimSpace(config.Conf.App.Proxy); proxy != "" {
		client.SetProxy(proxy)
	}

	resp, err := client.R().
		SetContext(ctx).
		SetOutput(outPath).
		Get(src)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeVideoDownload, "Video download failed", err)
	}
	if resp.StatusCode() >= 400 {
		_ = os.Remove(outPath)
		return apperrors.New(apperrors.CodeVideoDownload,
			fmt.Sprintf("Video download failed with HTTP %d", resp.StatusCode()))
	}

	run.MediaPath = outPath
	run.Log("downloaded " + filepath.Base(outPath))
	return nil
}

// downloadWithYtdlp delegates platform URLs (shorts, reels, tiktoks) to yt-dlp.
func (r *StageRunner) downloadWithYtdlp(ctx context.Context, run *pipeline.RunContext, src string) error {
	outPath := filepath.Join(r.svc.RawDir, run.VideoStem+".mp4")
	if _, err := os.Stat(outPath); err == nil {
		run.MediaPath = outPath
		run.Log("reusing cached download")
		return nil
	}

	args := []string{
		"-f", "mp4/bestvideo*+bestaudio/best",
		"--no-playlist",
		"-o", outPath,
	}
	if proxy := strings.TrimSpace(config.Conf.App.Proxy); proxy != "" {
		args = append(args, "--proxy", proxy)
	}
	args = append(args, src)

	cmd := exec.CommandContext(ctx, r.svc.YtdlpPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.GetLogger().Error("yt-dlp failed",
			zap.String("task_id", run.TaskId),
			zap.String("output", string(out)),
			zap.Error(err))
		return apperrors.WrapWithDetail(apperrors.CodeVideoDownload,
			"Video download failed", tailOf(string(out), 400), err)
	}

	run.MediaPath = outPath
	run.Log("downloaded " + filepath.Base(outPath))
	return nil
}

// Cleanup removes the downloaded media on cancellation. Files supplied with
// the local: prefix belong to the user and stay.
func (r *StageRunner) Cleanup(run *pipeline.RunContext) {
	if run.MediaPath == "" || strings.HasPrefix(run.VideoSrc, LocalPrefix) {
		return
	}
	if err := os.Remove(run.MediaPath); err != nil && !os.IsNotExist(err) {
		log.GetLogger().Warn("failed to remove canceled download",
			zap.String("path", run.MediaPath), zap.Error(err))
	}
}

func tailOf(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
