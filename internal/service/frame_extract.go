package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"viracoach/internal/artifact"
	"viracoach/internal/pipeline"
	"viracoach/internal/types"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
)

// keepScenes drops scenes shorter than the minimum duration. Scene numbering
// restarts at 1 over the kept scenes so frame file names stay dense.
func keepScenes(scenes []types.Scene, minDuration float64) []types.Scene {
	return lo.Filter(scenes, func(sc types.Scene, _ int) bool {
		return sc.Duration() >= minDuration
	})
}

// ExtractFrames samples a jpeg triple around each kept scene's midpoint:
// the center frame plus one a fixed delta before and after, clamped into the
// scene. A failed scene is skipped; the stage only fails when no scene
// yields a usable center frame.
func (r *StageRunner) ExtractFrames(ctx context.Context, run *pipeline.RunContext) error {
	var sceneArt types.SceneArtifact
	if err := r.svc.Store.Read(run.VideoStem, artifact.StageScene, &sceneArt); err != nil {
		return err
	}

	kept := keepScenes(sceneArt.Scenes, r.svc.MinSceneDuration)
	if len(kept) == 0 {
		return apperrors.New(apperrors.CodeFrameExtractFailed,
			fmt.Sprintf("No scene longer than %.2fs to sample", r.svc.MinSceneDuration))
	}

	frameDir := framesDirFor(r.svc.DataRoot, run.VideoStem)
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFrameExtractFailed, "Failed to create frames directory", err)
	}

	workers := r.svc.FrameWorkers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	var samples []types.FrameSample

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, scene := range kept {
		sceneIndex := i + 1
		scene := scene
		g.Go(func() error {
			sample, err := r.extractTriple(gctx, run, scene, sceneIndex, frameDir)
			if err != nil {
				log.GetLogger().Warn("skipping scene after frame extraction failure",
					zap.String("task_id", run.TaskId),
					zap.Int("scene", sceneIndex),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			samples = append(samples, sample)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(samples) == 0 {
		return apperrors.New(apperrors.CodeFrameExtractFailed, "Frame extraction produced no frames")
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].SceneIndex < samples[j].SceneIndex })
	r.samples = samples
	run.Log(fmt.Sprintf("extracted frames for %d of %d scenes", len(samples), len(kept)))
	return nil
}

func (r *StageRunner) extractTriple(ctx context.Context, run *pipeline.RunContext, scene types.Scene, sceneIndex int, frameDir string) (types.FrameSample, error) {
	mid := scene.StartTime + scene.Duration()/2
	prev := clamp(mid-r.svc.FrameDelta, scene.StartTime, scene.EndTime)
	next := clamp(mid+r.svc.FrameDelta, scene.StartTime, scene.EndTime)

	sample := types.FrameSample{
		SceneIndex:    sceneIndex,
		Timestamp:     mid,
		FramePath:     filepath.Join(frameDir, types.FrameFileName(run.VideoStem, sceneIndex, types.FrameTagCenter)),
		PrevFramePath: filepath.Join(frameDir, types.FrameFileName(run.VideoStem, sceneIndex, types.FrameTagPrev)),
		NextFramePath: filepath.Join(frameDir, types.FrameFileName(run.VideoStem, sceneIndex, types.FrameTagNext)),
	}

	// the center frame is mandatory, the context frames best effort
	if err := r.svc.Sampler.ExtractFrameAt(ctx, run.MediaPath, mid, sample.FramePath); err != nil {
		return types.FrameSample{}, err
	}
	if err := r.svc.Sampler.ExtractFrameAt(ctx, run.MediaPath, prev, sample.PrevFramePath); err != nil {
		sample.PrevFramePath = ""
	}
	if err := r.svc.Sampler.ExtractFrameAt(ctx, run.MediaPath, next, sample.NextFramePath); err != nil {
		sample.NextFramePath = ""
	}

	brightness, err := r.svc.Sampler.BrightnessAt(ctx, run.MediaPath, mid)
	if err != nil {
		brightness = -1
	}
	sample.Brightness = brightness
	return sample, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
