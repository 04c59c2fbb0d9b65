// Package artifact persists per-stage JSON documents on disk. Each pipeline
// stage writes exactly one artifact, keyed by (video identity, stage); later
// stages locate upstream artifacts purely by recomputing the same path, so
// there is no index file to keep consistent.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apperrors "viracoach/pkg/errors"
)

// Stage names a persisted artifact kind and where it lives under the store root.
type Stage struct {
	Name   string
	Dir    string
	Suffix string
}

var (
	StageScene         = Stage{Name: "scene_detection", Dir: filepath.Join("processed", "scene-detection"), Suffix: "scene"}
	StageFrameAnalysis = Stage{Name: "frame_analysis", Dir: filepath.Join("processed", "frame-analysis"), Suffix: "frame_analysis"}
	StageAudioAnalysis = Stage{Name: "audio_analysis", Dir: filepath.Join("processed", "audio-analysis"), Suffix: "audio_analysis"}
	StageHookAnalysis  = Stage{Name: "hook_analysis", Dir: filepath.Join("processed", "hook-analysis"), Suffix: "hook_analysis"}
	StageFinalReport   = Stage{Name: "final_report", Dir: "reports", Suffix: "final_report"}
)

// Store maps (video identity, stage) to a JSON file under Root.
// There is no locking: at most one pipeline run per video identity executes
// at a time by convention. Concurrent runs from two sessions can race.
type Store struct {
	Root string
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Path is deterministic: <root>/<stage dir>/<videoID>_<suffix>.json.
func (s *Store) Path(videoID string, stage Stage) string {
	return filepath.Join(s.Root, stage.Dir, fmt.Sprintf("%s_%s.json", videoID, stage.Suffix))
}

func (s *Store) Exists(videoID string, stage Stage) bool {
	_, err := os.Stat(s.Path(videoID, stage))
	return err == nil
}

// Read unmarshals the artifact into v. A missing artifact is a
// CodeArtifactMissing AppError since downstream stages cannot proceed without it.
func (s *Store) Read(videoID string, stage Stage, v any) error {
	path := s.Path(videoID, stage)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.WrapWithDetail(apperrors.CodeArtifactMissing,
				"Upstream artifact missing", stage.Name, err)
		}
		return apperrors.Wrap(apperrors.CodeFileNotFound, "Failed to read artifact", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.Wrap(apperrors.CodeFileNotFound, "Failed to decode artifact", err)
	}
	return nil
}

// Write creates parent directories and replaces the artifact atomically:
// marshal to a temp file in the same directory, then rename. A reader never
// observes partial JSON. Prior content is overwritten silently.
func (s *Store) Write(videoID string, stage Stage, v any) error {
	path := s.Path(videoID, stage)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to create artifact directory", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to encode artifact", err)
	}

	tmp, err := os.CreateTemp(dir, "."+stage.Suffix+"-*.tmp")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to create temp artifact", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to write artifact", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to publish artifact", err)
	}
	return nil
}

// Remove deletes the artifact if present. Used by task deletion, never by the
// pipeline itself.
func (s *Store) Remove(videoID string, stage Stage) error {
	err := os.Remove(s.Path(videoID, stage))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
