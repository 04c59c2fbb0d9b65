package types

import "context"

// Collaborator contracts. Scene detection, frame sampling, transcription,
// loudness measurement and multimodal reasoning are all delegated: the
// pipeline owns sequencing and artifact persistence, never the algorithms.

// SceneDetector finds shot boundaries in a local media file.
type SceneDetector interface {
	DetectScenes(ctx context.Context, mediaPath string, threshold float64) ([]Scene, error)
}

// FrameSampler pulls single frames and brightness readings out of a video.
type FrameSampler interface {
	ExtractFrameAt(ctx context.Context, mediaPath string, timestamp float64, outPath string) error
	BrightnessAt(ctx context.Context, mediaPath string, timestamp float64) (float64, error)
}

// AudioExtractor demuxes a video's audio track into a mono 16k wav.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, mediaPath, outPath string) error
}

// TranscriptSegment mirrors the Whisper verbose segment shape; End of the
// last segment doubles as the spoken duration.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// Transcriber converts an audio file into text with timing.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Transcript, error)
}

// LoudnessStats are in decibels; nil means unmeasurable (silent track, demux
// oddity) and flows through to the artifact as JSON null.
type LoudnessStats struct {
	Mean *float64 `json:"mean"`
	Peak *float64 `json:"peak"`
}

// LoudnessMeter measures volume statistics of an audio file.
type LoudnessMeter interface {
	LoudnessStats(ctx context.Context, audioPath string) (LoudnessStats, error)
}

// ChatCompleter answers a plain-text prompt.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, prompt string) (string, error)
}

// VisionCompleter answers a prompt with attached images (local jpeg paths).
// Both AI providers expose this same shape; callers must tolerate empty or
// malformed response text.
type VisionCompleter interface {
	VisionCompletion(ctx context.Context, prompt string, imagePaths []string) (string, error)
}
