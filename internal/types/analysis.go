package types

import "fmt"

// Scene is a detected shot boundary pair in seconds. Scenes are chronological
// and non-overlapping; scenes shorter than the configured minimum duration are
// dropped before frame extraction, not here.
type Scene struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func (s Scene) Duration() float64 {
	return s.EndTime - s.StartTime
}

// SceneArtifact is the persisted output of the scene detection stage.
type SceneArtifact struct {
	Scenes   []Scene `json:"scenes"`
	Fallback bool    `json:"fallback,omitempty"`
}

// FrameTag distinguishes the three samples taken around a scene midpoint.
type FrameTag string

const (
	FrameTagCenter FrameTag = ""
	FrameTagPrev   FrameTag = "_prev"
	FrameTagNext   FrameTag = "_next"
)

// FrameFileName is a pure function of (video identity, scene index, tag).
// Downstream stages recompute it to locate frames without a manifest file,
// e.g. clip_scene_03.jpg / clip_scene_03_prev.jpg / clip_scene_03_next.jpg.
func FrameFileName(videoStem string, sceneIndex int, tag FrameTag) string {
	return fmt.Sprintf("%s_scene_%02d%s.jpg", videoStem, sceneIndex, tag)
}

// FrameSample is one extracted midpoint triple plus its brightness reading.
type FrameSample struct {
	SceneIndex    int     `json:"scene_index"`
	Timestamp     float64 `json:"timestamp"`
	FramePath     string  `json:"frame_path"`
	PrevFramePath string  `json:"prev_frame_path"`
	NextFramePath string  `json:"next_frame_path"`
	Brightness    float64 `json:"brightness"`
}

// FrameInsight is the vision model's judgment of one center frame.
// A per-frame analysis failure is recorded in Error and the batch continues.
type FrameInsight struct {
	Lighting       int    `json:"lighting"`
	IsArtisticDark bool   `json:"is_artistic_dark"`
	Composition    int    `json:"composition"`
	HasText        bool   `json:"has_text"`
	Text           string `json:"text"`
	HookStrength   int    `json:"hook_strength"`
	Error          string `json:"error,omitempty"`
}

// FrameAnalysisArtifact maps center-frame file name to its insight.
type FrameAnalysisArtifact map[string]FrameInsight

// AudioAnalysis combines transcription stats, loudness and the LLM's read of
// tone/emotion/pace. LoudnessMean/Peak are nil when ffmpeg could not measure.
type AudioAnalysis struct {
	FullTranscript  string   `json:"full_transcript"`
	DurationSeconds float64  `json:"duration_seconds"`
	WordCount       int      `json:"word_count"`
	WordsPerSecond  float64  `json:"words_per_second"`
	LoudnessMean    *float64 `json:"loudness_mean"`
	LoudnessPeak    *float64 `json:"loudness_peak"`

	Tone           string  `json:"tone"`
	Emotion        string  `json:"emotion"`
	Pace           string  `json:"pace"`
	DeliveryScore  int     `json:"delivery_score"`
	IsHookingStart bool    `json:"is_hooking_start"`
	Comment        string  `json:"comment"`
	IsDarkArtistic bool    `json:"is_dark_artistic"`
	Brightness     float64 `json:"brightness"`
}

// HookAnalysis scores how well the opening seconds of the video hold together.
type HookAnalysis struct {
	HookAlignmentScore int    `json:"hook_alignment_score"`
	FacialSync         string `json:"facial_sync"`
	Comment            string `json:"comment"`
}

// ReportScores are the five judged sub-scores, each 0-100.
type ReportScores struct {
	Hook            int `json:"hook"`
	Visuals         int `json:"visuals"`
	Audio           int `json:"audio"`
	Engagement      int `json:"engagement"`
	VisualDiversity int `json:"visual_diversity"`
}

// ReportMatrices are the derived qualitative attributes.
type ReportMatrices struct {
	Tone       string `json:"tone"`
	Emotion    string `json:"emotion"`
	Pace       string `json:"pace"`
	FacialSync string `json:"facial_sync"`
}

// FinalReport is the terminal artifact of a pipeline run.
type FinalReport struct {
	VideoName   string         `json:"video_name"`
	TotalScore  int            `json:"total_score"`
	Scores      ReportScores   `json:"scores"`
	Matrices    ReportMatrices `json:"matrices"`
	Summary     string         `json:"summary"`
	Suggestions []string       `json:"suggestions"`
}

// Allowed label sets for normalizing model enum output.
var (
	ToneLabels       = []string{"calm", "excited", "angry", "funny", "sad", "relatable", "neutral"}
	EmotionLabels    = []string{"joy", "sadness", "anger", "surprise", "inspiration", "neutral", "mixed"}
	PaceLabels       = []string{"fast", "medium", "slow"}
	FacialSyncLabels = []string{"good", "ok", "poor", "none"}
)

// DefaultAudioAnalysis is the documented record substituted when the audio LLM
// call fails for a non-credential reason or returns unparseable text.
func DefaultAudioAnalysis(brightness float64, comment string) AudioAnalysis {
	return AudioAnalysis{
		Tone:          "neutral",
		Emotion:       "neutral",
		Pace:          "medium",
		DeliveryScore: 50,
		Comment:       comment,
		Brightness:    brightness,
	}
}

// DefaultHookAnalysis is the documented record substituted when the hook LLM
// call fails for a non-credential reason or returns unparseable text.
func DefaultHookAnalysis(comment string) HookAnalysis {
	return HookAnalysis{
		HookAlignmentScore: -1,
		FacialSync:         "none",
		Comment:            comment,
	}
}
