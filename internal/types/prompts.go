package types

// FrameAnalysisPrompt judges one center frame with its prev/next context.
var FrameAnalysisPrompt = `You are an expert video content strategist. Analyze this video frame and surrounding context.
Determine if the lighting is poor or intentionally low for creative reasons.

Output JSON only:
{
  "lighting": 0-100,
  "is_artistic_dark": true|false,
  "composition": 0-100,
  "has_text": true|false,
  "text": "string",
  "hook_strength": 0-100
}`

// AudioAnalysisPrompt asks for a tone/emotion/pace read of the soundtrack,
// grounded in the transcript, loudness numbers and the first scene's frames.
// Args: transcript, loudness JSON, words per second, frame brightness.
var AudioAnalysisPrompt = `You are an expert video analyst. Based on the transcript, loudness, speaking pace,
and the first scene's frames (prev, current, next), analyze the audio tone.

Answer in JSON only:
{
  "tone": "calm|excited|angry|funny|sad|neutral",
  "emotion": "joy|sadness|anger|surprise|neutral|mixed",
  "pace": "fast|medium|slow",
  "delivery_score": 0-100,
  "is_hooking_start": true|false,
  "comment": "brief summary of audio performance",
  "is_dark_artistic": true|false,
  "brightness": 0-100
}

Transcript: %s
Loudness: %s
Words/sec: %.2f
Frame brightness: %.2f`

// HookAnalysisPrompt checks whether the opening visuals and the audio mood
// line up well enough to hold a viewer. Arg: audio summary JSON.
var HookAnalysisPrompt = `You are a virality analyst. Analyze the opening visuals and tone:
- Does the audio mood match the expressions and visuals?
- Are viewers likely to be hooked in the first few seconds?

Audio Summary: %s

Give JSON only:
{
  "hook_alignment_score": 0-100,
  "facial_sync": "good|ok|poor|none",
  "comment": "short summary"
}`

// ReportSystemPrompt sets the evaluator persona for the final scoring call.
var ReportSystemPrompt = `You are a professional short-video quality evaluator.`

// ReportPromptHeader opens the final scoring prompt; artifact JSON sections
// and the output-format trailer are appended by the scoring stage.
var ReportPromptHeader = `You are an expert evaluator trained to assess the virality potential and content quality
of short-form video ads (TikToks, Reels, Shorts). You are provided with:

- A sequence of scene-selected frame analyses
- A full audio transcription with audio statistics
- A hook alignment analysis

Your task is to analyze the video and assign five scores with weighted importance.

### Scores to Judge (Each 0-100)

- "hook": Does the video grab attention in the first 3 seconds? A good hook is surprising, emotional, funny, or visually intense.
- "visuals": Are visuals high-resolution, diverse, and relevant to the message?
- "audio": Is the audio clean, engaging, and well-synced?
- "engagement": Does the video maintain interest? Strong pacing and emotional depth improve this.
- "visual_diversity": Does the video use multiple camera angles, transitions, or visual styles?

### Scoring Enforcement Guidelines

- Be strict: low-effort content should fall well below 50
- Be realistic: reward polish, creativity, clarity, and emotional impact
- Only videos with clear intent and great execution should reach 80+
- Ensure your scores reflect meaningful differences between videos`

// ReportPromptFooter closes the scoring prompt. Arg: video name.
var ReportPromptFooter = `### Output Format (JSON Only - No Comments or Explanations):
{
  "video_name": "%s",
  "scores": {
    "hook": 0,
    "visuals": 0,
    "audio": 0,
    "engagement": 0,
    "visual_diversity": 0
  },
  "matrices": {
    "tone": "",
    "emotion": "",
    "pace": "",
    "facial_sync": ""
  },
  "summary": "",
  "suggestions": [
    "Specific improvement 1",
    "Specific improvement 2",
    "Specific improvement 3"
  ]
}`
