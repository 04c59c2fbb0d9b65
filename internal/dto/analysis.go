package dto

// StartAnalysisReq starts a virality analysis. Url accepts a platform link,
// a direct media link, or a "local:" path produced by the upload endpoint.
// The key fields override the configured credentials for this run only.
type StartAnalysisReq struct {
	Url       string `json:"url" binding:"required"`
	OpenaiKey string `json:"openai_key"`
	GeminiKey string `json:"gemini_key"`
}

type StartAnalysisResData struct {
	TaskId string `json:"task_id"`
}

type StartAnalysisRes struct {
	Error int32                 `json:"error"`
	Msg   string                `json:"msg"`
	Data  *StartAnalysisResData `json:"data"`
}

type AnalysisTaskStatusResData struct {
	TaskId          string   `json:"task_id"`
	VideoStem       string   `json:"video_stem"`
	Stage           string   `json:"stage"`
	Status          uint8    `json:"status"`
	ProcessPercent  uint8    `json:"process_percent"`
	StatusMsg       string   `json:"status_msg"`
	StatusLog       []string `json:"status_log"`
	FailReason      string   `json:"fail_reason,omitempty"`
	FailedProvider  string   `json:"failed_provider,omitempty"`
	ReportAvailable bool     `json:"report_available"`
}

type AnalysisTaskStatusRes struct {
	Error int32                      `json:"error"`
	Msg   string                     `json:"msg"`
	Data  *AnalysisTaskStatusResData `json:"data"`
}
