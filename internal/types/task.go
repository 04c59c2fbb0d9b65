package types

import "time"

// AnalysisTaskStatus tracks a task row through its lifetime.
type AnalysisTaskStatus uint8

const (
	AnalysisTaskStatusProcessing AnalysisTaskStatus = 1
	AnalysisTaskStatusSuccess    AnalysisTaskStatus = 2
	AnalysisTaskStatusFailed     AnalysisTaskStatus = 3
	AnalysisTaskStatusCanceled   AnalysisTaskStatus = 4
)

// AnalysisTask is the persisted record of one virality analysis run.
type AnalysisTask struct {
	Id         int64              `json:"id" gorm:"primaryKey;autoIncrement"`
	TaskId     string             `json:"task_id" gorm:"uniqueIndex;size:64"`
	VideoSrc   string             `json:"video_src"`
	VideoStem  string             `json:"video_stem" gorm:"index;size:160"`
	Stage      string             `json:"stage"`
	Status     AnalysisTaskStatus `json:"status"`
	ProcessPct uint8              `json:"process_percent"`
	StatusMsg  string             `json:"status_msg"`
	StatusLog  string             `json:"status_log" gorm:"type:text"` // JSON array of status lines
	FailReason string             `json:"fail_reason"`
	// FailedProvider is set on credential failures so the UI can point at
	// the right key ("openai" or "gemini").
	FailedProvider string    `json:"failed_provider"`
	ReportPath     string    `json:"report_path"`
	CreateTime     time.Time `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime     time.Time `json:"update_time" gorm:"autoUpdateTime"`
}

func (AnalysisTask) TableName() string {
	return "analysis_tasks"
}
