package storage

import (
	"errors"

	"viracoach/internal/types"

	"gorm.io/gorm"
)

func SaveTask(task *types.AnalysisTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// TaskId is the external identity; keep the synthetic primary key stable
	// across upserts.
	var existing types.AnalysisTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetTask(taskId string) (*types.AnalysisTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.AnalysisTask
	if err := DB.Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetTaskHistory(limit int) ([]types.AnalysisTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.AnalysisTask
	if err := DB.Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.AnalysisTask{}).Error
}

// MarkStaleTasks fails any task still marked processing. Called on startup so
// runs interrupted by a crash or restart do not stay stuck forever.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.AnalysisTask{}).
		Where("status = ?", types.AnalysisTaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.AnalysisTaskStatusFailed,
			"fail_reason": "task interrupted by server restart",
			"status_msg":  "interrupted",
		})
	return result.RowsAffected, result.Error
}
