package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"viracoach/internal/dto"
	"viracoach/internal/storage"
	"viracoach/internal/types"
)

func openTaskDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.AnalysisTask{}))

	original := storage.DB
	storage.DB = db
	t.Cleanup(func() {
		storage.DB = original
	})
}

func TestProcessAnalysisTaskStopsOnCanceledContext(t *testing.T) {
	openTaskDB(t)
	svc := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a canceled host ctx (worker shutdown, task timeout) must stop the
	// run at the first stage boundary, before any collaborator is called
	err := svc.ProcessAnalysisTask(ctx, dto.StartAnalysisReq{Url: "local:/videos/clip.mp4"}, "task-ctx")
	require.NoError(t, err)

	task, err := storage.GetTask("task-ctx")
	require.NoError(t, err)
	assert.Equal(t, types.AnalysisTaskStatusCanceled, task.Status)
	assert.Equal(t, "canceled", task.StatusMsg)
}

func TestProcessAnalysisTaskRejectsEmptySource(t *testing.T) {
	openTaskDB(t)
	svc := newTestService(t)

	err := svc.ProcessAnalysisTask(context.Background(), dto.StartAnalysisReq{Url: "  "}, "task-empty")
	require.Error(t, err)
}
