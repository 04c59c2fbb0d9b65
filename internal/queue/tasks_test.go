package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAnalysisTaskNeverRetriesMalformedPayload(t *testing.T) {
	handlers := NewTaskHandlers()

	task := asynq.NewTask(TypeAnalysisTask, []byte("{not json"))
	err := handlers.HandleAnalysisTask(context.Background(), task)

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleAnalysisTaskNeverRetriesFailedRun(t *testing.T) {
	handlers := NewTaskHandlers()

	// an empty source fails the run before any stage executes; like every
	// pipeline failure, it must not be re-enqueued
	payload, err := json.Marshal(AnalysisPayload{TaskID: "task-1", URL: ""})
	require.NoError(t, err)

	err = handlers.HandleAnalysisTask(context.Background(), asynq.NewTask(TypeAnalysisTask, payload))

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}