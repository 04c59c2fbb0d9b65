package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viracoach/internal/dto"
	"viracoach/internal/response"
	"viracoach/internal/service"
	"viracoach/internal/storage"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
)

func (h *Handler) StartAnalysis(c *gin.Context) {
	var req dto.StartAnalysisReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartAnalysis ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartAnalysis received request", zap.String("url", req.Url))

	svc, err := h.currentService(service.KeyOverrides{
		OpenaiKey: req.OpenaiKey,
		GeminiKey: req.GeminiKey,
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	taskId, err := dispatchAnalysis(svc, req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.StartAnalysisResData{TaskId: taskId})
}

func (h *Handler) GetAnalysisStatus(c *gin.Context) {
	taskId := c.Query("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	svc, err := h.currentService(service.KeyOverrides{})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	data, err := svc.GetTaskStatus(taskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) CancelAnalysis(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	svc, err := h.currentService(service.KeyOverrides{})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	if err := svc.CancelTask(taskId); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, gin.H{"task_id": taskId})
}

func (h *Handler) GetAnalysisReport(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	svc, err := h.currentService(service.KeyOverrides{})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	report, err := svc.GetReport(taskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, report)
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	tasks, err := storage.GetTaskHistory(200)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to load task history", err))
		return
	}
	response.Success(c, tasks)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	if err := storage.DeleteTask(taskId); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to delete task", err))
		return
	}
	response.Success(c, gin.H{"task_id": taskId})
}
