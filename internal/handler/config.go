package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viracoach/config"
	"viracoach/internal/response"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
)

type configView struct {
	Server   config.ServerConfig   `json:"server"`
	App      config.AppConfig      `json:"app"`
	Pipeline config.PipelineConfig `json:"pipeline"`
	Openai   openaiView            `json:"openai"`
	Gemini   geminiView            `json:"gemini"`
}

type openaiView struct {
	BaseUrl      string `json:"base_url"`
	ApiKey       string `json:"api_key"`
	ChatModel    string `json:"chat_model"`
	VisionModel  string `json:"vision_model"`
	WhisperModel string `json:"whisper_model"`
}

type geminiView struct {
	ApiKey string `json:"api_key"`
	Model  string `json:"model"`
}

// GetConfig exposes the editable configuration with credentials masked.
func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, configView{
		Server:   config.Conf.Server,
		App:      config.Conf.App,
		Pipeline: config.Conf.Pipeline,
		Openai: openaiView{
			BaseUrl:      config.Conf.Openai.BaseUrl,
			ApiKey:       maskKey(config.Conf.Openai.ApiKey),
			ChatModel:    config.Conf.Openai.ChatModel,
			VisionModel:  config.Conf.Openai.VisionModel,
			WhisperModel: config.Conf.Openai.WhisperModel,
		},
		Gemini: geminiView{
			ApiKey: maskKey(config.Conf.Gemini.ApiKey),
			Model:  config.Conf.Gemini.Model,
		},
	})
}

type updateConfigReq struct {
	App      *config.AppConfig      `json:"app"`
	Pipeline *config.PipelineConfig `json:"pipeline"`
	Openai   *openaiView            `json:"openai"`
	Gemini   *geminiView            `json:"gemini"`
}

// UpdateConfig applies the submitted sections, persists the file, and marks
// the service for a rebuild on the next request. Masked keys echoed back by
// the UI are ignored so a read-modify-write does not clobber real keys.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req updateConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	if req.App != nil {
		config.Conf.App = *req.App
	}
	if req.Pipeline != nil {
		config.Conf.Pipeline = *req.Pipeline
	}
	if req.Openai != nil {
		config.Conf.Openai.BaseUrl = req.Openai.BaseUrl
		config.Conf.Openai.ChatModel = req.Openai.ChatModel
		config.Conf.Openai.VisionModel = req.Openai.VisionModel
		config.Conf.Openai.WhisperModel = req.Openai.WhisperModel
		if key := strings.TrimSpace(req.Openai.ApiKey); key != "" && !isMasked(key) {
			config.Conf.Openai.ApiKey = key
		}
	}
	if req.Gemini != nil {
		config.Conf.Gemini.Model = req.Gemini.Model
		if key := strings.TrimSpace(req.Gemini.ApiKey); key != "" && !isMasked(key) {
			config.Conf.Gemini.ApiKey = key
		}
	}

	if err := config.SaveConfig(); err != nil {
		log.GetLogger().Error("UpdateConfig save failed", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to save configuration", err))
		return
	}

	configUpdated = true
	response.Success(c, gin.H{"updated": true})
}

func maskKey(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
}

func isMasked(key string) bool {
	return strings.Contains(key, "****")
}
