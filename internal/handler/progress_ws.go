package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"viracoach/internal/response"
	"viracoach/internal/service"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the UI and the API share an origin; same-host tools are fine too
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// ProgressStream upgrades to a websocket and pushes progress events for one
// task until the task reaches a terminal state or the client goes away.
func (h *Handler) ProgressStream(c *gin.Context) {
	taskId := c.Query("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := service.Subscribe(taskId)
	defer cancel()

	// reader goroutine notices the client closing the socket
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Progress >= 100 || event.State == "canceled" || event.State == "error" {
				return
			}
		case <-done:
			return
		}
	}
}
