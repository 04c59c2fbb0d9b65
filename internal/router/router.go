package router

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"viracoach/internal/handler"
	"viracoach/log"
	"viracoach/static"
)

func SetupRouter(r *gin.Engine) {
	api := r.Group("/api")

	hdl := handler.NewHandler()
	{
		api.POST("/analysis", hdl.StartAnalysis)
		api.GET("/analysis", hdl.GetAnalysisStatus)
		api.POST("/analysis/:taskId/cancel", hdl.CancelAnalysis)
		api.GET("/analysis/:taskId/report", hdl.GetAnalysisReport)
		api.GET("/analysis/progress", hdl.ProgressStream)
		api.GET("/history", hdl.GetTaskHistory)
		api.DELETE("/task/:taskId", hdl.DeleteTask)
		api.POST("/file", hdl.UploadFile)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/static")
	})
	if _, err := os.Stat("static"); err == nil {
		log.GetLogger().Info("Using local static directory")
		r.Static("/static", "static")
	} else {
		log.GetLogger().Info("Using embedded static files")
		r.StaticFS("/static", http.FS(static.EmbeddedFiles))
	}
}
