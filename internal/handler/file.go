package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viracoach/internal/appdirs"
	"viracoach/internal/response"
	"viracoach/log"
	apperrors "viracoach/pkg/errors"
)

var appDirsResolver = appdirs.Resolve

func uploadRoot() string {
	if dirs, err := appDirsResolver(); err == nil {
		return appdirs.UploadRootFor(dirs)
	}
	return "uploads"
}

func dataRoot() string {
	if dirs, err := appDirsResolver(); err == nil {
		return appdirs.DataRootFor(dirs)
	}
	return "data"
}

// UploadFile stages posted videos and returns "local:" sources that can be
// fed straight into the analysis endpoint.
func (h *Handler) UploadFile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "No file received", err))
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		response.Error(c, apperrors.CodeInvalidParams, "No file uploaded")
		return
	}

	root := uploadRoot()
	if err := os.MkdirAll(root, 0o755); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to create upload directory", err))
		return
	}

	var savedFiles []string
	for _, file := range files {
		savePath := filepath.Join(root, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, savePath); err != nil {
			log.GetLogger().Error("UploadFile save failed", zap.String("file", file.Filename), zap.Error(err))
			response.Error(c, apperrors.CodeFileWriteError, "Failed to save "+file.Filename)
			return
		}
		savedFiles = append(savedFiles, "local:"+savePath)
	}

	response.Success(c, gin.H{"file_path": savedFiles})
}

// DownloadFile serves artifacts (frames, reports) from under the data root.
// Path traversal outside the root is rejected.
func (h *Handler) DownloadFile(c *gin.Context) {
	requested := strings.TrimPrefix(c.Param("filepath"), "/")
	if requested == "" {
		response.Error(c, apperrors.CodeInvalidParams, "File path is empty")
		return
	}

	root := dataRoot()
	cleaned := filepath.Clean(filepath.Join(root, filepath.FromSlash(requested)))
	rel, err := filepath.Rel(root, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		response.Error(c, apperrors.CodeInvalidParams, "Invalid file path")
		return
	}

	if _, err := os.Stat(cleaned); os.IsNotExist(err) {
		c.JSON(404, response.FromError(apperrors.New(apperrors.CodeFileNotFound, "File not found")))
		return
	}
	c.FileAttachment(cleaned, filepath.Base(cleaned))
}
