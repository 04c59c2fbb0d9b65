package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"viracoach/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

func resolveDataRoot() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.DataRootFor(dirs), nil
}

func resolveRawDir() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.RawDirFor(dirs), nil
}

func framesDirFor(dataRoot, videoStem string) string {
	return filepath.Join(dataRoot, "frames", videoStem)
}

func audioPathFor(dataRoot, videoStem string) string {
	return filepath.Join(dataRoot, "audio", videoStem+".wav")
}

// resolveServeFilePath maps an absolute artifact path back to a relative,
// slash-separated path the file handler may serve. Anything escaping the
// data root is rejected.
func resolveServeFilePath(localPath string) (string, error) {
	dataRoot, err := resolveDataRoot()
	if err != nil {
		return "", err
	}

	cleaned := filepath.Clean(localPath)
	relPath, err := filepath.Rel(dataRoot, cleaned)
	if err != nil {
		return "", err
	}
	if relPath == "." || relPath == "" {
		return "", fmt.Errorf("artifact path %q is not a file path", localPath)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact path %q is outside data root %q", localPath, dataRoot)
	}
	return filepath.ToSlash(relPath), nil
}
