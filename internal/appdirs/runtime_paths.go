package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	RawDirName     = "raw"
	UploadRootName = "uploads"
	dbFileName     = "viracoach.db"
)

// DataRootFor is the base directory for media, frames and stage artifacts.
func DataRootFor(paths Paths) string {
	return normalizeDataDir(paths.DataDir)
}

// RawDirFor is where downloaded/uploaded source videos land.
func RawDirFor(paths Paths) string {
	return filepath.Join(normalizeDataDir(paths.DataDir), RawDirName)
}

// UploadRootFor is the staging dir for files posted via the upload API.
func UploadRootFor(paths Paths) string {
	return filepath.Join(normalizeDataDir(paths.DataDir), UploadRootName)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func ResolveDataRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return normalizeDataDir(paths.DataDir), nil
}

func ResolveRawDir() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return RawDirFor(paths), nil
}

func ResolveUploadRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return UploadRootFor(paths), nil
}

func ResolveDBPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return DBPathFor(paths), nil
}

func normalizeDataDir(dataDir string) string {
	cleaned := strings.TrimSpace(dataDir)
	if cleaned == "" {
		return "data"
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
