package util

import (
	"os"
	"path/filepath"
	"strings"
)

// TempSuffix marks per-volume asset folders that only live during assembly.
const TempSuffix = "_tmp"

// CleanupUnfinishedTempFolders removes asset folders left behind by an
// interrupted run and returns the paths it removed.
func CleanupUnfinishedTempFolders(outputDir string) []string {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil
	}

	var removed []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !strings.HasSuffix(name, TempSuffix) {
			continue
		}

		full := filepath.Join(outputDir, name)
		if err := os.RemoveAll(full); err == nil {
			removed = append(removed, full)
		}
	}

	return removed
}

// RemoveIfEmpty deletes dir when nothing was written into it.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	return os.Remove(dir) == nil
}

func CleanupFolder(folder string) {
	_ = os.RemoveAll(folder)
}
