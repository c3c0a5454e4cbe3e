package diskutil

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CleanStaleFiles removes regular files under root whose name ends with one
// of the given suffixes and whose modification time is older than olderThan.
// It returns the number of files removed. Unreadable entries below root are
// skipped with a warning.
func CleanStaleFiles(root string, suffixes []string, olderThan time.Duration) (int, error) {
	count := 0
	threshold := time.Now().Add(-olderThan)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("skipping unreadable entry",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(info.Name(), suffix) {
				if info.ModTime().Before(threshold) {
					if removeErr := os.Remove(path); removeErr == nil {
						count++
					}
				}
				break
			}
		}
		return nil
	})
	return count, err
}

// CleanEmptyDirs removes empty directories under root, deepest first, so a
// nested empty chain collapses in a single pass. The root itself is kept.
// It returns the number of directories removed.
func CleanEmptyDirs(root string) (int, error) {
	var dirs []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("skipping unreadable entry",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}
		if info.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for i := len(dirs) - 1; i >= 0; i-- {
		if os.Remove(dirs[i]) == nil { // Will only succeed if empty
			count++
		}
	}
	return count, nil
}
