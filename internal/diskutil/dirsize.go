package diskutil

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DirectorySize returns the total size in bytes of all regular files under
// path, at any depth. Symlinks, devices and other non-regular entries are
// ignored. Entries that cannot be read are skipped with a warning so a bad
// subtree cannot poison the rest of the total. When the top-level directory
// itself cannot be listed, the failure is logged and 0 is returned.
func DirectorySize(path string) int64 {
	var size int64

	stack := []string{path}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == path {
				log.Error("failed to read directory",
					zap.String("path", path),
					zap.Error(err))
				return 0
			}
			log.Warn("skipping unreadable subdirectory",
				zap.String("path", dir),
				zap.Error(err))
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				stack = append(stack, filepath.Join(dir, entry.Name()))
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				log.Warn("skipping unreadable entry",
					zap.String("path", filepath.Join(dir, entry.Name())),
					zap.Error(err))
				continue
			}
			size += info.Size()
		}
	}

	return size
}
