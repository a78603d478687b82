//go:build !windows

package feed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// writeFileAtomic replaces path with data. The file at path is at all times
// either the previous complete content or the new complete content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := renameio.WriteFile(path, data, 0o644, renameio.WithTempDir(dir)); err != nil {
		return fmt.Errorf("failed to replace feed file: %w", err)
	}

	// The rename is durable only once the directory entry is flushed
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}

	return nil
}
