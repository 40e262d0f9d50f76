//go:build !windows

package filesystem

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFileAtomic writes a temp file next to filename and renames it into place.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
