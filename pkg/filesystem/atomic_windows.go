//go:build windows

package filesystem

import "os"

// renameio has no Windows support; the write is not atomic there.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}
