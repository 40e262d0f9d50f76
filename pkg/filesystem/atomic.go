// Package filesystem holds the file operations the rewriter needs to be safe
// against concurrent runs and partial writes.
package filesystem

import "os"

// WriteFileAtomic replaces filename so that readers see either the old or
// the new content, never a truncated file.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return writeFileAtomic(filename, data, perm)
}
