// Package fsext provides extended file system functions used by the module
// resolver. All filesystem access in quickrt goes through an afero.Fs so the
// resolution strategies can be exercised against in-memory filesystems.
package fsext

import (
	"os"

	"github.com/spf13/afero"
)

// Fs is the filesystem type used throughout quickrt.
type Fs = afero.Fs

// FilePathSeparator is the filepath separator as a string.
const FilePathSeparator = string(os.PathSeparator)

// NewMemMapFs returns a new in-memory filesystem, mostly used in tests.
func NewMemMapFs() Fs {
	return afero.NewMemMapFs()
}

// NewOsFs returns a filesystem backed by the host OS.
func NewOsFs() Fs {
	return afero.NewOsFs()
}

// ReadFile reads the whole file from the given filesystem.
func ReadFile(fs Fs, filename string) ([]byte, error) {
	return afero.ReadFile(fs, filename)
}

// WriteFile writes data to the named file on the given filesystem.
func WriteFile(fs Fs, filename string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(fs, filename, data, perm)
}

// IsRegularFile reports whether name exists on fs and is a regular file.
// Any stat error, including permission errors, is treated as "not a file" -
// callers that need the actual cause have to stat on their own.
func IsRegularFile(fs Fs, name string) bool {
	info, err := fs.Stat(name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
