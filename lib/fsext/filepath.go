package fsext

import (
	"path/filepath"
	"strings"
)

// JoinFilePath is a wrapper around filepath.Join
// starting go 1.20 on Windows, Clean (that is used inside
// filepath.Join) does not modify the volume name
// other than to replace occurrences of "/" with `\`.
// that's why we need to add a leading slash to the path
// go.1.19: filepath.Join("\\c:", "test")  // \c:\test
// go.1.20: filepath.Join("\\c:", "test")  // \c:test
func JoinFilePath(b, p string) string {
	return filepath.Join(b, filepath.Clean("/"+p))
}

// Abs returns an absolute representation of path.
//
// If the path is not absolute it will be joined with root
// to turn it into an absolute path. The root path is assumed
// to be a directory.
//
// Because the resolver works against its own (possibly virtual) file system,
// it needs to resolve paths against an explicit root instead of the host
// process working directory. Absolute paths starting from the current drive
// on windows (`\users\noname\...`) are handled as well.
func Abs(root, path string) string {
	if path == "" {
		return root
	}
	if path[0] != '/' && path[0] != '\\' && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	if !strings.HasPrefix(path, FilePathSeparator) && filepath.VolumeName(path) == "" {
		path = FilePathSeparator + path
	}

	return path
}
