// Package loader converts between filesystem paths and file:// URLs and
// reads module sources off an afero filesystem. It is the lowest layer of
// the module resolution subsystem: everything here is either a pure
// string/URL transformation or a single bounded filesystem operation.
package loader

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"go.quickrt.io/quickrt/lib/fsext"
)

// SourceData wraps a loaded module source; data and the URL it was loaded from.
type SourceData struct {
	Data []byte
	URL  *url.URL
}

const fileSchemeCouldntBeLoadedMsg = `The moduleSpecifier "%s" couldn't be found on ` +
	`local disk. Make sure that you've specified the right path to the file. If you're ` +
	`running quickrt in a container make sure you have mounted the local directory ` +
	`containing your script and modules so that it is accessible from inside of the container.`

// ToFileURL converts a filesystem path to a file:// URL.
//
// The path may use either separator style; backslashes are normalized to
// forward slashes before URL construction. Absolute windows paths carry a
// drive letter ("C:/...") which would otherwise be parsed as a URL scheme,
// so they get a leading slash. This function never fails - malformed input
// produces a best-effort URL and errors surface later at the probe stage.
func ToFileURL(p string) *url.URL {
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}
}

// ToFSPath converts a file:// URL back to a filesystem path.
//
// On the windows convention the URL path looks like "/C:/some/path" and the
// leading slash must be stripped; everywhere else it is retained.
func ToFSPath(u *url.URL) string {
	p := u.Path
	if len(p) >= 3 && p[0] == '/' && filepath.VolumeName(p[1:]) != "" {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// ParseFileURL parses a file:// URL string. url.Parse would treat the drive
// letter of windows URLs like file://C:/some/path as a hostname, so the path
// part is extracted manually instead.
func ParseFileURL(s string) (*url.URL, error) {
	if !strings.HasPrefix(s, "file://") {
		return nil, fmt.Errorf("%q is not a file URL", s)
	}
	p, err := url.PathUnescape(strings.TrimPrefix(s, "file://"))
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

// Dir returns the directory URL for the given module URL.
func Dir(old *url.URL) *url.URL {
	return old.ResolveReference(&url.URL{Path: "./"})
}

// FileExists reports whether p exists on fs and is a regular file.
// Directories, special files and any stat error (missing file, permission
// denied, ...) all report false; this probe never returns an error.
func FileExists(fs fsext.Fs, p string) bool {
	return fsext.IsRegularFile(fs, p)
}

// Load reads the file-backed module source behind the given URL from fs.
func Load(logger logrus.FieldLogger, fs fsext.Fs, moduleURL *url.URL) (*SourceData, error) {
	logger.WithField("url", moduleURL).Debug("Loading...")

	// u.Path is already percent-decoded, so no further unescaping here -
	// a file literally named "%41.js" must not be read as "A.js"
	pathOnFs := ToFSPath(moduleURL)

	data, err := fsext.ReadFile(fs, pathOnFs)
	if err != nil {
		return nil, fmt.Errorf(fileSchemeCouldntBeLoadedMsg, moduleURL)
	}

	logger.WithFields(logrus.Fields{
		"url": moduleURL,
		"len": len(data),
	}).Debug("Loaded!")
	return &SourceData{URL: moduleURL, Data: data}, nil
}

// Resolve joins a module specifier with the importer's directory URL,
// producing an absolute file URL. It is a pure URL operation; whether the
// result exists is the caller's concern.
func Resolve(pwd *url.URL, specifier string) *url.URL {
	specifier = strings.ReplaceAll(specifier, "\\", "/")
	if path.IsAbs(specifier) || filepath.VolumeName(specifier) != "" {
		return ToFileURL(specifier)
	}

	// the pwd must end in a slash for relative reference resolution,
	// but path.Clean strips it
	finalPwd := pwd
	if !strings.HasSuffix(pwd.Path, "/") {
		finalPwd = &url.URL{}
		*finalPwd = *pwd
		finalPwd.Path += "/"
	}
	return finalPwd.ResolveReference(&url.URL{Path: specifier})
}
