package modules

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"go.quickrt.io/quickrt/lib/fsext"
	"go.quickrt.io/quickrt/loader"
)

// ErrModuleNotFound is wrapped by every terminal resolution failure.
var ErrModuleNotFound = errors.New("module not found")

// DelegateResolveFunc is the engine's own default resolution, used for
// built-ins and as the final fallback when every local strategy misses.
// It is allowed to fail with a "module not found" condition of its own.
type DelegateResolveFunc func(specifier string, rctx *ResolveContext) (*Resolution, error)

// Resolver classifies incoming specifiers and drives them through the
// resolution strategies. It is the hook-compatible default resolve that
// sits at the tail of every hook chain.
type Resolver struct {
	fs       fsext.Fs
	logger   logrus.FieldLogger
	workdir  string
	platform string
	builtins map[string]struct{}
	delegate DelegateResolveFunc
}

// NewResolver returns a Resolver working against the given filesystem.
// workdir is the absolute path relative specifiers of entry points resolve
// against. builtins is the static set of native module names; delegate is
// the engine's default resolution and may be nil, in which case exhaustion
// and built-in resolution fail with ErrModuleNotFound.
func NewResolver(
	fs fsext.Fs, logger logrus.FieldLogger, workdir string,
	builtins []string, delegate DelegateResolveFunc,
) *Resolver {
	set := make(map[string]struct{}, len(builtins))
	for _, name := range builtins {
		set[name] = struct{}{}
	}
	if delegate == nil {
		delegate = func(specifier string, _ *ResolveContext) (*Resolution, error) {
			return nil, fmt.Errorf("no engine resolution for %q: %w", specifier, ErrModuleNotFound)
		}
	}
	return &Resolver{
		fs:       fs,
		logger:   logger,
		workdir:  workdir,
		platform: "node",
		builtins: set,
		delegate: delegate,
	}
}

// SetPlatform sets the platform name used to pick platform-specific manifest
// entry points ("node" by default, "browser" for browser-flavored builds).
func (r *Resolver) SetPlatform(platform string) {
	r.platform = platform
}

// IsBuiltin reports whether the specifier names a built-in/native module,
// with or without the "node:" alias prefix.
func (r *Resolver) IsBuiltin(specifier string) bool {
	_, ok := r.builtins[normalizeBuiltinName(specifier)]
	return ok
}

// Resolve is the top-level resolution entry point: it classifies specifier
// and dispatches to the matching strategy. The decision cascade is strictly
// ordered; every state either returns or falls through to the next, and all
// filesystem misses are soft except malformed manifest/JSON data.
//
// Resolution is idempotent for a fixed (specifier, context) pair absent
// filesystem mutation.
func (r *Resolver) Resolve(specifier string, rctx *ResolveContext) (*Resolution, error) {
	if specifier == "" {
		return nil, fmt.Errorf("cannot resolve an empty specifier: %w", ErrModuleNotFound)
	}
	r.logger.WithFields(logrus.Fields{
		"specifier": specifier,
		"parent":    parentString(rctx),
	}).Debug("Resolving...")

	// 1. an already-resolved engine URL passes through verbatim
	if strings.HasPrefix(specifier, "file://") {
		if u, err := loader.ParseFileURL(specifier); err == nil {
			r.logger.WithField("url", u).Debug("Resolved as engine URL")
			return &Resolution{URL: u, Format: FormatModule, ShortCircuit: true}, nil
		}
	}

	// 2. built-ins delegate to the engine before any filesystem lookup,
	// so same-named files can never shadow them
	if r.IsBuiltin(specifier) {
		r.logger.WithField("specifier", specifier).Debug("Resolved as builtin")
		return r.delegate(specifier, rctx)
	}

	lastCandidate := ""

	// 3. relative/absolute filesystem candidate
	if isPathSpecifier(specifier) {
		candidate := loader.ToFSPath(loader.Resolve(r.parentBase(rctx), specifier))
		lastCandidate = candidate
		res, err := r.tryResolvePath(candidate, FormatModule)
		if err != nil {
			return nil, err
		}
		if res != nil {
			r.logger.WithField("url", res.URL).Debug("Resolved as path")
			return res, nil
		}
	} else {
		// 4. bare package joined as a path under node_modules
		candidate := filepath.Join(r.workdir, "node_modules", specifier)
		lastCandidate = candidate
		res, err := r.tryResolvePath(candidate, FormatCommonJS)
		if err != nil {
			return nil, err
		}
		if res != nil {
			if !res.Synthetic() { // synthesized JSON stays commonjs
				format, err := classifyPackageFormat(r.fs, loader.ToFSPath(res.URL), res.Format)
				if err != nil {
					return nil, err
				}
				res.Format = format
			}
			r.logger.WithFields(logrus.Fields{
				"url": res.URL, "format": res.Format,
			}).Debug("Resolved as package path")
			return res, nil
		}

		// 5. bare package via its manifest entry point
		res, candidate, err = r.resolvePackageEntry(specifier)
		if err != nil {
			return nil, err
		}
		if res != nil {
			r.logger.WithFields(logrus.Fields{
				"url": res.URL, "format": res.Format,
			}).Debug("Resolved via package manifest")
			return res, nil
		}
		if candidate != "" {
			lastCandidate = candidate
		}
	}

	// 6. exhausted: the engine's own resolver gets the final word
	r.logger.WithField("specifier", specifier).Debug("Exhausted, delegating")
	res, err := r.delegate(specifier, rctx)
	if err != nil {
		return nil, fmt.Errorf("error resolving %q (last candidate tried: %q): %w",
			specifier, lastCandidate, err)
	}
	return res, nil
}

// resolvePackageEntry handles the manifest-driven fallback for bare
// specifiers: the first one or two path segments (two for @scope/name
// shapes) locate the package directory, whose manifest names the entry
// point. A "module" entry is tagged ESM, platform/"main" entries CommonJS.
// Returns the last candidate path tried for diagnostics.
func (r *Resolver) resolvePackageEntry(specifier string) (*Resolution, string, error) {
	pkgDir := filepath.Join(r.workdir, "node_modules", packageDirName(specifier))
	manifestPath := filepath.Join(pkgDir, "package.json")
	if !loader.FileExists(r.fs, manifestPath) {
		return nil, manifestPath, nil
	}
	manifest, err := parseManifest(r.fs, manifestPath)
	if err != nil {
		return nil, manifestPath, err
	}

	entry, format := manifest.Module, FormatModule
	if entry == "" && r.platform != "" {
		switch r.platform {
		case "browser":
			entry, format = manifest.Browser, FormatCommonJS
		}
	}
	if entry == "" {
		entry, format = manifest.Main, FormatCommonJS
	}
	if entry == "" {
		return nil, manifestPath, nil
	}

	entryPath := fsext.JoinFilePath(pkgDir, entry)
	if !loader.FileExists(r.fs, entryPath) {
		return nil, entryPath, nil
	}
	return FileBacked(loader.ToFileURL(entryPath), format), entryPath, nil
}

// parentBase computes the base URL relative specifiers resolve against:
// the importer's directory, or the working directory for entry points.
func (r *Resolver) parentBase(rctx *ResolveContext) *url.URL {
	if rctx == nil || rctx.ParentURL == nil {
		return loader.ToFileURL(r.workdir)
	}
	return loader.Dir(rctx.ParentURL)
}

func isPathSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/") ||
		filepath.IsAbs(specifier)
}

// packageDirName returns the leading one or two segments of a bare
// specifier that name the package directory: two for scoped (@scope/name)
// packages, one otherwise. Deeper subpaths are deliberately not
// disambiguated beyond this heuristic.
func packageDirName(specifier string) string {
	segments := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(segments) >= 2 {
		return filepath.Join(segments[0], segments[1])
	}
	return segments[0]
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	return fsext.ReadFile(r.fs, path)
}

func parentString(rctx *ResolveContext) string {
	if rctx == nil || rctx.ParentURL == nil {
		return ""
	}
	return rctx.ParentURL.String()
}
