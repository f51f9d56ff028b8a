package modules

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.quickrt.io/quickrt/lib/fsext"
	"go.quickrt.io/quickrt/loader"
)

// PackageManifest is the subset of package.json the resolver understands.
// Unknown fields are ignored.
type PackageManifest struct {
	Name    string `json:"name"`
	Main    string `json:"main"`
	Module  string `json:"module"`
	Browser string `json:"browser"`
	Format  string `json:"format"`
}

// parseManifest reads and parses a package.json. A manifest that exists but
// doesn't parse is a hard error - malformed package metadata is not a
// recoverable condition, proceeding would mask a broken dependency tree.
func parseManifest(fs fsext.Fs, path string) (*PackageManifest, error) {
	data, err := fsext.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read manifest %q: %w", path, err)
	}
	var manifest PackageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("couldn't parse manifest %q: %w", path, err)
	}
	return &manifest, nil
}

// findNearestManifest walks parent directory segments upward from dir
// looking for a package.json, returning the first one found and its path.
// A missing manifest is tolerated silently (nil, "", nil).
func findNearestManifest(fs fsext.Fs, dir string) (*PackageManifest, string, error) {
	for {
		candidate := filepath.Join(dir, "package.json")
		if loader.FileExists(fs, candidate) {
			manifest, err := parseManifest(fs, candidate)
			if err != nil {
				return nil, "", err
			}
			return manifest, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// classifyPackageFormat refines the format of a file resolved from inside
// node_modules by consulting the nearest manifest above it. The nearest
// manifest always wins and the walk stops there, even when it carries no
// relevant fields:
//
//   - a "module" field marks the package as ESM-flavored and the format
//     assigned by the prior resolution step stands,
//   - otherwise an explicit "format" field overrides,
//   - no manifest or no signal leaves the format unchanged.
func classifyPackageFormat(fs fsext.Fs, resolvedPath string, format Format) (Format, error) {
	manifest, _, err := findNearestManifest(fs, filepath.Dir(resolvedPath))
	if err != nil {
		return format, err
	}
	if manifest == nil || manifest.Module != "" {
		return format, nil
	}
	switch Format(manifest.Format) {
	case FormatModule, FormatCommonJS:
		return Format(manifest.Format), nil
	}
	return format, nil
}
