package modules

import (
	"path/filepath"

	"go.quickrt.io/quickrt/loader"
)

// tryResolvePath implements the extension/directory resolution strategy for
// a candidate path with no confirmed extension. In strict order, first
// success wins:
//
//  1. the exact file (a .json file is synthesized into a CommonJS module),
//  2. the .js-suffixed sibling, unless the candidate already ends in .js,
//  3. index.js inside a directory-shaped candidate.
//
// A (nil, nil) return means no strategy applied and the caller moves on.
// Every filesystem miss is soft; only a JSON parse failure propagates.
func (r *Resolver) tryResolvePath(candidate string, defaultFormat Format) (*Resolution, error) {
	if loader.FileExists(r.fs, candidate) {
		if filepath.Ext(candidate) == ".json" {
			data, err := r.readFile(candidate)
			if err != nil {
				return nil, err
			}
			source, err := SynthesizeJSONModule(candidate, data)
			if err != nil {
				return nil, err
			}
			return SyntheticResolution(loader.ToFileURL(candidate), source, FormatCommonJS), nil
		}
		return FileBacked(loader.ToFileURL(candidate), defaultFormat), nil
	}

	if filepath.Ext(candidate) != ".js" {
		withExt := candidate + ".js"
		if loader.FileExists(r.fs, withExt) {
			return FileBacked(loader.ToFileURL(withExt), defaultFormat), nil
		}
	}

	index := filepath.Join(candidate, "index.js")
	if loader.FileExists(r.fs, index) {
		return FileBacked(loader.ToFileURL(index), defaultFormat), nil
	}

	return nil, nil
}
