// Package modules implements the module resolution and load-hook subsystem
// that feeds the JS engine: a layered resolver that decides, for every
// import/require specifier, which physical or synthetic source gets loaded
// and in what format, plus a pluggable chain of {resolve, load} hooks that
// can intercept, rewrite or delegate any of those decisions.
package modules

import (
	"net/url"
)

// Format is the module format tag attached to every resolution.
type Format string

// The two module formats the engine can evaluate.
const (
	FormatModule   Format = "module"
	FormatCommonJS Format = "commonjs"
)

// Resolution is the outcome of resolving (and possibly loading) a specifier.
//
// When Source is non-nil the result is authoritative: the module is synthetic
// (or already loaded) and the engine must not re-read the filesystem for URL.
// ShortCircuit terminates hook-chain processing for this request.
type Resolution struct {
	URL          *url.URL
	Format       Format
	ShortCircuit bool
	Source       []byte
}

// Synthetic reports whether the resolution carries inline source instead of
// pointing at a file on disk.
func (r *Resolution) Synthetic() bool {
	return r.Source != nil
}

// FileBacked returns a short-circuiting resolution pointing at a file on disk.
func FileBacked(u *url.URL, format Format) *Resolution {
	return &Resolution{URL: u, Format: format, ShortCircuit: true}
}

// SyntheticResolution returns a short-circuiting resolution whose source is
// the given literal text, with no backing file.
func SyntheticResolution(u *url.URL, source []byte, format Format) *Resolution {
	return &Resolution{URL: u, Format: format, ShortCircuit: true, Source: source}
}

// ResolveContext carries the importer's side of a resolution request.
// A nil ParentURL means this is an entry-point resolution and relative
// specifiers are resolved against the process working directory.
type ResolveContext struct {
	ParentURL *url.URL
}

// LoadContext carries the already-resolved format into the load chain.
type LoadContext struct {
	Format Format
}
