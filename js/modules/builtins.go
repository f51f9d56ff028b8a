package modules

import "strings"

// DefaultBuiltins returns the names of the built-in/native modules the
// runtime ships. The list is enumerated once at process start and treated as
// a static set for the process lifetime; built-ins are classified before any
// filesystem lookup so a file named fs.js can never shadow "fs".
func DefaultBuiltins() []string {
	return []string{
		"assert",
		"async_hooks",
		"buffer",
		"child_process",
		"console",
		"crypto",
		"dns",
		"events",
		"fs",
		"fs/promises",
		"http",
		"https",
		"module",
		"net",
		"os",
		"path",
		"perf_hooks",
		"process",
		"querystring",
		"stream",
		"string_decoder",
		"timers",
		"tty",
		"url",
		"util",
		"zlib",
		"quickrt:hex",
		"quickrt:timezone",
		"quickrt:uuid",
		"quickrt:xml",
	}
}

// normalizeBuiltinName strips the "node:" alias prefix and any trailing
// slash, so "node:fs" and "fs" name the same built-in.
func normalizeBuiltinName(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, "node:"), "/")
}
