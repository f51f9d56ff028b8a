package modules

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// SynthesizeJSONModule turns raw JSON file contents into CommonJS source
// whose module.exports is the parsed object. JSON files are deliberately not
// given a native module kind in the engine; synthesizing them as CommonJS
// keeps existing require/import semantics without engine-level changes.
//
// Malformed JSON is a hard error - silently resolving a broken .json file to
// something else would corrupt program semantics.
func SynthesizeJSONModule(name string, data []byte) ([]byte, error) {
	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("couldn't parse %q as JSON: %w", name, err)
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("couldn't serialize %q: %w", name, err)
	}
	source := make([]byte, 0, len(pretty)+24)
	source = append(source, "module.exports = "...)
	source = append(source, pretty...)
	source = append(source, ";\n"...)
	return source, nil
}

// SyntheticModule builds a resolution for a module with no backing file.
// The name becomes the module URL: scheme-prefixed names ("quickrt:timezone")
// are kept verbatim, anything else gets the runtime's virtual scheme. Hooks
// use this from their load implementations to inject inline source.
//
// Synthetic source is not pre-resolved - it goes through the same engine
// loading path as file-backed source, so it may itself import siblings by
// specifier and re-enter the resolve chain.
func SyntheticModule(name string, source string, format Format) *Resolution {
	u, err := url.Parse(name)
	if err != nil || u.Scheme == "" {
		u = &url.URL{Scheme: "quickrt", Opaque: name}
	}
	return SyntheticResolution(u, []byte(source), format)
}
