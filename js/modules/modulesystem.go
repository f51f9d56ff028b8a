package modules

import (
	"fmt"
	"net/url"

	"github.com/grafana/sobek"
)

// ModuleSystem glues the hook chains to a JS runtime: it resolves a
// specifier, loads its source (synthetic or file-backed) and evaluates
// CommonJS modules, caching instances by resolved URL so that repeated
// requires of the same module observe a single instance.
//
// ESM evaluation stays with the engine's own loader; the module system only
// hands it the Resolution. It is meant to be driven from the engine's
// single event-loop goroutine and is not safe for concurrent use.
type ModuleSystem struct {
	rt       *sobek.Runtime
	registry *Registry
	cache    map[string]sobek.Value
}

// NewModuleSystem returns a ModuleSystem evaluating on rt and resolving
// through registry.
func NewModuleSystem(rt *sobek.Runtime, registry *Registry) *ModuleSystem {
	return &ModuleSystem{
		rt:       rt,
		registry: registry,
		cache:    make(map[string]sobek.Value),
	}
}

// Require resolves and evaluates a CommonJS module and returns its exports.
// parent is the importing module's URL, or nil for entry points. Nested
// require calls from inside the module re-enter the full resolve chain with
// the resolved URL as their parent, so synthetic modules can require
// siblings and built-ins by specifier.
func (ms *ModuleSystem) Require(specifier string, parent *url.URL) (sobek.Value, error) {
	res, err := ms.registry.Resolve(specifier, &ResolveContext{ParentURL: parent})
	if err != nil {
		return nil, err
	}

	key := res.URL.String()
	if cached, ok := ms.cache[key]; ok {
		return cached, nil
	}

	source, format := res.Source, res.Format
	if source == nil {
		loaded, err := ms.registry.Load(res.URL, &LoadContext{Format: res.Format})
		if err != nil {
			return nil, err
		}
		source = loaded.Source
		// load hooks may reclassify the format of what they return
		if loaded.Format != "" {
			format = loaded.Format
		}
	}

	if format != FormatCommonJS {
		return nil, fmt.Errorf("%q resolved to an ECMAScript module; "+
			"ESM evaluation is handled by the engine loader", specifier)
	}

	moduleURL := res.URL
	exports, err := EvaluateCJS(ms.rt, key, source, func(nested string) (sobek.Value, error) {
		return ms.Require(nested, moduleURL)
	})
	if err != nil {
		return nil, err
	}
	ms.cache[key] = exports
	return exports, nil
}
