package modules

import (
	"errors"
	"fmt"

	"github.com/grafana/sobek"
)

// RequireFunc is the require implementation handed to evaluated CommonJS
// code. It re-enters the resolve/load chains for nested specifiers.
type RequireFunc func(specifier string) (sobek.Value, error)

// compileCJS wraps CommonJS source in the usual function wrapper so that
// module, exports and require are in scope, and compiles it.
func compileCJS(name string, source []byte) (*sobek.Program, error) {
	code := "(function(module, exports, require){\n" + string(source) + "\n})"
	prg, err := sobek.Compile(name, code, true)
	if err != nil {
		return nil, fmt.Errorf("couldn't compile %q: %w", name, err)
	}
	return prg, nil
}

// EvaluateCJS compiles and runs CommonJS source on the given runtime and
// returns the resulting module.exports value. The source may be file-backed
// or synthetic; by the time it gets here the distinction is gone - synthetic
// modules take the exact same evaluation path.
func EvaluateCJS(rt *sobek.Runtime, name string, source []byte, require RequireFunc) (sobek.Value, error) {
	prg, err := compileCJS(name, source)
	if err != nil {
		return nil, err
	}
	v, err := rt.RunProgram(prg)
	if err != nil {
		return nil, err
	}
	call, ok := sobek.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("CommonJS module %q did not compile to a function wrapper", name)
	}

	module := rt.NewObject()
	exports := rt.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	requireVal := rt.ToValue(func(specifier string) (sobek.Value, error) {
		return require(specifier)
	})

	if _, err := call(exports, module, exports, requireVal); err != nil {
		return nil, err
	}

	exportsV := module.Get("exports")
	if sobek.IsNull(exportsV) {
		return nil, errors.New("CommonJS's exports must not be null")
	}
	return exportsV, nil
}
