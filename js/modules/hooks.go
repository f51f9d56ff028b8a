package modules

import (
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"

	"go.quickrt.io/quickrt/lib/fsext"
	"go.quickrt.io/quickrt/loader"
)

// ResolveNext continues a resolve chain from the following entry. A hook
// that does not recognize its input must call it with the original
// arguments to preserve chain semantics.
type ResolveNext func(specifier string, rctx *ResolveContext) (*Resolution, error)

// LoadNext continues a load chain from the following entry.
type LoadNext func(moduleURL *url.URL, lctx *LoadContext) (*Resolution, error)

// Hook is one registered {resolve, load} pair. Either function may be nil,
// in which case the chain skips straight past it for that operation. A hook
// that recognizes its input returns a Resolution directly; ShortCircuit
// marks that no further chain entry ran.
type Hook struct {
	Resolve func(specifier string, rctx *ResolveContext, next ResolveNext) (*Resolution, error)
	Load    func(moduleURL *url.URL, lctx *LoadContext, next LoadNext) (*Resolution, error)
}

// Registry holds the process-wide, append-ordered hook list and threads
// resolve/load requests through it. Registration order defines precedence:
// the most recently registered hook gets first refusal, and the chain ends
// at the built-in Resolver (for resolve) and the filesystem loader (for
// load). There is no unregistration; teardown is process-exit only.
//
// The hook list is the only mutable shared state in the subsystem. Appends
// are rare and lookups frequent, so reads snapshot the slice header under a
// read lock while appends copy-on-write under the write lock.
type Registry struct {
	mu     sync.RWMutex
	hooks  []Hook
	fs     fsext.Fs
	logger logrus.FieldLogger

	resolver *Resolver
}

// NewRegistry returns a Registry whose chains terminate at the given
// resolver and at a loader reading file-backed sources from fs.
func NewRegistry(fs fsext.Fs, logger logrus.FieldLogger, resolver *Resolver) *Registry {
	return &Registry{fs: fs, logger: logger, resolver: resolver}
}

// RegisterHooks appends one hook entry to the chain, atomically as a unit.
func (reg *Registry) RegisterHooks(h Hook) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	hooks := make([]Hook, 0, len(reg.hooks)+1)
	hooks = append(hooks, reg.hooks...)
	reg.hooks = append(hooks, h)
}

func (reg *Registry) snapshot() []Hook {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.hooks
}

// Resolve threads a resolution request through the registered hooks, newest
// first, falling through to the built-in resolver when no hook claims it.
func (reg *Registry) Resolve(specifier string, rctx *ResolveContext) (*Resolution, error) {
	hooks := reg.snapshot()
	return reg.runResolve(hooks, len(hooks)-1, specifier, rctx)
}

func (reg *Registry) runResolve(
	hooks []Hook, index int, specifier string, rctx *ResolveContext,
) (*Resolution, error) {
	for ; index >= 0; index-- {
		if hooks[index].Resolve != nil {
			break
		}
	}
	if index < 0 {
		return reg.resolver.Resolve(specifier, rctx)
	}

	next := func(spec string, c *ResolveContext) (*Resolution, error) {
		return reg.runResolve(hooks, index-1, spec, c)
	}
	return hooks[index].Resolve(specifier, rctx, next)
}

// Load threads a load request through the registered hooks, newest first.
// The chain tail reads the file behind the URL off the filesystem; a hook
// returning synthetic source short-circuits that read entirely.
func (reg *Registry) Load(moduleURL *url.URL, lctx *LoadContext) (*Resolution, error) {
	hooks := reg.snapshot()
	return reg.runLoad(hooks, len(hooks)-1, moduleURL, lctx)
}

func (reg *Registry) runLoad(
	hooks []Hook, index int, moduleURL *url.URL, lctx *LoadContext,
) (*Resolution, error) {
	for ; index >= 0; index-- {
		if hooks[index].Load != nil {
			break
		}
	}
	if index < 0 {
		return reg.defaultLoad(moduleURL, lctx)
	}

	next := func(u *url.URL, c *LoadContext) (*Resolution, error) {
		return reg.runLoad(hooks, index-1, u, c)
	}
	return hooks[index].Load(moduleURL, lctx, next)
}

func (reg *Registry) defaultLoad(moduleURL *url.URL, lctx *LoadContext) (*Resolution, error) {
	src, err := loader.Load(reg.logger, reg.fs, moduleURL)
	if err != nil {
		return nil, err
	}
	format := FormatModule
	if lctx != nil && lctx.Format != "" {
		format = lctx.Format
	}
	return &Resolution{URL: moduleURL, Format: format, Source: src.Data}, nil
}
