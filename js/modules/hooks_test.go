package modules

import (
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.quickrt.io/quickrt/lib/fsext"
	"go.quickrt.io/quickrt/loader"
)

func newTestRegistry(fs fsext.Fs, delegate DelegateResolveFunc) *Registry {
	return NewRegistry(fs, testLogger(), newTestResolver(fs, delegate))
}

func claimingHook(name, source string) Hook {
	return Hook{
		Resolve: func(specifier string, rctx *ResolveContext, next ResolveNext) (*Resolution, error) {
			if specifier == name {
				return SyntheticModule(name, source, FormatCommonJS), nil
			}
			return next(specifier, rctx)
		},
	}
}

func TestHookPrecedence(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(fsext.NewMemMapFs(), nil)
	reg.RegisterHooks(claimingHook("x", "module.exports = 'A'"))
	reg.RegisterHooks(claimingHook("x", "module.exports = 'B'"))

	res, err := reg.Resolve("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "module.exports = 'B'", string(res.Source),
		"the most recently registered hook gets first refusal")
	assert.True(t, res.ShortCircuit)
}

func TestHookDelegationReachesResolver(t *testing.T) {
	t.Parallel()
	fs := fsext.NewMemMapFs()
	require.NoError(t, fsext.WriteFile(fs, "/home/app/real.js", []byte(""), 0o644))
	reg := newTestRegistry(fs, nil)
	reg.RegisterHooks(claimingHook("x", "module.exports = 'A'"))
	reg.RegisterHooks(claimingHook("y", "module.exports = 'B'"))

	// a specifier no hook claims falls through the whole chain
	res, err := reg.Resolve("./real.js", nil)
	require.NoError(t, err)
	assert.Equal(t, "file:///home/app/real.js", res.URL.String())
}

func TestHookNilFunctionsAreSkipped(t *testing.T) {
	t.Parallel()
	fs := fsext.NewMemMapFs()
	require.NoError(t, fsext.WriteFile(fs, "/home/app/real.js", []byte("hello"), 0o644))
	reg := newTestRegistry(fs, nil)
	reg.RegisterHooks(Hook{}) // registered as a unit, both halves optional
	reg.RegisterHooks(Hook{
		Load: func(u *url.URL, lctx *LoadContext, next LoadNext) (*Resolution, error) {
			return next(u, lctx)
		},
	})

	res, err := reg.Resolve("./real.js", nil)
	require.NoError(t, err)

	loaded, err := reg.Load(res.URL, &LoadContext{Format: res.Format})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(loaded.Source))
}

func TestHookLoadShortCircuitsFilesystem(t *testing.T) {
	t.Parallel()
	// nothing on the filesystem at all
	reg := newTestRegistry(fsext.NewMemMapFs(), nil)
	reg.RegisterHooks(Hook{
		Load: func(u *url.URL, lctx *LoadContext, next LoadNext) (*Resolution, error) {
			if u.Scheme == "quickrt" {
				return SyntheticResolution(u, []byte("module.exports = 1"), FormatCommonJS), nil
			}
			return next(u, lctx)
		},
	})

	u := &url.URL{Scheme: "quickrt", Opaque: "virtual"}
	res, err := reg.Load(u, nil)
	require.NoError(t, err)
	assert.Equal(t, "module.exports = 1", string(res.Source))

	// the unclaimed branch hits the filesystem tail and fails
	_, err = reg.Load(loader.ToFileURL("/missing.js"), nil)
	require.Error(t, err)
}

func TestHookRewritesSpecifierForNext(t *testing.T) {
	t.Parallel()
	fs := fsext.NewMemMapFs()
	require.NoError(t, fsext.WriteFile(fs, "/home/app/vendored/lodash.js", []byte(""), 0o644))
	reg := newTestRegistry(fs, nil)
	reg.RegisterHooks(Hook{
		Resolve: func(specifier string, rctx *ResolveContext, next ResolveNext) (*Resolution, error) {
			if specifier == "lodash" {
				return next("./vendored/lodash.js", rctx)
			}
			return next(specifier, rctx)
		},
	})

	res, err := reg.Resolve("lodash", nil)
	require.NoError(t, err)
	assert.Equal(t, "file:///home/app/vendored/lodash.js", res.URL.String())
}

func TestRegistryConcurrentRegistrationAndResolution(t *testing.T) {
	t.Parallel()
	fs := fsext.NewMemMapFs()
	require.NoError(t, fsext.WriteFile(fs, "/home/app/real.js", []byte(""), 0o644))
	reg := newTestRegistry(fs, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.RegisterHooks(claimingHook(fmt.Sprintf("mod-%d", i), "module.exports = 0"))
		}()
		go func() {
			defer wg.Done()
			_, err := reg.Resolve("./real.js", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// all appends landed
	for i := 0; i < 16; i++ {
		res, err := reg.Resolve(fmt.Sprintf("mod-%d", i), nil)
		require.NoError(t, err)
		assert.True(t, res.Synthetic())
	}
}
