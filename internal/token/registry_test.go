package token

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryFactory func(t *testing.T, clock *fakeClock) Registry

func registries() map[string]registryFactory {
	return map[string]registryFactory{
		"memory": func(t *testing.T, clock *fakeClock) Registry {
			r := NewMemoryRegistry()
			r.now = clock.Now
			return r
		},
		"bolt": func(t *testing.T, clock *fakeClock) Registry {
			r, err := OpenBoltRegistry(filepath.Join(t.TempDir(), "registry.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = r.Close() })
			r.now = clock.Now
			return r
		},
	}
}

func TestRegistryLifecycle(t *testing.T) {
	for name, factory := range registries() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			r := factory(t, clock)
			exp := clock.Now().Add(time.Hour)

			ok, err := r.IsValid(ctx, "rt1")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, r.Register(ctx, "rt1", exp))
			ok, _ = r.IsValid(ctx, "rt1")
			assert.True(t, ok)

			require.NoError(t, r.Rotate(ctx, "rt1", "rt2", exp))
			ok, _ = r.IsValid(ctx, "rt1")
			assert.False(t, ok)
			ok, _ = r.IsValid(ctx, "rt2")
			assert.True(t, ok)

			assert.ErrorIs(t, r.Rotate(ctx, "rt1", "rt3", exp), ErrNotRegistered)
			ok, _ = r.IsValid(ctx, "rt3")
			assert.False(t, ok)

			require.NoError(t, r.Revoke(ctx, "rt2"))
			require.NoError(t, r.Revoke(ctx, "rt2"))
			require.NoError(t, r.Revoke(ctx, "never-registered"))
			ok, _ = r.IsValid(ctx, "rt2")
			assert.False(t, ok)
		})
	}
}

func TestRegistryExpiredEntryIsNotRotatable(t *testing.T) {
	for name, factory := range registries() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			r := factory(t, clock)

			require.NoError(t, r.Register(ctx, "rt", clock.Now().Add(time.Minute)))
			clock.Advance(2 * time.Minute)

			ok, err := r.IsValid(ctx, "rt")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.ErrorIs(t, r.Rotate(ctx, "rt", "rt-next", clock.Now().Add(time.Hour)), ErrNotRegistered)
		})
	}
}

func TestRegistryConcurrentRotateSucceedsOnce(t *testing.T) {
	for name, factory := range registries() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			r := factory(t, clock)
			exp := clock.Now().Add(time.Hour)
			require.NoError(t, r.Register(ctx, "shared", exp))

			const workers = 16
			var (
				wg        sync.WaitGroup
				successes atomic.Int32
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if err := r.Rotate(ctx, "shared", "next-"+string(rune('a'+i)), exp); err == nil {
						successes.Add(1)
					} else {
						assert.ErrorIs(t, err, ErrNotRegistered)
					}
				}(i)
			}
			wg.Wait()

			assert.Equal(t, int32(1), successes.Load())
		})
	}
}

func TestBoltRegistrySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")

	r, err := OpenBoltRegistry(path)
	require.NoError(t, err)
	require.NoError(t, r.Register(ctx, "persistent", time.Now().Add(time.Hour)))
	require.NoError(t, r.Close())

	r, err = OpenBoltRegistry(path)
	require.NoError(t, err)
	defer r.Close()

	ok, err := r.IsValid(ctx, "persistent")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryRegistryStoresHashes(t *testing.T) {
	r := NewMemoryRegistry()
	require.NoError(t, r.Register(context.Background(), "raw-token", time.Now().Add(time.Hour)))

	r.mu.Lock()
	_, raw := r.tokens["raw-token"]
	_, hashed := r.tokens[Hash("raw-token")]
	r.mu.Unlock()

	assert.False(t, raw)
	assert.True(t, hashed)
	assert.Equal(t, 1, r.Len())
}
