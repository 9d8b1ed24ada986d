package container_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/container"
)

const goroutines = 64

func TestConcurrent_SingletonConstructedOnce(t *testing.T) {
	var calls atomic.Int32
	c := container.New()
	require.NoError(t, c.Singleton("slow", func(container.Resolver) (any, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return &dummyService{name: "slow"}, nil
	}))
	c.Build()

	results := make([]any, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.NewScope()
			if err != nil {
				return
			}
			results[i], _ = s.Resolve("slow")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 1; i < goroutines; i++ {
		require.NotNil(t, results[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestConcurrent_ScopedConstructedOncePerScope(t *testing.T) {
	var calls atomic.Int32
	c := container.New()
	require.NoError(t, c.Scoped("per-scope", func(container.Resolver) (any, error) {
		calls.Add(1)
		return &dummyService{name: "scoped"}, nil
	}))
	c.Build()

	s, err := c.NewScope()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Resolve("per-scope")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestConcurrent_RegisterWhileResolving(t *testing.T) {
	c := container.New().Build()

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Transient("svc", func(container.Resolver) (any, error) { return i, nil })
		}()
		go func() {
			defer wg.Done()
			v, err := c.Resolve("svc")
			assert.NoError(t, err)
			if v != nil {
				assert.IsType(t, 0, v)
			}
		}()
	}
	wg.Wait()

	all, err := c.ResolveAll("svc")
	require.NoError(t, err)
	assert.Len(t, all, goroutines)
}
