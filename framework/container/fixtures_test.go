package container_test

import (
	"errors"
	"iter"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/container"
)

// ── stub services ─────────────────────────────────────────────────────────────

const (
	dummyKey     container.ServiceKey = "IDummyService"
	singletonKey container.ServiceKey = "ISingletonService"
	scopedKey    container.ServiceKey = "IScopedService"
	transientKey container.ServiceKey = "ITransientService"
	concreteKey  container.ServiceKey = "ConcreteService"
)

// dummyService is not zero-sized so distinct instances have distinct addresses.
type dummyService struct{ name string }

// identified carries a fresh id per construction so tests can tell
// instances apart by value as well as by pointer.
type identified struct {
	ID    uuid.UUID
	Dummy *dummyService
}

func dummyConcrete() *container.Concrete {
	return &container.Concrete{
		Name: "DummyService",
		New:  func([]any) (any, error) { return &dummyService{name: "dummy"}, nil },
	}
}

// identifiedConcrete needs the dummy service, like every fixture service.
func identifiedConcrete(name string) *container.Concrete {
	return &container.Concrete{
		Name:      name,
		DependsOn: []container.ServiceKey{dummyKey},
		New: func(deps []any) (any, error) {
			dummy, ok := deps[0].(*dummyService)
			if !ok {
				return nil, errors.New("dependency is not a *dummyService")
			}
			return &identified{ID: uuid.New(), Dummy: dummy}, nil
		},
	}
}

func newIdentified(container.Resolver) (any, error) {
	return &identified{ID: uuid.New()}, nil
}

// disposable records Dispose calls into a shared log.
type disposable struct {
	name string
	log  *[]string
	err  error
}

func (d *disposable) Dispose() error {
	*d.log = append(*d.log, d.name)
	return d.err
}

// ── helpers ───────────────────────────────────────────────────────────────────

func mustIdentified(t *testing.T, r container.Resolver, key container.ServiceKey) *identified {
	t.Helper()
	v, ok, err := container.Resolve[*identified](r, key)
	require.NoError(t, err)
	require.True(t, ok, "[%s] should be registered", key)
	return v
}

func collect(t *testing.T, seq iter.Seq2[container.RegistrationInfo, error]) []container.RegistrationInfo {
	t.Helper()
	var out []container.RegistrationInfo
	for info, err := range seq {
		require.NoError(t, err)
		out = append(out, info)
	}
	return out
}
