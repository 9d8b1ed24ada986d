package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/container"
	gohttp "github.com/km-arc/go-resolver/framework/http"
	"github.com/km-arc/go-resolver/framework/providers"
	"github.com/km-arc/go-resolver/framework/routing"
)

// ── Demo services ─────────────────────────────────────────────────────────────

// Counter is shared by the whole application.
type Counter struct{ hits atomic.Int64 }

// UnitOfWork lives for one request.
type UnitOfWork struct {
	ID      string   `json:"id"`
	Counter *Counter `json:"-"`
	log     *zap.Logger
}

func (u *UnitOfWork) Dispose() error {
	u.log.Debug("unit of work closed", zap.String("id", u.ID))
	return nil
}

// AppServiceProvider binds the demo services and routes.
type AppServiceProvider struct{ container.BaseProvider }

func (p *AppServiceProvider) Register(c *container.Container) error {
	if err := container.Provide(c, container.Singleton, func(container.Resolver) (*Counter, error) {
		return &Counter{}, nil
	}); err != nil {
		return err
	}
	if err := c.Transient("id", func(container.Resolver) (any, error) {
		return uuid.NewString(), nil
	}); err != nil {
		return err
	}
	return c.RegisterConcrete(container.Scoped, container.KeyOf[UnitOfWork](), &container.Concrete{
		Name:      "UnitOfWork",
		DependsOn: []container.ServiceKey{"id", container.KeyOf[Counter](), providers.LoggerKey},
		New: func(deps []any) (any, error) {
			return &UnitOfWork{
				ID:      deps[0].(string),
				Counter: deps[1].(*Counter),
				log:     deps[2].(*zap.Logger),
			}, nil
		},
	})
}

func (p *AppServiceProvider) Boot(c *container.Container) error {
	router := container.MustResolve[*routing.Router](c, providers.RouterKey)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"message": "go-resolver is running"})
	})

	router.Prefix("/api", func(api *routing.Router) {
		// GET /api/uow: the same unit of work twice within one request
		api.Get("/uow", func(w http.ResponseWriter, r *http.Request) {
			req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
			scope, ok := req.Scope()
			if !ok {
				res.ResolutionError(gohttp.ErrNoScope)
				return
			}
			first, _, err := container.ResolveOf[*UnitOfWork](scope)
			if err != nil {
				res.ResolutionError(err)
				return
			}
			second, _, err := container.ResolveOf[*UnitOfWork](scope)
			if err != nil {
				res.ResolutionError(err)
				return
			}
			res.Success(map[string]any{
				"unit_of_work": first.ID,
				"same":         first == second,
				"hits":         first.Counter.hits.Add(1),
				"request_id":   routing.RequestID(r),
			})
		})

		// GET /api/resolve/{key}: resolve any registered key in the request scope
		api.Get("/resolve/{key}", func(w http.ResponseWriter, r *http.Request) {
			req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
			key := container.ServiceKey(req.RouteParam("key"))
			v, err := req.Resolve(key)
			if err != nil {
				res.ResolutionError(err)
				return
			}
			if v == nil {
				res.NotFound("no registration for " + key.String())
				return
			}
			res.Success(map[string]any{"key": key, "type": fmt.Sprintf("%T", v)})
		})
	})
	return nil
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		panic(err)
	}
	log := application.Logger()

	if err := application.Register(&AppServiceProvider{}); err != nil {
		log.Fatal("register providers", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
