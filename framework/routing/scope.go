package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-resolver/framework/container"
)

// ScopePerRequest gives every request its own container scope. Handlers find
// it with RequestScope; it is ended once the handler returns, disposing the
// request's Scoped instances.
//
// The request id assigned by middleware.RequestID is echoed back under
// middleware.RequestIDHeader.
func ScopePerRequest(c *container.Container, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := c.NewScope()
			if err != nil {
				log.Error("request scope", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}

			id := RequestID(r)
			if id != "" {
				w.Header().Set(middleware.RequestIDHeader, id)
			}

			defer func() {
				if err := scope.End(); err != nil {
					log.Warn("ending request scope",
						zap.String("request_id", id),
						zap.String("scope", scope.ID()),
						zap.Error(err),
					)
				}
			}()

			next.ServeHTTP(w, r.WithContext(container.WithScope(r.Context(), scope)))
		})
	}
}

// RequestScope returns the scope ScopePerRequest attached to r.
func RequestScope(r *http.Request) (*container.Scope, bool) {
	return container.ScopeFromContext(r.Context())
}

// RequestID returns the id middleware.RequestID assigned to r, or "".
func RequestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
