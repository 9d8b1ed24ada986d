package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/km-arc/go-resolver/framework/container"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// ErrNoScope is returned by Request.Resolve outside ScopePerRequest.
var ErrNoScope = errors.New("http: request has no container scope")

// Request wraps *http.Request with input and container helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes a JSON request body into v.
func (req *Request) Bind(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	return json.Unmarshal(body, v)
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// IsJSON returns true when the request expects a JSON response.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.raw.Header.Get("Accept"), "application/json") ||
		strings.Contains(req.raw.Header.Get("Content-Type"), "application/json")
}

// ── Container ────────────────────────────────────────────────────────────────

// Scope returns the container scope attached to the request.
func (req *Request) Scope() (*container.Scope, bool) {
	return container.ScopeFromContext(req.raw.Context())
}

// Resolve resolves key from the request's scope.
//
//	uow, err := gohttp.NewRequest(r).Resolve("uow")
func (req *Request) Resolve(key container.ServiceKey) (any, error) {
	scope, ok := req.Scope()
	if !ok {
		return nil, ErrNoScope
	}
	return scope.Resolve(key)
}
