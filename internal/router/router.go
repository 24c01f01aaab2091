// Package router routes a node item to the handler registered for its
// resource and operation.
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pricofy/langbly-node/internal/domain"
	"github.com/pricofy/langbly-node/internal/host"
)

// Handler executes one operation for the item at itemIndex.
type Handler func(
	ctx context.Context, exec host.ExecuteFunctions, itemIndex int,
) (domain.JSON, error)

// ErrUnsupportedOperation is returned for resource/operation pairs that have
// no registered handler.
var ErrUnsupportedOperation = errors.New("unsupported operation")

type route struct {
	resource  string
	operation string
}

// Router maps resource/operation pairs to handlers.
type Router struct {
	routes map[route]Handler
}

// New creates an empty Router.
func New() *Router {
	return &Router{routes: map[route]Handler{}}
}

// Handle registers the handler for a resource/operation pair, replacing any
// previous registration.
func (r *Router) Handle(resource, operation string, h Handler) *Router {
	r.routes[route{resource, operation}] = h
	return r
}

// IsSupported checks if a resource/operation pair has a handler.
func (r *Router) IsSupported(resource, operation string) bool {
	_, ok := r.routes[route{resource, operation}]
	return ok
}

// Operations returns the operations registered for a resource, sorted.
func (r *Router) Operations(resource string) []string {
	var ops []string
	for rt := range r.routes {
		if rt.resource == resource {
			ops = append(ops, rt.operation)
		}
	}
	sort.Strings(ops)
	return ops
}

// Route executes the handler for a resource/operation pair.
func (r *Router) Route(
	ctx context.Context, exec host.ExecuteFunctions,
	resource, operation string, itemIndex int,
) (domain.JSON, error) {
	h, ok := r.routes[route{resource, operation}]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s",
			ErrUnsupportedOperation, resource, operation)
	}
	return h(ctx, exec, itemIndex)
}
