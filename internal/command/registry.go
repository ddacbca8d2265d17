// Package command exposes application commands to the front-end.
//
// Each command is a huma operation bound to POST /invoke/{name}. The Registry
// is the single place that decides what the front-end may invoke.
package command

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/hustly/internal/platform/logging"
)

// PathPrefix is the route prefix under which every command is mounted.
const PathPrefix = "/invoke/"

// Tag groups command operations in the OpenAPI document.
const Tag = "commands"

var nameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Spec describes a command as seen by the front-end.
type Spec struct {
	Name        string
	Summary     string
	Description string
}

// Registry binds commands to a huma API and tracks which names are invocable.
type Registry struct {
	api huma.API

	mu    sync.RWMutex
	names map[string]struct{}
}

// NewRegistry returns an empty registry bound to api.
func NewRegistry(api huma.API) *Registry {
	return &Registry{
		api:   api,
		names: make(map[string]struct{}),
	}
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for n := range r.names {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

func (r *Registry) claim(name string) {
	if !nameRe.MatchString(name) {
		panic(fmt.Sprintf("command: invalid name %q", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.names[name]; dup {
		panic(fmt.Sprintf("command: %q registered twice", name))
	}
	r.names[name] = struct{}{}
}

// Register binds handler as the command described by spec.
// Invalid or duplicate names are programming errors and panic.
func Register[I, O any](r *Registry, spec Spec, handler func(context.Context, *I) (*O, error)) {
	r.claim(spec.Name)

	name := spec.Name
	wrapped := func(ctx context.Context, input *I) (*O, error) {
		start := time.Now()
		out, err := handler(ctx, input)
		result := "success"
		if err != nil {
			result = "failure"
		}
		applog.LogCommand(ctx, name, result, time.Since(start))
		return out, err
	}

	huma.Register(r.api, huma.Operation{
		OperationID: "invoke-" + name,
		Method:      http.MethodPost,
		Path:        PathPrefix + name,
		Summary:     spec.Summary,
		Description: spec.Description,
		Tags:        []string{Tag},
	}, wrapped)
}
