// Package app boots the application runtime: it attaches plugins, registers
// the invocable commands and runs the blocking server loop the front-end talks to.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/hustly/internal/command"
	"github.com/janisto/hustly/internal/http/health"
	"github.com/janisto/hustly/internal/platform/config"
	applog "github.com/janisto/hustly/internal/platform/logging"
	appmiddleware "github.com/janisto/hustly/internal/platform/middleware"
	"github.com/janisto/hustly/internal/platform/respond"
)

// FatalMessage is the diagnostic the process entry point emits when Run fails.
const FatalMessage = "error while running application"

var (
	// ErrStartup is wrapped by every error that prevents the runtime from running.
	ErrStartup = errors.New("application startup failed")
	// ErrAlreadyStarted is returned when Run is called more than once.
	ErrAlreadyStarted = errors.New("application already started")
)

// Plugin extends the runtime with request middleware. Plugins are attached in
// registration order, before any command is bound.
type Plugin interface {
	Name() string
	Middleware() []func(http.Handler) http.Handler
}

// Builder configures and runs one application instance.
type Builder struct {
	cfg      config.Config
	version  string
	plugins  []Plugin
	handlers []func(*command.Registry)

	started atomic.Bool
	state   atomic.Int32
	ready   chan struct{}

	mu   sync.RWMutex
	addr string
}

// Option customises a Builder.
type Option func(*Builder)

// WithVersion sets the version reported in the OpenAPI document and health endpoint.
func WithVersion(v string) Option {
	return func(b *Builder) {
		b.version = v
	}
}

// New returns a Builder for cfg in StateNotStarted.
func New(cfg config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:     cfg,
		version: "dev",
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Plugin attaches p to the runtime.
func (b *Builder) Plugin(p Plugin) *Builder {
	b.plugins = append(b.plugins, p)
	return b
}

// InvokeHandler adds command registrations. Only commands registered here are
// reachable from the front-end.
func (b *Builder) InvokeHandler(fns ...func(*command.Registry)) *Builder {
	b.handlers = append(b.handlers, fns...)
	return b
}

// State reports the current lifecycle state.
func (b *Builder) State() State {
	return State(b.state.Load())
}

// Ready is closed once the listener is bound and the runtime is running.
func (b *Builder) Ready() <-chan struct{} {
	return b.ready
}

// Addr returns the bound listen address, or "" before the runtime is running.
func (b *Builder) Addr() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.addr
}

// Handler builds the fully wired HTTP handler without entering the server loop.
func (b *Builder) Handler() (http.Handler, error) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(b.cfg.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(b.cfg.AllowedOrigins...),
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
	)

	seen := make(map[string]struct{}, len(b.plugins))
	for _, p := range b.plugins {
		if p == nil {
			return nil, errors.New("nil plugin")
		}
		if _, dup := seen[p.Name()]; dup {
			return nil, fmt.Errorf("plugin %q attached twice", p.Name())
		}
		seen[p.Name()] = struct{}{}
		router.Use(p.Middleware()...)
	}
	router.Use(respond.Recoverer())

	router.Get("/health", health.NewHandler(b.version))

	humaCfg := huma.DefaultConfig(b.cfg.Name, b.version)
	humaCfg.DocsPath = b.cfg.DocsPath
	api := humachi.New(router, humaCfg)
	mirrorCBORContent(api.OpenAPI())

	reg := command.NewRegistry(api)
	for _, register := range b.handlers {
		register(reg)
	}
	return router, nil
}

// Run enters the blocking server loop and returns once ctx is cancelled and the
// server has drained. Any failure to start or sustain the loop is returned
// wrapped in ErrStartup; Run never terminates the process.
func (b *Builder) Run(ctx context.Context) error {
	if b.started.Swap(true) {
		return ErrAlreadyStarted
	}
	ctx = applog.WithLogger(ctx, applog.Logger().Named("app"))

	handler, err := b.Handler()
	if err != nil {
		return b.fail(ctx, fmt.Errorf("%w: %w", ErrStartup, err))
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", b.cfg.Addr())
	if err != nil {
		return b.fail(ctx, fmt.Errorf("%w: listen %s: %w", ErrStartup, b.cfg.Addr(), err))
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	b.mu.Lock()
	b.addr = ln.Addr().String()
	b.mu.Unlock()
	b.state.Store(int32(StateRunning))
	close(b.ready)
	applog.LogInfo(ctx, "application running",
		zap.String("addr", b.Addr()),
		zap.String("version", b.version),
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return b.fail(ctx, fmt.Errorf("%w: serve: %w", ErrStartup, err))
		}
	case <-ctx.Done():
		applog.LogInfo(ctx, "shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(ctx, "server shutdown error", err)
	}
	b.state.Store(int32(StateStopped))
	applog.LogInfo(ctx, "application stopped")
	return nil
}

func (b *Builder) fail(ctx context.Context, err error) error {
	b.state.Store(int32(StateFailed))
	applog.LogError(ctx, "application failed", err)
	return err
}

// mirrorCBORContent advertises application/cbor wherever an operation accepts or returns JSON.
func mirrorCBORContent(oapi *huma.OpenAPI) {
	oapi.OnAddOperation = append(oapi.OnAddOperation, func(_ *huma.OpenAPI, op *huma.Operation) {
		if op.RequestBody != nil && op.RequestBody.Content != nil {
			if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
				op.RequestBody.Content["application/cbor"] = jsonContent
			}
		}
		for _, resp := range op.Responses {
			if resp.Content == nil {
				continue
			}
			if jsonContent, ok := resp.Content["application/json"]; ok {
				resp.Content["application/cbor"] = jsonContent
			}
		}
	})
}
