// Package mobile is the entry point for mobile builds. It is bound with
// gomobile, so its exported API is limited to types gomobile can bridge.
//
//	gomobile bind -target=android,ios ./mobile
package mobile

import (
	"context"
	"errors"
	"sync"

	"github.com/janisto/hustly/internal/app"
	"github.com/janisto/hustly/internal/buildinfo"
	"github.com/janisto/hustly/internal/platform/config"
	applog "github.com/janisto/hustly/internal/platform/logging"
)

// ErrNotRunning is returned by Stop when no runtime is active.
var ErrNotRunning = errors.New("mobile: runtime not running")

var (
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan error
	running *app.Builder
)

// Start boots the application in the background on the given port and
// returns once the runtime is running or has failed to start.
// An empty port keeps the configured default.
func Start(port string) error {
	mu.Lock()
	defer mu.Unlock()
	if running != nil {
		return app.ErrAlreadyStarted
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	b := app.Bootstrap(cfg, buildinfo.Version)
	ctx, stop := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	select {
	case <-b.Ready():
		running, cancel, done = b, stop, errc
		return nil
	case err := <-errc:
		stop()
		applog.LogError(ctx, app.FatalMessage, err)
		return err
	}
}

// Addr returns the address the running runtime is bound to, or "".
func Addr() string {
	mu.Lock()
	defer mu.Unlock()
	if running == nil {
		return ""
	}
	return running.Addr()
}

// Stop shuts the runtime down and waits for the server loop to drain.
func Stop() error {
	mu.Lock()
	defer mu.Unlock()
	if running == nil {
		return ErrNotRunning
	}
	cancel()
	err := <-done
	running, cancel, done = nil, nil, nil
	return err
}
