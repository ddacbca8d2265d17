package app

import (
	"github.com/janisto/hustly/internal/command/greet"
	"github.com/janisto/hustly/internal/platform/config"
	applog "github.com/janisto/hustly/internal/platform/logging"
)

// Bootstrap returns the application as shipped: the logging plugin with its
// default configuration and greet as the only invocable command.
func Bootstrap(cfg config.Config, version string) *Builder {
	return New(cfg, WithVersion(version)).
		Plugin(applog.NewPlugin()).
		InvokeHandler(greet.Register)
}
