package logging

import "net/http"

// PluginName identifies the logging plugin.
const PluginName = "log"

// Plugin attaches request-scoped logging to the application runtime.
type Plugin struct{}

// NewPlugin returns the logging plugin with its default configuration:
// a request-scoped logger plus one access log line per request.
func NewPlugin() *Plugin {
	return &Plugin{}
}

// Name implements the application plugin contract.
func (p *Plugin) Name() string {
	return PluginName
}

// Middleware returns the handlers the plugin installs, in order.
func (p *Plugin) Middleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		RequestLogger(),
		AccessLogger(),
	}
}
