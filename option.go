package postip

import (
	"log/slog"
	"net/http"

	"github.com/viant/afs"
	"github.com/viant/postip/auth/client"
	"github.com/viant/postip/oracle"
	"github.com/viant/postip/paths"
	"github.com/viant/postip/remote"
	scyflow "github.com/viant/scy/auth/flow"
)

// Option customizes agent collaborators.
type Option func(a *Agent)

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithSleeper replaces the wait between cycles and oracle attempts.
func WithSleeper(sleeper oracle.Sleeper) Option {
	return func(a *Agent) {
		a.sleep = sleeper
	}
}

// WithStore replaces the Google Drive store.
func WithStore(store remote.Store) Option {
	return func(a *Agent) {
		a.store = store
	}
}

// WithEnv sets the environment used to resolve file locations.
func WithEnv(env paths.Env) Option {
	return func(a *Agent) {
		a.env = env
	}
}

// WithAuthFlow replaces the interactive authorization flow.
func WithAuthFlow(authFlow scyflow.AuthFlow) Option {
	return func(a *Agent) {
		a.authFlow = authFlow
	}
}

// WithHTTPClient sets the client used to query the address service.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(a *Agent) {
		a.httpClient = httpClient
	}
}

// WithRunner sets how the credentials command is executed.
func WithRunner(runner client.Runner) Option {
	return func(a *Agent) {
		a.runner = runner
	}
}

// WithFs sets the file system service.
func WithFs(fs afs.Service) Option {
	return func(a *Agent) {
		a.fs = fs
	}
}
