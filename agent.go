package postip

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/viant/afs"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner/local"
	"github.com/viant/postip/auth"
	"github.com/viant/postip/auth/client"
	"github.com/viant/postip/auth/flow"
	"github.com/viant/postip/auth/store"
	"github.com/viant/postip/cache"
	"github.com/viant/postip/internal/fault"
	"github.com/viant/postip/oracle"
	"github.com/viant/postip/paths"
	"github.com/viant/postip/reconcile"
	"github.com/viant/postip/remote"
	"github.com/viant/postip/remote/drive"
	"github.com/viant/postip/scope"
	scyflow "github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

// Agent keeps the published address in sync with the discovered one.
type Agent struct {
	options    *Options
	paths      *paths.Paths
	fs         afs.Service
	env        paths.Env
	authFlow   scyflow.AuthFlow
	httpClient *http.Client
	runner     client.Runner
	store      remote.Store
	sleep      oracle.Sleeper
	logger     *slog.Logger

	manager    *auth.Manager
	oracle     *oracle.Client
	reconciler *reconcile.Reconciler
}

// Run authorizes, then checks and publishes the address every poll interval
// until ctx is done or a fatal error occurs. A cancelled ctx is not an error.
func (a *Agent) Run(ctx context.Context) error {
	authenticate := a.manager.Obtain
	for {
		delay := a.options.PollInterval
		var err error
		if authenticate != nil {
			if _, err = authenticate(ctx); err == nil {
				authenticate = nil
			}
		}
		if err == nil {
			_, err = a.Sync(ctx)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if fault.IsFatal(err) {
				return err
			}
			if fault.IsAuth(err) {
				a.logger.Warn("authorization rejected, re-authorizing on next attempt")
				authenticate = a.manager.Authorize
			}
			delay = a.options.RecoveryInterval
			a.logger.Error("address sync failed", "error", err, "retryIn", delay)
		}
		if err = a.sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

// Sync discovers the address and publishes it when changed.
func (a *Agent) Sync(ctx context.Context) (bool, error) {
	address, err := a.oracle.Discover(ctx)
	if err != nil {
		return false, err
	}
	updated, err := a.reconciler.Reconcile(ctx, address)
	if err != nil {
		return updated, err
	}
	if updated {
		a.logger.Info("published address", "address", address)
	}
	return updated, nil
}

// Paths returns the resolved file locations.
func (a *Agent) Paths() *paths.Paths {
	return a.paths
}

func (a *Agent) clientConfig(loader *client.Loader) auth.ClientConfig {
	return func(ctx context.Context, scopes []string) (*oauth2.Config, error) {
		switch {
		case a.options.CredentialsCommand != "":
			return loader.FromCommand(ctx, a.options.CredentialsCommand, scopes)
		case a.options.EncryptionKey != "":
			return loader.FromEncrypted(ctx, a.paths.Credentials, a.options.EncryptionKey, scopes)
		default:
			return loader.FromFile(ctx, a.paths.Credentials, scopes)
		}
	}
}

// runCommand starts a local shell on first use.
func (a *Agent) runCommand(ctx context.Context, command string) (string, int, error) {
	if a.runner == nil {
		service, err := gosh.New(ctx, local.New())
		if err != nil {
			return "", 0, fmt.Errorf("failed to start shell: %w", err)
		}
		a.runner = func(ctx context.Context, command string) (string, int, error) {
			return service.Run(ctx, command)
		}
	}
	return a.runner(ctx, command)
}

func (a *Agent) init(ctx context.Context) error {
	locations, err := paths.Resolve(a.env)
	if err != nil {
		return fault.WrapConfig(err, "failed to resolve file locations")
	}
	if err = locations.Ensure(); err != nil {
		return fault.WrapConfig(err, "failed to prepare file locations")
	}
	a.paths = locations
	scopes, err := scope.Load(ctx, a.fs, locations.Scopes, a.logger.With("component", "scope"))
	if err != nil {
		return fault.WrapConfig(err, "failed to load scopes")
	}
	if len(scopes) == 0 {
		return fault.Config(fmt.Sprintf("no valid scope in %v", locations.Scopes))
	}
	scopeFile, err := a.fs.Object(ctx, locations.Scopes)
	if err != nil {
		return fault.WrapConfig(err, fmt.Sprintf("failed to inspect %v", locations.Scopes))
	}
	tokenStore := store.NewFileStore(locations.Token, store.WithNotBefore(scopeFile.ModTime()))
	if a.authFlow == nil {
		a.authFlow = flow.New(a.options.Flow)
	}
	a.manager = auth.New(tokenStore, scopes, a.clientConfig(client.New(a.fs, a.runCommand)),
		auth.WithAuthFlow(a.authFlow),
		auth.WithLogger(a.logger.With("component", "auth")))

	oracleOptions := []oracle.Option{
		oracle.WithRetryDelay(a.options.RetryDelay),
		oracle.WithSleeper(a.sleep),
		oracle.WithLogger(a.logger.With("component", "oracle")),
	}
	if a.httpClient != nil {
		oracleOptions = append(oracleOptions, oracle.WithHTTPClient(a.httpClient))
	}
	a.oracle = oracle.New(a.options.OracleURL, oracleOptions...)

	if a.store == nil {
		if a.store, err = drive.New(ctx, a.manager.TokenSource(ctx)); err != nil {
			return err
		}
	}
	a.reconciler = reconcile.New(a.store, cache.NewAddress(locations.LastAddress, a.fs), a.options.RecordName, a.logger.With("component", "reconcile"))
	return nil
}

// New creates an agent; options are initialized with defaults.
func New(ctx context.Context, options *Options, opts ...Option) (*Agent, error) {
	if options == nil {
		options = &Options{}
	}
	options.Init()
	ret := &Agent{options: options, env: os.LookupEnv, sleep: oracle.Sleep}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	if err := ret.init(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}
