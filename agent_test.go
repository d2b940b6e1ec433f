package postip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/postip/auth/store"
	"github.com/viant/postip/internal/fault"
	"github.com/viant/postip/paths"
	"github.com/viant/postip/reconcile"
	"github.com/viant/postip/remote/mock"
	scyflow "github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

const credentials = `{"installed":{"client_id":"abc.apps.googleusercontent.com","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","client_secret":"shh","redirect_uris":["http://localhost"]}}`

type testFlow struct {
	calls int
}

func (f *testFlow) Token(ctx context.Context, config *oauth2.Config, options ...scyflow.Option) (*oauth2.Token, error) {
	f.calls++
	return &oauth2.Token{AccessToken: fmt.Sprintf("interactive-%v", f.calls), Expiry: time.Now().Add(time.Hour)}, nil
}

type fixture struct {
	env      paths.Env
	paths    *paths.Paths
	store    *mock.Store
	authFlow *testFlow
	body     string
	delays   []time.Duration
	// afterSleep runs after each recorded sleep; the run stops after maxSleeps.
	afterSleep func(count int)
	maxSleeps  int
	oracle     *httptest.Server
}

func newFixture(t *testing.T, cachedToken bool) *fixture {
	dir := t.TempDir()
	vars := map[string]string{
		"XDG_CONFIG_HOME": filepath.Join(dir, "config"),
		"XDG_CACHE_HOME":  filepath.Join(dir, "cache"),
	}
	ret := &fixture{
		env: func(key string) (string, bool) {
			value, ok := vars[key]
			return value, ok
		},
		store:     mock.New(0),
		authFlow:  &testFlow{},
		body:      "203.0.113.5\n",
		maxSleeps: 2,
	}
	ret.oracle = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ret.body))
	}))
	t.Cleanup(ret.oracle.Close)

	locations, err := paths.Resolve(ret.env)
	require.NoError(t, err)
	require.NoError(t, locations.Ensure())
	ret.paths = locations
	scopeModified := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(locations.Scopes, scopeModified, scopeModified))
	if cachedToken {
		require.NoError(t, store.NewFileStore(locations.Token).Save(&store.Record{
			Client: &store.Client{ID: "id", TokenURL: "http://127.0.0.1:1/token"},
			Scopes: []string{paths.DefaultScope},
			Token:  &oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)},
		}))
	}
	return ret
}

func (f *fixture) sleep(cancel context.CancelFunc) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		f.delays = append(f.delays, d)
		if f.afterSleep != nil {
			f.afterSleep(len(f.delays))
		}
		if len(f.delays) >= f.maxSleeps {
			cancel()
			return ctx.Err()
		}
		return nil
	}
}

func (f *fixture) run(t *testing.T, options *Options) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if options == nil {
		options = &Options{}
	}
	options.OracleURL = f.oracle.URL
	agent, err := New(ctx, options,
		WithEnv(f.env),
		WithStore(f.store),
		WithAuthFlow(f.authFlow),
		WithSleeper(f.sleep(cancel)))
	require.NoError(t, err)
	return agent.Run(ctx)
}

func TestAgent_Run(t *testing.T) {
	f := newFixture(t, true)
	f.store.Add(reconcile.DefaultRecordName, "198.51.100.7")
	f.store.Add(reconcile.DefaultRecordName, "198.51.100.8")
	f.store.Add("other.txt", "keep")

	require.NoError(t, f.run(t, nil))
	assert.Equal(t, []string{"203.0.113.5"}, f.store.Contents(reconcile.DefaultRecordName))
	assert.Equal(t, []string{"keep"}, f.store.Contents("other.txt"))
	assert.Equal(t, []time.Duration{DefaultPollInterval, DefaultPollInterval}, f.delays)
	// the second cycle found the address unchanged
	assert.Equal(t, 1, f.store.Lists)
	assert.Equal(t, 2, f.store.Deletes)
	assert.Equal(t, 1, f.store.Creates)
	assert.Equal(t, 0, f.authFlow.calls)

	cached, err := os.ReadFile(f.paths.LastAddress)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", string(cached))
}

func TestAgent_Run_Recovery(t *testing.T) {
	f := newFixture(t, true)
	f.store.Err = errors.New("503 backend error")
	f.afterSleep = func(count int) {
		f.store.Err = nil
	}
	require.NoError(t, f.run(t, &Options{PollInterval: time.Hour, RecoveryInterval: time.Minute}))
	assert.Equal(t, []time.Duration{time.Minute, time.Hour}, f.delays)
	assert.Equal(t, []string{"203.0.113.5"}, f.store.Contents(reconcile.DefaultRecordName))
}

func TestAgent_Run_Reauthorize(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, os.WriteFile(f.paths.Credentials, []byte(credentials), 0o600))
	f.store.Err = fault.WrapAuth(errors.New("invalid_grant"), "token refresh was rejected")
	f.afterSleep = func(count int) {
		f.store.Err = nil
	}
	require.NoError(t, f.run(t, nil))
	assert.Equal(t, 1, f.authFlow.calls)
	assert.Equal(t, []time.Duration{DefaultRecoveryInterval, DefaultPollInterval}, f.delays)
	assert.Equal(t, []string{"203.0.113.5"}, f.store.Contents(reconcile.DefaultRecordName))

	record, err := store.NewFileStore(f.paths.Token).Load()
	require.NoError(t, err)
	assert.Equal(t, "interactive-1", record.Token.AccessToken)
	assert.Equal(t, "abc.apps.googleusercontent.com", record.Client.ID)
}

func TestAgent_Run_Fatal(t *testing.T) {
	t.Run("oracle contract", func(t *testing.T) {
		f := newFixture(t, true)
		f.body = "<html>maintenance</html>"
		err := f.run(t, nil)
		require.Error(t, err)
		assert.True(t, fault.IsFatal(err))
		assert.Empty(t, f.delays)
		assert.Equal(t, 0, f.store.Calls())
	})
	t.Run("missing credentials", func(t *testing.T) {
		f := newFixture(t, false)
		err := f.run(t, nil)
		require.Error(t, err)
		assert.True(t, fault.IsFatal(err))
		assert.Contains(t, err.Error(), f.paths.Credentials)
		assert.Equal(t, 0, f.authFlow.calls)
	})
	t.Run("stale token needs credentials", func(t *testing.T) {
		f := newFixture(t, true)
		scopeModified := time.Now().Add(time.Minute)
		require.NoError(t, os.Chtimes(f.paths.Scopes, scopeModified, scopeModified))
		err := f.run(t, nil)
		require.Error(t, err)
		assert.True(t, fault.IsFatal(err))
	})
}

func TestAgent_Run_FirstRun(t *testing.T) {
	f := newFixture(t, false)
	f.body = "198.51.100.7"
	require.NoError(t, os.WriteFile(f.paths.Credentials, []byte(credentials), 0o600))
	f.maxSleeps = 1
	require.NoError(t, f.run(t, nil))
	assert.Equal(t, 1, f.authFlow.calls)
	assert.Equal(t, []string{"198.51.100.7"}, f.store.Contents(reconcile.DefaultRecordName))
	cached, err := os.ReadFile(f.paths.LastAddress)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.7", string(cached))
}

func TestAgent_Run_Cancelled(t *testing.T) {
	f := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	agent, err := New(ctx, &Options{OracleURL: f.oracle.URL}, WithEnv(f.env), WithStore(f.store), WithAuthFlow(f.authFlow))
	require.NoError(t, err)
	cancel()
	assert.NoError(t, agent.Run(ctx))
	assert.Equal(t, 0, f.store.Calls())
}
