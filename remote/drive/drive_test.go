package drive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/postip/internal/fault"
	"golang.org/x/oauth2"
)

type fakeDrive struct {
	mu       sync.Mutex
	pages    map[string][]map[string]string
	next     map[string]string
	deleted  []string
	uploaded []string
	queries  []string
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files"):
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		pageToken := r.URL.Query().Get("pageToken")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"files":         f.pages[pageToken],
			"nextPageToken": f.next[pageToken],
		})
	case r.Method == http.MethodDelete && strings.Contains(r.URL.Path, "/files/"):
		f.deleted = append(f.deleted, r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:])
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/files"):
		body, _ := io.ReadAll(r.Body)
		f.uploaded = append(f.uploaded, string(body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "created-1", "name": "post_ip_data.txt"})
	default:
		http.NotFound(w, r)
	}
}

func TestStore(t *testing.T) {
	fake := &fakeDrive{
		pages: map[string][]map[string]string{
			"":   {{"id": "a", "name": "post_ip_data.txt"}},
			"p2": {{"id": "b", "name": "post_ip_data.txt"}},
		},
		next: map[string]string{"": "p2"},
	}
	server := httptest.NewServer(fake)
	defer server.Close()

	ctx := context.Background()
	store, err := NewWithHTTPClient(ctx, server.Client(), server.URL+"/drive/v3/")
	require.NoError(t, err)

	page, err := store.List(ctx, "post_ip_data.txt", "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "a", page.Records[0].ID)
	assert.Equal(t, "p2", page.NextPageToken)

	page, err = store.List(ctx, "post_ip_data.txt", page.NextPageToken)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "b", page.Records[0].ID)
	assert.Equal(t, "", page.NextPageToken)

	require.NoError(t, store.Delete(ctx, "a"))
	record, err := store.Create(ctx, "post_ip_data.txt", "203.0.113.5")
	require.NoError(t, err)
	assert.Equal(t, "created-1", record.ID)

	assert.Equal(t, []string{"a"}, fake.deleted)
	require.Len(t, fake.uploaded, 1)
	assert.Contains(t, fake.uploaded[0], "203.0.113.5")
	assert.Equal(t, []string{"name = 'post_ip_data.txt'", "name = 'post_ip_data.txt'"}, fake.queries)
}

func TestStore_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"invalid credentials"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()
	ctx := context.Background()
	store, err := NewWithHTTPClient(ctx, server.Client(), server.URL+"/drive/v3/")
	require.NoError(t, err)
	_, err = store.List(ctx, "post_ip_data.txt", "")
	assert.Error(t, err)
}

type rejectingSource struct {
	calls int
}

func (r *rejectingSource) Token() (*oauth2.Token, error) {
	r.calls++
	rejected := &oauth2.RetrieveError{
		Response:         &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request"},
		ErrorCode:        "invalid_grant",
		ErrorDescription: "Token has been expired or revoked.",
	}
	return nil, fault.WrapAuth(rejected, "token refresh was rejected")
}

func TestStore_RejectedAuthorization(t *testing.T) {
	fake := &fakeDrive{}
	server := httptest.NewServer(fake)
	defer server.Close()

	ctx := context.Background()
	source := &rejectingSource{}
	store, err := NewWithHTTPClient(ctx, oauth2.NewClient(ctx, source), server.URL+"/drive/v3/")
	require.NoError(t, err)

	_, err = store.List(ctx, "post_ip_data.txt", "")
	require.Error(t, err)
	assert.True(t, fault.IsAuth(err), err.Error())
	assert.False(t, fault.IsFatal(err))
	var retrieveErr *oauth2.RetrieveError
	assert.ErrorAs(t, err, &retrieveErr)

	err = store.Delete(ctx, "a")
	require.Error(t, err)
	assert.True(t, fault.IsAuth(err), err.Error())

	assert.Empty(t, fake.queries)
	assert.Empty(t, fake.deleted)
	assert.Positive(t, source.calls)
}

func TestNew_RejectedAuthorization(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, &rejectingSource{})
	require.NoError(t, err)
	_, err = store.List(ctx, "post_ip_data.txt", "")
	require.Error(t, err)
	assert.True(t, fault.IsAuth(err), err.Error())
}

func TestNameQuery(t *testing.T) {
	var testCases = []struct {
		input  string
		expect string
	}{
		{input: "post_ip_data.txt", expect: `name = 'post_ip_data.txt'`},
		{input: "it's", expect: `name = 'it\'s'`},
		{input: `a\b`, expect: `name = 'a\\b'`},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, NameQuery(testCase.input), testCase.input)
	}
}
