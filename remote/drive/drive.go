// Package drive implements remote.Store on top of the Google Drive v3 API.
package drive

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/viant/postip/remote"
	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const listFields = "nextPageToken, files(id, name)"

// Store is a Drive backed remote.Store.
type Store struct {
	service *gdrive.Service
}

// List returns one page of the user's files named name.
func (s *Store) List(ctx context.Context, name, pageToken string) (*remote.Page, error) {
	call := s.service.Files.List().
		Corpora("user").
		Q(NameQuery(name)).
		Fields(listFields).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files named %q: %w", name, err)
	}
	ret := &remote.Page{NextPageToken: list.NextPageToken}
	for _, file := range list.Files {
		ret.Records = append(ret.Records, &remote.Record{ID: file.Id, Name: file.Name})
	}
	return ret, nil
}

// Delete removes file id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.service.Files.Delete(id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete file %v: %w", id, err)
	}
	return nil
}

// Create uploads content as a new text/plain file called name.
func (s *Store) Create(ctx context.Context, name, content string) (*remote.Record, error) {
	file, err := s.service.Files.Create(&gdrive.File{Name: name}).
		Media(strings.NewReader(content), googleapi.ContentType("text/plain")).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create file %q: %w", name, err)
	}
	return &remote.Record{ID: file.Id, Name: file.Name}, nil
}

// NameQuery builds a Drive search expression matching name exactly.
func NameQuery(name string) string {
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "name = '" + escaped + "'"
}

// New creates a Drive store authorized by tokenSource. Requests go through an
// oauth2 transport so token errors reach the caller unchanged.
func New(ctx context.Context, tokenSource oauth2.TokenSource) (*Store, error) {
	return NewWithHTTPClient(ctx, oauth2.NewClient(ctx, tokenSource), "")
}

// NewWithHTTPClient creates a Drive store using client (which must authorize
// requests itself) against endpoint; an empty endpoint keeps the default.
func NewWithHTTPClient(ctx context.Context, client *http.Client, endpoint string) (*Store, error) {
	options := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		options = append(options, option.WithEndpoint(endpoint))
	}
	service, err := gdrive.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Store{service: service}, nil
}
