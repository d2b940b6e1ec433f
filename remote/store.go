// Package remote defines the file-hosting capability the agent publishes to.
//
// The reconciler only needs three operations: list records by name (paged),
// delete a record by id and create a record with text content.
package remote

import "context"

// Record is a remote file.
type Record struct {
	ID   string
	Name string
}

// Page is one page of a listing; NextPageToken is empty on the last page.
type Page struct {
	Records       []*Record
	NextPageToken string
}

// Store is a remote file store
type Store interface {
	List(ctx context.Context, name, pageToken string) (*Page, error)
	Delete(ctx context.Context, id string) error
	Create(ctx context.Context, name, content string) (*Record, error)
}
