// Package reconcile keeps the remote store in step with the host's current address.
//
// A cycle compares the discovered address with the locally cached one. On a
// change it deletes every remote record carrying the record name (draining all
// listing pages), uploads a fresh record and only then updates the cache. The
// sequence is not atomic: a crash between delete and upload leaves no remote
// record until the next cycle, which still sees a stale cache and repairs it.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/postip/remote"
)

// DefaultRecordName is the remote file holding the address.
const DefaultRecordName = "post_ip_data.txt"

// Cache stores the last synced address.
type Cache interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, address string) error
}

// Reconciler publishes address changes.
type Reconciler struct {
	store  remote.Store
	cache  Cache
	name   string
	logger *slog.Logger
}

// Reconcile publishes address unless it matches the cache. It reports whether the
// remote store was updated. Remote errors are returned unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, address string) (bool, error) {
	last, ok, err := r.cache.Load(ctx)
	if err != nil {
		return false, err
	}
	if ok && last == address {
		r.logger.Info("address matches cache", "address", address)
		return false, nil
	}
	r.logger.Info("address changed, updating", "address", address, "cached", last)
	if err = r.purge(ctx); err != nil {
		return false, err
	}
	record, err := r.store.Create(ctx, r.name, address)
	if err != nil {
		return false, err
	}
	r.logger.Debug("uploaded remote record", "name", record.Name, "id", record.ID, "address", address)
	if err = r.cache.Save(ctx, address); err != nil {
		return true, fmt.Errorf("failed to cache address: %w", err)
	}
	r.logger.Debug("cached address", "address", address)
	return true, nil
}

func (r *Reconciler) purge(ctx context.Context) error {
	pageToken := ""
	for {
		page, err := r.store.List(ctx, r.name, pageToken)
		if err != nil {
			return err
		}
		for _, record := range page.Records {
			if err = r.store.Delete(ctx, record.ID); err != nil {
				return err
			}
			r.logger.Debug("deleted remote record", "name", record.Name, "id", record.ID)
		}
		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

// New creates a reconciler for records called name (DefaultRecordName when empty).
func New(store remote.Store, cache Cache, name string, logger *slog.Logger) *Reconciler {
	if name == "" {
		name = DefaultRecordName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, cache: cache, name: name, logger: logger}
}
