package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrStale is returned when the token file predates the scope definition.
var ErrStale = errors.New("authorization record is older than scope definition")

// FileStore persists the record to a JSON file. A file not modified after
// NotBefore is treated as stale, forcing re-authorization when the scope
// definition changed after the token was issued.
type FileStore struct {
	mu        sync.Mutex
	path      string
	notBefore time.Time
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithNotBefore rejects records whose file modification time is not after t.
func WithNotBefore(t time.Time) FileOption {
	return func(f *FileStore) {
		f.notBefore = t
	}
}

// NewFileStore creates a Store that persists the record at path.
func NewFileStore(path string, options ...FileOption) *FileStore {
	ret := &FileStore{path: path}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Path returns the backing file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !f.notBefore.IsZero() && !info.ModTime().After(f.notBefore) {
		return nil, ErrStale
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	record := &Record{}
	if err = json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to decode %v: %w", f.path, err)
	}
	if record.Token == nil || record.Client == nil {
		return nil, fmt.Errorf("%v: incomplete authorization record", f.path)
	}
	return record, nil
}

func (f *FileStore) Save(record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
