// Package mock provides an in-memory remote.Store with paged listings and call
// counters for tests.
package mock

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/postip/remote"
)

// Store keeps records in memory.
type Store struct {
	mu       sync.Mutex
	PageSize int
	records  map[string]*entry
	order    []string
	Lists    int
	Deletes  int
	Creates  int
	// Err, when set, is returned by every operation.
	Err error
}

type entry struct {
	record  remote.Record
	content string
}

// Add seeds a record and returns its id.
func (s *Store) Add(name, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(name, content)
}

func (s *Store) add(name, content string) string {
	id := uuid.New().String()
	s.records[id] = &entry{record: remote.Record{ID: id, Name: name}, content: content}
	s.order = append(s.order, id)
	return id
}

// Contents returns content of every record named name, in creation order.
func (s *Store) Contents(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ret []string
	for _, id := range s.order {
		if e, ok := s.records[id]; ok && e.record.Name == name {
			ret = append(ret, e.content)
		}
	}
	return ret
}

// Calls returns the total number of operations performed.
func (s *Store) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Lists + s.Deletes + s.Creates
}

// List pages over matching records. The page token is a position in the
// append-only creation order, so deleting listed records keeps it stable.
func (s *Store) List(ctx context.Context, name, pageToken string) (*remote.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lists++
	if s.Err != nil {
		return nil, s.Err
	}
	position := 0
	if pageToken != "" {
		var err error
		if position, err = strconv.Atoi(pageToken); err != nil || position > len(s.order) {
			return nil, fmt.Errorf("invalid page token %q", pageToken)
		}
	}
	ret := &remote.Page{}
	for ; position < len(s.order); position++ {
		e, ok := s.records[s.order[position]]
		if !ok || e.record.Name != name {
			continue
		}
		if s.PageSize > 0 && len(ret.Records) == s.PageSize {
			ret.NextPageToken = strconv.Itoa(position)
			break
		}
		record := e.record
		ret.Records = append(ret.Records, &record)
	}
	return ret, nil
}

// Delete removes id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("file %v not found", id)
	}
	delete(s.records, id)
	return nil
}

// Create adds a record.
func (s *Store) Create(ctx context.Context, name, content string) (*remote.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Creates++
	if s.Err != nil {
		return nil, s.Err
	}
	id := s.add(name, content)
	record := s.records[id].record
	return &record, nil
}

// New creates an empty store listing pageSize records per page (0 means unpaged).
func New(pageSize int) *Store {
	return &Store{PageSize: pageSize, records: map[string]*entry{}}
}
