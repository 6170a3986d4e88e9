// Package store holds the append-only history of operation records.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"goxchain/types"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record id already exists")
	ErrTerminal    = errors.New("record status is terminal")
	ErrEmptyID     = errors.New("record cannot have empty id")
)

// Record is implemented by types.Message and types.Transaction
type Record interface {
	Header() types.Operation
}

type item[T Record] struct {
	seq uint64
	rec T
}

// Store keeps records by value: callers only ever see copies, and Update
// swaps the whole record under the write lock, so readers never observe
// a half-applied change.
type Store[T Record] struct {
	mu    sync.RWMutex
	items []*item[T]
	byID  map[string]*item[T]
	seq   uint64
}

func New[T Record]() *Store[T] {
	return &Store[T]{
		byID: make(map[string]*item[T]),
	}
}

func (s *Store[T]) Append(rec T) error {
	h := rec.Header()
	if h.ID == "" {
		return ErrEmptyID
	}
	if h.Status == "" {
		return errors.New("record cannot have empty status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[h.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, h.ID)
	}
	s.seq++
	it := &item[T]{seq: s.seq, rec: rec}
	s.items = append(s.items, it)
	s.byID[h.ID] = it
	return nil
}

// Update applies mutate to a copy of the record and commits it if mutate
// succeeds. A terminal status can not be changed, and the id is immutable.
func (s *Store[T]) Update(id string, mutate func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	it, ok := s.byID[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := it.rec
	if err := mutate(&next); err != nil {
		return zero, err
	}

	prev, cur := it.rec.Header(), next.Header()
	if cur.ID != prev.ID {
		return zero, fmt.Errorf("record id cannot change: %s -> %s", prev.ID, cur.ID)
	}
	if prev.Status.Terminal() && cur.Status != prev.Status {
		return zero, fmt.Errorf("%w: %s is %s", ErrTerminal, id, prev.Status)
	}

	it.rec = next
	return next, nil
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return it.rec, true
}

// List returns a snapshot ordered by creation timestamp, newest first;
// equal timestamps keep insertion order
func (s *Store[T]) List() []T {
	s.mu.RLock()
	items := make([]item[T], len(s.items))
	for i, it := range s.items {
		items[i] = *it
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		ti, tj := items[i].rec.Header().Timestamp, items[j].rec.Header().Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return items[i].seq < items[j].seq
	})

	res := make([]T, len(items))
	for i, it := range items {
		res[i] = it.rec
	}
	return res
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Count returns the number of records currently in status
func (s *Store[T]) Count(status types.Status) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, it := range s.items {
		if it.rec.Header().Status == status {
			n++
		}
	}
	return n
}
