// Package spillstore provides a generic keyed store that keeps a bounded
// number of values in memory and spills the least recently used ones to
// temporary files, so large trees can be summarized in bounded memory.
package spillstore

import (
	"errors"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sumatoshi-tech/codetally/pkg/persist"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("spillstore: store is closed")

// SpillStore maps keys to values with a bounded in-memory tier.
//
// Put keeps at most maxEntries values in an LRU cache; when full, the least
// recently used value is encoded with the store codec into a numbered file
// in a temp directory created lazily on the first spill. Get consults memory
// first and falls back to the spilled file. Close removes the directory.
type SpillStore[K comparable, V any] struct {
	mu         sync.Mutex
	mem        *lru.Cache[K, V]
	maxEntries int
	codec      persist.Codec
	parent     string
	dir        string
	spilled    map[K]*persist.Persister[V]
	spillN     int
	closed     bool
}

// New creates a SpillStore holding up to maxEntries values in memory.
// Spill files are created under parent, or the system temp dir when parent is empty.
func New[K comparable, V any](maxEntries int, codec persist.Codec, parent string) (*SpillStore[K, V], error) {
	mem, err := lru.New[K, V](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("spillstore: %w", err)
	}

	return &SpillStore[K, V]{
		mem:        mem,
		maxEntries: maxEntries,
		codec:      codec,
		parent:     parent,
		spilled:    make(map[K]*persist.Persister[V]),
	}, nil
}

// Put stores val under key, spilling the least recently used value if memory is full.
func (s *SpillStore[K, V]) Put(key K, val V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if p, ok := s.spilled[key]; ok {
		err := p.Remove(s.dir)
		if err != nil {
			return fmt.Errorf("spillstore: %w", err)
		}

		delete(s.spilled, key)
	}

	if !s.mem.Contains(key) && s.mem.Len() >= s.maxEntries {
		err := s.spillOldest()
		if err != nil {
			return err
		}
	}

	s.mem.Add(key, val)

	return nil
}

// Get returns the value stored under key, reading it back from disk if it was spilled.
func (s *SpillStore[K, V]) Get(key K) (V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V

	if s.closed {
		return zero, false, ErrClosed
	}

	if v, ok := s.mem.Get(key); ok {
		return v, true, nil
	}

	p, ok := s.spilled[key]
	if !ok {
		return zero, false, nil
	}

	v, err := p.Load(s.dir)
	if err != nil {
		return zero, false, fmt.Errorf("spillstore: %w", err)
	}

	return v, true, nil
}

// Len returns the number of stored keys, in memory and spilled.
// Safe to call on a nil receiver (returns 0).
func (s *SpillStore[K, V]) Len() int {
	if s == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mem.Len() + len(s.spilled)
}

// SpillCount returns the number of values currently held on disk.
// Safe to call on a nil receiver (returns 0).
func (s *SpillStore[K, V]) SpillCount() int {
	if s == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.spilled)
}

// SpillDir returns the temp directory path, or empty if no spills occurred.
func (s *SpillStore[K, V]) SpillDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dir
}

// Close drops every value and removes the temp directory. Safe to call multiple times.
func (s *SpillStore[K, V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.mem.Purge()
	s.spilled = make(map[K]*persist.Persister[V])

	if s.dir == "" {
		return nil
	}

	dir := s.dir
	s.dir = ""

	err := os.RemoveAll(dir)
	if err != nil {
		return fmt.Errorf("spillstore: remove %s: %w", dir, err)
	}

	return nil
}

func (s *SpillStore[K, V]) spillOldest() error {
	key, val, ok := s.mem.GetOldest()
	if !ok {
		return nil
	}

	if s.dir == "" {
		dir, err := os.MkdirTemp(s.parent, "codetally-spill-*")
		if err != nil {
			return fmt.Errorf("spillstore: create temp dir: %w", err)
		}

		s.dir = dir
	}

	p := persist.NewPersister[V](fmt.Sprintf("entry_%06d", s.spillN), s.codec)

	err := p.Save(s.dir, &val)
	if err != nil {
		return fmt.Errorf("spillstore: spill %d: %w", s.spillN, err)
	}

	s.mem.Remove(key)
	s.spilled[key] = p
	s.spillN++

	return nil
}
