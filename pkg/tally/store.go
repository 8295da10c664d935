package tally

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
	"github.com/Sumatoshi-tech/codetally/pkg/persist"
	"github.com/Sumatoshi-tech/codetally/pkg/spillstore"
)

// Store errors.
var (
	ErrMissingSummary = errors.New("summary not found")
	ErrStoreClosed    = errors.New("summary store is closed")
)

// Store holds the summaries of one pass, keyed by resource.
type Store interface {
	// Save records the summary of a resource, replacing any previous one.
	Save(id codebase.ResourceID, s Summary) error
	// Load returns the summary saved for a resource, or ErrMissingSummary.
	Load(id codebase.ResourceID) (Summary, error)
	// Len returns the number of saved summaries.
	Len() int
	// Close releases the store. Later calls fail with ErrStoreClosed.
	Close() error
}

// MemoryStore keeps every summary in a map.
type MemoryStore struct {
	summaries map[codebase.ResourceID]Summary
	closed    bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{summaries: make(map[codebase.ResourceID]Summary)}
}

// Save implements Store.
func (m *MemoryStore) Save(id codebase.ResourceID, s Summary) error {
	if m.closed {
		return ErrStoreClosed
	}

	m.summaries[id] = s

	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(id codebase.ResourceID) (Summary, error) {
	if m.closed {
		return Summary{}, ErrStoreClosed
	}

	s, ok := m.summaries[id]
	if !ok {
		return Summary{}, fmt.Errorf("%w: resource %d", ErrMissingSummary, id)
	}

	return s, nil
}

// Len implements Store.
func (m *MemoryStore) Len() int {
	return len(m.summaries)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.closed = true
	m.summaries = nil

	return nil
}

// SpillStore keeps a bounded number of summaries in memory and spills the
// rest to LZ4-compressed files.
type SpillStore struct {
	inner *spillstore.SpillStore[codebase.ResourceID, Summary]
}

// NewSpillStore creates a SpillStore holding up to maxEntries summaries in
// memory. Spill files go under dir, or the system temp dir when dir is empty.
func NewSpillStore(maxEntries int, dir string) (*SpillStore, error) {
	inner, err := spillstore.New[codebase.ResourceID, Summary](
		maxEntries, persist.NewLZ4Codec(&persist.JSONCodec{}), dir)
	if err != nil {
		return nil, err
	}

	return &SpillStore{inner: inner}, nil
}

// Save implements Store.
func (s *SpillStore) Save(id codebase.ResourceID, sum Summary) error {
	return storeErr(s.inner.Put(id, sum))
}

// Load implements Store.
func (s *SpillStore) Load(id codebase.ResourceID) (Summary, error) {
	sum, ok, err := s.inner.Get(id)
	if err != nil {
		return Summary{}, storeErr(err)
	}

	if !ok {
		return Summary{}, fmt.Errorf("%w: resource %d", ErrMissingSummary, id)
	}

	return sum, nil
}

// Len implements Store.
func (s *SpillStore) Len() int {
	return s.inner.Len()
}

// Spilled returns the number of summaries currently on disk.
func (s *SpillStore) Spilled() int {
	return s.inner.SpillCount()
}

// Close implements Store.
func (s *SpillStore) Close() error {
	return s.inner.Close()
}

func storeErr(err error) error {
	if errors.Is(err, spillstore.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrStoreClosed, err)
	}

	return err
}
