package relaystore

import (
	"bytes"
	"context"
	"sync"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
)

// MemStore is an in-memory Store, a mutex-guarded append-only slice. It
// backs the test suite and gives a mix node a local log it doesn't need
// a running relay server to exercise.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1}
}

// Post appends a new entry and returns its assigned id.
func (m *MemStore) Post(ctx context.Context, tag fmd.Tag, ct hybrid.TaggedCiphertext) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.entries = append(m.entries, Entry{ID: id, Tag: tag, Ciphertext: ct})
	return id, nil
}

// Fetch resolves referenceTag to a cut-point id (the MAX id among
// entries whose compressed tag bytes match it), then returns every
// later entry that passes dk.Test, in ascending id order.
func (m *MemStore) Fetch(ctx context.Context, referenceTag *fmd.Tag, dk fmd.DetectionKey) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := cutPoint(m.entries, referenceTag)

	var matched []Entry
	for _, e := range m.entries {
		if e.ID <= cutoff {
			continue
		}
		tag := e.Tag
		if dk.Test(&tag) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// cutPoint returns the highest id among entries whose compressed tag
// bytes equal referenceTag's, or 0 if referenceTag is nil or unmatched.
func cutPoint(entries []Entry, referenceTag *fmd.Tag) int64 {
	if referenceTag == nil {
		return 0
	}
	want := referenceTag.Compress()

	var cutoff int64
	for _, e := range entries {
		tag := e.Tag
		if bytes.Equal(tag.Compress(), want) && e.ID > cutoff {
			cutoff = e.ID
		}
	}
	return cutoff
}
