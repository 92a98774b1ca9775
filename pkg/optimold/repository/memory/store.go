// Package memory is an in-memory PriorOutputStore, bounded by an entry
// cap with a clear-the-oldest-half eviction. A simple but workable
// policy; a production deployment might want true LRU eviction instead.
package memory

import (
	"sync"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/fingerprint"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/repository"
)

// Store is a concurrency-safe, bounded in-memory PriorOutputStore.
type Store struct {
	mu              sync.RWMutex
	entries         map[fingerprint.Fingerprint]repository.StoredOutputs
	insertOrder     []fingerprint.Fingerprint
	maxCacheEntries int
}

// New returns a Store. maxCacheEntries<=0 means unlimited.
func New(maxCacheEntries int) *Store {
	return &Store{
		entries:         make(map[fingerprint.Fingerprint]repository.StoredOutputs),
		maxCacheEntries: maxCacheEntries,
	}
}

func (s *Store) Get(fp fingerprint.Fingerprint) (repository.StoredOutputs, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.entries[fp]
	return out, ok
}

func (s *Store) Put(fp fingerprint.Fingerprint, outputs repository.StoredOutputs) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[fp]; !exists {
		s.insertOrder = append(s.insertOrder, fp)
	}
	s.entries[fp] = outputs
	s.cleanIfNeeded()
}

// cleanIfNeeded evicts once the cache exceeds its cap, keeping the
// newest half by insertion order.
func (s *Store) cleanIfNeeded() {
	if s.maxCacheEntries <= 0 || len(s.entries) <= s.maxCacheEntries {
		return
	}

	target := s.maxCacheEntries / 2
	if target < 1 {
		target = 1
	}
	keep := s.insertOrder[len(s.insertOrder)-target:]

	newEntries := make(map[fingerprint.Fingerprint]repository.StoredOutputs, target)
	for _, fp := range keep {
		newEntries[fp] = s.entries[fp]
	}
	s.entries = newEntries
	s.insertOrder = append([]fingerprint.Fingerprint(nil), keep...)
}
