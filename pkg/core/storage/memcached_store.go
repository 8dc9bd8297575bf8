package storage

import (
	"bytes"
)

// MemCachedStore is a wrapper around persistent store that caches all changes
// being made for them to be later flushed in one batch.
type MemCachedStore struct {
	MemoryStore

	// Persistent Store.
	ps Store
}

// NewMemCachedStore creates a new MemCachedStore object.
func NewMemCachedStore(lower Store) *MemCachedStore {
	return &MemCachedStore{
		MemoryStore: *NewMemoryStore(),
		ps:          lower,
	}
}

// Get implements the Store interface.
func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	val, ok := s.mem[string(key)]
	s.mut.RUnlock()
	if ok {
		if val == nil {
			return nil, ErrKeyNotFound
		}
		return val, nil
	}
	return s.ps.Get(key)
}

// Put puts the key-value pair into the cache, it's not visible to the
// lower layer until Persist.
func (s *MemCachedStore) Put(key, value []byte) error {
	s.mut.Lock()
	s.mem[string(key)] = copyBytes(value)
	s.mut.Unlock()
	return nil
}

// Delete marks the key as deleted in the cache.
func (s *MemCachedStore) Delete(key []byte) error {
	s.mut.Lock()
	s.mem[string(key)] = nil
	s.mut.Unlock()
	return nil
}

// PutChangeSet implements the Store interface, changes are cached.
func (s *MemCachedStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k := range puts {
		s.mem[k] = puts[k]
	}
	s.mut.Unlock()
	return nil
}

// Seek implements the Store interface. Cached changes take precedence over
// the lower layer contents, keys deleted in the cache are skipped.
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	memRes := s.collect(rng, true)
	s.mut.RUnlock()

	var (
		less = getLessFunc(rng.Backwards)
		i    int
		done bool
	)
	s.ps.Seek(rng, func(k, v []byte) bool {
		for ; i < len(memRes) && less(memRes[i].Key, k); i++ {
			if memRes[i].Value != nil && !f(memRes[i].Key, memRes[i].Value) {
				done = true
				return false
			}
		}
		if i < len(memRes) && bytes.Equal(memRes[i].Key, k) {
			kv := memRes[i]
			i++
			if kv.Value == nil {
				return true
			}
			if !f(kv.Key, kv.Value) {
				done = true
				return false
			}
			return true
		}
		if !f(k, v) {
			done = true
			return false
		}
		return true
	})
	if done {
		return
	}
	for ; i < len(memRes); i++ {
		if memRes[i].Value != nil && !f(memRes[i].Key, memRes[i].Value) {
			return
		}
	}
}

// Persist flushes all the cached changes into the (supposedly) persistent
// store ps. It returns the number of keys flushed.
func (s *MemCachedStore) Persist() (int, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	keys := len(s.mem)
	if keys == 0 {
		return 0, nil
	}
	err := s.ps.PutChangeSet(s.mem)
	if err != nil {
		return 0, err
	}
	s.mem = make(map[string][]byte)
	return keys, nil
}

// Reset drops all cached changes without touching the lower layer.
func (s *MemCachedStore) Reset() {
	s.mut.Lock()
	s.mem = make(map[string][]byte)
	s.mut.Unlock()
}

// Close implements Store interface, clears up memory and closes the lower layer
// Store.
func (s *MemCachedStore) Close() error {
	// It's always successful.
	_ = s.MemoryStore.Close()
	return s.ps.Close()
}
