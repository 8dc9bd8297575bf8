package storage

import (
	"bytes"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of a Store, mainly
// used for testing. Do not use MemoryStore in production.
type MemoryStore struct {
	mut sync.RWMutex
	mem map[string][]byte
}

// NewMemoryStore creates a new MemoryStore object.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mem: make(map[string][]byte),
	}
}

// Get implements the Store interface.
func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if val, ok := s.mem[string(key)]; ok && val != nil {
		return val, nil
	}
	return nil, ErrKeyNotFound
}

// Put stores the given key-value pair.
func (s *MemoryStore) Put(key, value []byte) error {
	s.mut.Lock()
	s.mem[string(key)] = copyBytes(value)
	s.mut.Unlock()
	return nil
}

// Delete removes the key from the store.
func (s *MemoryStore) Delete(key []byte) error {
	s.mut.Lock()
	delete(s.mem, string(key))
	s.mut.Unlock()
	return nil
}

// PutChangeSet implements the Store interface. Never returns an error.
func (s *MemoryStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k := range puts {
		if puts[k] == nil {
			delete(s.mem, k)
		} else {
			s.mem[k] = puts[k]
		}
	}
	s.mut.Unlock()
	return nil
}

// Seek implements the Store interface.
func (s *MemoryStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	memList := s.collect(rng, false)
	s.mut.RUnlock()
	for _, kv := range memList {
		if !f(kv.Key, kv.Value) {
			break
		}
	}
}

// collect returns sorted key-value pairs matching the range, it's supposed
// to be called with the mutex locked. withDeleted controls whether entries
// with nil values (deletion marks of the cached store) are included.
func (s *MemoryStore) collect(rng SeekRange, withDeleted bool) []KeyValue {
	var memList []KeyValue
	for k, v := range s.mem {
		if (v != nil || withDeleted) && keyInRange(rng, []byte(k)) {
			memList = append(memList, KeyValue{
				Key:   []byte(k),
				Value: v,
			})
		}
	}
	less := getLessFunc(rng.Backwards)
	sort.Slice(memList, func(i, j int) bool {
		return less(memList[i].Key, memList[j].Key)
	})
	return memList
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return len(s.mem)
}

// Close implements Store interface and clears up memory. Never returns an
// error.
func (s *MemoryStore) Close() error {
	s.mut.Lock()
	s.mem = nil
	s.mut.Unlock()
	return nil
}

func getLessFunc(backwards bool) func(k1, k2 []byte) bool {
	if backwards {
		return func(k1, k2 []byte) bool { return bytes.Compare(k1, k2) > 0 }
	}
	return func(k1, k2 []byte) bool { return bytes.Compare(k1, k2) < 0 }
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	res := make([]byte, len(b))
	copy(res, b)
	return res
}
