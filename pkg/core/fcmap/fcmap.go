/*
Package fcmap provides the persistent keyed map the ledger backing stores
are built upon. The map itself knows nothing about transactions, it only
supports copy-on-write reads (GetForModify) and explicit write-back
(Replace).
*/
package fcmap

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/io"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of decoded values cached by StoreMap.
const DefaultCacheSize = 4096

// ErrNotFound is returned by Replace for missing keys.
var ErrNotFound = errors.New("no such key in map")

type (
	// Key is the type map keys must satisfy.
	Key interface {
		comparable
		Bytes() []byte
	}

	// Value is the type of map values, it must be serializable and
	// copyable.
	Value[V any] interface {
		io.Serializable
		Copy() V
	}

	// Map is the persistent keyed map interface.
	Map[K Key, V Value[V]] interface {
		// Get returns a copy of the value that must not be written back.
		Get(k K) (V, bool)
		// GetForModify returns a mutable copy of the value, changes made to
		// it are only visible after Replace.
		GetForModify(k K) (V, bool)
		Put(k K, v V) error
		Replace(k K, v V) error
		Remove(k K) error
		ContainsKey(k K) bool
		// KeySet returns all keys in ascending order.
		KeySet() []K
		Size() int
	}

	// StoreMap is a Map stored under a key prefix in storage.Store.
	StoreMap[K Key, V Value[V]] struct {
		store     storage.Store
		prefix    storage.KeyPrefix
		newValue  func() V
		decodeKey func([]byte) (K, error)
		cache     *lru.Cache
		log       *zap.Logger
	}
)

// NewStoreMap creates a map over the given store. newValue returns an empty
// value to decode into, decodeKey restores key from its Bytes
// representation.
func NewStoreMap[K Key, V Value[V]](store storage.Store, prefix storage.KeyPrefix,
	newValue func() V, decodeKey func([]byte) (K, error), log *zap.Logger) *StoreMap[K, V] {
	if log == nil {
		log = zap.NewNop()
	}
	cache, _ := lru.New(DefaultCacheSize) // Never returns an error for positive size.
	return &StoreMap[K, V]{
		store:     store,
		prefix:    prefix,
		newValue:  newValue,
		decodeKey: decodeKey,
		cache:     cache,
		log:       log,
	}
}

func (m *StoreMap[K, V]) key(k K) []byte {
	return m.prefix.AppendKey(k.Bytes())
}

func (m *StoreMap[K, V]) load(k K) (V, bool) {
	var zero V
	if v, ok := m.cache.Get(k); ok {
		return v.(V), true
	}
	data, err := m.store.Get(m.key(k))
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			m.log.Error("failed to read map value", zap.Stringer("prefix", prefixStringer(m.prefix)), zap.Error(err))
		}
		return zero, false
	}
	v := m.newValue()
	err = io.FromBytes(data, v)
	if err != nil {
		m.log.Error("failed to decode map value", zap.Stringer("prefix", prefixStringer(m.prefix)), zap.Error(err))
		return zero, false
	}
	m.cache.Add(k, v)
	return v, true
}

// Get implements the Map interface.
func (m *StoreMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.load(k)
	if !ok {
		return v, false
	}
	return v.Copy(), true
}

// GetForModify implements the Map interface.
func (m *StoreMap[K, V]) GetForModify(k K) (V, bool) {
	return m.Get(k)
}

// Put implements the Map interface, it overwrites any existing value.
func (m *StoreMap[K, V]) Put(k K, v V) error {
	data, err := io.ToBytes(v)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	err = m.store.PutChangeSet(map[string][]byte{string(m.key(k)): data})
	if err != nil {
		return err
	}
	m.cache.Add(k, v.Copy())
	return nil
}

// Replace implements the Map interface, the key must exist.
func (m *StoreMap[K, V]) Replace(k K, v V) error {
	if !m.ContainsKey(k) {
		return ErrNotFound
	}
	return m.Put(k, v)
}

// Remove implements the Map interface.
func (m *StoreMap[K, V]) Remove(k K) error {
	m.cache.Remove(k)
	return m.store.PutChangeSet(map[string][]byte{string(m.key(k)): nil})
}

// ContainsKey implements the Map interface.
func (m *StoreMap[K, V]) ContainsKey(k K) bool {
	if m.cache.Contains(k) {
		return true
	}
	_, err := m.store.Get(m.key(k))
	return err == nil
}

// KeySet implements the Map interface.
func (m *StoreMap[K, V]) KeySet() []K {
	var res []K
	m.store.Seek(storage.SeekRange{Prefix: m.prefix.Bytes()}, func(k, _ []byte) bool {
		key, err := m.decodeKey(k[1:])
		if err != nil {
			m.log.Error("bad key in map", zap.Binary("key", k), zap.Error(err))
			return true
		}
		res = append(res, key)
		return true
	})
	return res
}

// Size implements the Map interface.
func (m *StoreMap[K, V]) Size() int {
	var n int
	m.store.Seek(storage.SeekRange{Prefix: m.prefix.Bytes()}, func(_, _ []byte) bool {
		n++
		return true
	})
	return n
}

// Purge drops decoded values cache, it must be called whenever the
// underlying store is changed bypassing the map (like when cached
// storage changes are reset).
func (m *StoreMap[K, V]) Purge() {
	m.cache.Purge()
}

type prefixStringer storage.KeyPrefix

func (p prefixStringer) String() string {
	return fmt.Sprintf("0x%02x", byte(p))
}
