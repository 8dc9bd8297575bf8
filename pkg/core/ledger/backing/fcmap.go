/*
Package backing implements txledger.BackingStore over fcmap.Map.
*/
package backing

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nspcc-dev/ledger-services/pkg/core/fcmap"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"go.uber.org/zap"
)

var (
	// ErrNotMutableRef is returned by Put when an existing entity is written
	// with a value that is not the reference obtained from GetRef.
	ErrNotMutableRef = errors.New("value is not the mutable reference")
	// ErrReadOnly is returned by the mutating methods of Pure.
	ErrReadOnly = errors.New("read-only backing store")
)

// FCMap is a mutable BackingStore. It tracks the set of existing keys by
// itself, so changes made to the map bypassing it require
// RebuildFromSources call.
type FCMap[K fcmap.Key, V fcmap.Value[V]] struct {
	delegate fcmap.Map[K, V]
	cmp      func(a, b K) int
	log      *zap.Logger

	existing map[K]struct{}
	cache    map[K]V
}

// NewFCMap creates a backing store over the given map, cmp defines the
// order mutable references are flushed in.
func NewFCMap[K fcmap.Key, V fcmap.Value[V]](m fcmap.Map[K, V], cmp func(a, b K) int, log *zap.Logger) *FCMap[K, V] {
	if log == nil {
		log = zap.NewNop()
	}
	b := &FCMap[K, V]{
		delegate: m,
		cmp:      cmp,
		log:      log,
	}
	b.RebuildFromSources()
	return b
}

// RebuildFromSources reloads the set of existing keys from the map and drops
// all cached references.
func (b *FCMap[K, V]) RebuildFromSources() {
	keys := b.delegate.KeySet()
	b.existing = make(map[K]struct{}, len(keys))
	for _, k := range keys {
		b.existing[k] = struct{}{}
	}
	b.cache = make(map[K]V)
}

// GetRef implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) GetRef(id K) (V, error) {
	if ref, ok := b.cache[id]; ok {
		return ref, nil
	}
	ref, ok := b.delegate.GetForModify(id)
	if !ok {
		return ref, fmt.Errorf("%w: %v", txledger.ErrMissingEntity, id)
	}
	b.cache[id] = ref
	return ref, nil
}

// GetUnsafeRef implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) GetUnsafeRef(id K) (V, error) {
	v, ok := b.delegate.Get(id)
	if !ok {
		return v, fmt.Errorf("%w: %v", txledger.ErrMissingEntity, id)
	}
	return v, nil
}

// Put implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) Put(id K, v V) error {
	if _, ok := b.existing[id]; !ok {
		err := b.delegate.Put(id, v)
		if err != nil {
			return err
		}
		b.existing[id] = struct{}{}
		return nil
	}
	ref, ok := b.cache[id]
	if !ok || any(ref) != any(v) {
		return fmt.Errorf("%w: %v", ErrNotMutableRef, id)
	}
	return nil
}

// Remove implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) Remove(id K) error {
	delete(b.existing, id)
	delete(b.cache, id)
	return b.delegate.Remove(id)
}

// Contains implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) Contains(id K) bool {
	_, ok := b.existing[id]
	return ok
}

// IDSet implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) IDSet() []K {
	res := make([]K, 0, len(b.existing))
	for k := range b.existing {
		res = append(res, k)
	}
	slices.SortFunc(res, b.cmp)
	return res
}

// FlushMutableRefs implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) FlushMutableRefs() error {
	ids := make([]K, 0, len(b.cache))
	for k := range b.cache {
		ids = append(ids, k)
	}
	slices.SortFunc(ids, b.cmp)
	for _, id := range ids {
		err := b.delegate.Replace(id, b.cache[id])
		if err != nil {
			return fmt.Errorf("failed to flush %v: %w", id, err)
		}
	}
	if len(ids) > 0 {
		b.log.Debug("flushed mutable refs", zap.Int("count", len(ids)))
	}
	b.cache = make(map[K]V)
	return nil
}

// DiscardMutableRefs implements the txledger.BackingStore interface.
func (b *FCMap[K, V]) DiscardMutableRefs() {
	b.cache = make(map[K]V)
}
