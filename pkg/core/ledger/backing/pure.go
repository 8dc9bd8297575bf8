package backing

import (
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/fcmap"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
)

// Pure is a read-only BackingStore used by queries.
type Pure[K fcmap.Key, V fcmap.Value[V]] struct {
	delegate fcmap.Map[K, V]
}

// NewPure creates a read-only view of the map.
func NewPure[K fcmap.Key, V fcmap.Value[V]](m fcmap.Map[K, V]) *Pure[K, V] {
	return &Pure[K, V]{delegate: m}
}

// Get returns the value for the given key.
func (p *Pure[K, V]) Get(id K) (V, bool) {
	return p.delegate.Get(id)
}

// GetRef implements the txledger.BackingStore interface, mutable references
// can't be obtained from the read-only store.
func (p *Pure[K, V]) GetRef(id K) (V, error) {
	var zero V
	return zero, ErrReadOnly
}

// GetUnsafeRef implements the txledger.BackingStore interface.
func (p *Pure[K, V]) GetUnsafeRef(id K) (V, error) {
	v, ok := p.delegate.Get(id)
	if !ok {
		return v, fmt.Errorf("%w: %v", txledger.ErrMissingEntity, id)
	}
	return v, nil
}

// Put implements the txledger.BackingStore interface, it always fails.
func (p *Pure[K, V]) Put(K, V) error { return ErrReadOnly }

// Remove implements the txledger.BackingStore interface, it always fails.
func (p *Pure[K, V]) Remove(K) error { return ErrReadOnly }

// Contains implements the txledger.BackingStore interface.
func (p *Pure[K, V]) Contains(id K) bool {
	return p.delegate.ContainsKey(id)
}

// IDSet implements the txledger.BackingStore interface.
func (p *Pure[K, V]) IDSet() []K {
	return p.delegate.KeySet()
}

// FlushMutableRefs implements the txledger.BackingStore interface, there is
// never anything to flush.
func (p *Pure[K, V]) FlushMutableRefs() error { return nil }

// DiscardMutableRefs implements the txledger.BackingStore interface.
func (p *Pure[K, V]) DiscardMutableRefs() {}
