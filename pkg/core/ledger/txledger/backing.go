package txledger

// BackingStore is the storage the ledger stages its changes against.
type BackingStore[K comparable, A any] interface {
	// GetRef returns a mutable reference to the entity, the same reference
	// is returned for the same key until FlushMutableRefs or
	// DiscardMutableRefs is called.
	GetRef(id K) (A, error)
	// GetUnsafeRef returns the entity that must not be mutated.
	GetUnsafeRef(id K) (A, error)
	// Put stores a new entity or writes back the reference obtained from
	// GetRef for the existing one.
	Put(id K, entity A) error
	Remove(id K) error
	Contains(id K) bool
	// IDSet returns known keys in ascending order.
	IDSet() []K
	// FlushMutableRefs writes all references obtained with GetRef back
	// into the persistent map.
	FlushMutableRefs() error
	// DiscardMutableRefs forgets references obtained with GetRef without
	// writing them back.
	DiscardMutableRefs()
}
