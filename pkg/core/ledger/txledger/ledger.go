/*
Package txledger implements a generic ledger that stages entity creations,
property changes and destructions made within a transaction and applies
them to the backing store on commit.
*/
package txledger

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Errors returned by the ledger.
var (
	// ErrTransactionInProgress is returned by Begin if the ledger already has
	// an open transaction.
	ErrTransactionInProgress = errors.New("transaction already in progress")
	// ErrNoTransaction is returned by mutators when there is no open
	// transaction.
	ErrNoTransaction = errors.New("no active transaction")
	// ErrMissingEntity is returned for keys that don't exist (or were
	// destroyed within the transaction).
	ErrMissingEntity = errors.New("missing entity")
	// ErrEntityExists is returned by Create for existing keys.
	ErrEntityExists = errors.New("entity already exists")
)

type (
	// Entity is the type of ledger values.
	Entity[A any] interface {
		Copy() A
	}

	// Property is an enumeration of the entity properties that can be
	// changed via ledger, properties are applied in their numeric order.
	Property[A any] interface {
		~int
		fmt.Stringer
		Get(entity A) any
		// Set returns an error if the value type doesn't match the
		// property.
		Set(entity A, value any) error
	}

	// Ledger is a transactional ledger of entities of type A identified by
	// keys of type K with properties P.
	Ledger[K comparable, P Property[A], A Entity[A]] struct {
		log         *zap.Logger
		newEntity   func() A
		backing     BackingStore[K, A]
		keyCmp      func(a, b K) int
		keyToString func(K) string

		inTxn     bool
		changes   map[K]map[P]any
		touched   []K
		created   map[K]struct{}
		createdL  []K
		destroyed map[K]struct{}
		destroyL  []K
	}
)

// New creates a ledger over the given backing store. newEntity returns an
// entity with default property values, it's used for new keys.
func New[K comparable, P Property[A], A Entity[A]](newEntity func() A, backing BackingStore[K, A], log *zap.Logger) *Ledger[K, P, A] {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger[K, P, A]{
		log:         log,
		newEntity:   newEntity,
		backing:     backing,
		keyToString: func(k K) string { return fmt.Sprint(k) },
	}
	l.clear()
	return l
}

// SetKeyComparator sets the order creations and destructions are applied in
// on commit. Insertion order is used by default.
func (l *Ledger[K, P, A]) SetKeyComparator(f func(a, b K) int) {
	l.keyCmp = f
}

// SetKeyToString sets the key formatting function for ChangeSetSoFar.
func (l *Ledger[K, P, A]) SetKeyToString(f func(K) string) {
	l.keyToString = f
}

// Backing returns the store this ledger is backed by.
func (l *Ledger[K, P, A]) Backing() BackingStore[K, A] {
	return l.backing
}

func (l *Ledger[K, P, A]) clear() {
	l.changes = make(map[K]map[P]any)
	l.touched = nil
	l.created = make(map[K]struct{})
	l.createdL = nil
	l.destroyed = make(map[K]struct{})
	l.destroyL = nil
}

// IsInTransaction returns true if the ledger has an open transaction.
func (l *Ledger[K, P, A]) IsInTransaction() bool {
	return l.inTxn
}

// Begin opens a new transaction.
func (l *Ledger[K, P, A]) Begin() error {
	if l.inTxn {
		return ErrTransactionInProgress
	}
	l.inTxn = true
	return nil
}

// Rollback discards all pending changes and closes the transaction.
func (l *Ledger[K, P, A]) Rollback() error {
	if !l.inTxn {
		return ErrNoTransaction
	}
	l.clear()
	l.backing.DiscardMutableRefs()
	l.inTxn = false
	return nil
}

// Commit applies pending changes to the backing store: property changes
// of existing entities first, then creations and then destructions. If the
// backing store fails, the transaction stays open and it's up to the caller
// to roll it back.
func (l *Ledger[K, P, A]) Commit() error {
	if !l.inTxn {
		return ErrNoTransaction
	}
	err := l.apply()
	if err != nil {
		l.log.Error("failed to commit ledger changes",
			zap.String("changes", l.ChangeSetSoFar()), zap.Error(err))
		return err
	}
	l.clear()
	l.inTxn = false
	return nil
}

func (l *Ledger[K, P, A]) apply() error {
	for _, k := range l.ordered(l.touched) {
		if l.isCreated(k) || l.isDestroyed(k) {
			continue
		}
		ref, err := l.backing.GetRef(k)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", l.keyToString(k), err)
		}
		err = l.applyChanges(ref, l.changes[k])
		if err != nil {
			return err
		}
		err = l.backing.Put(k, ref)
		if err != nil {
			return fmt.Errorf("failed to put %s: %w", l.keyToString(k), err)
		}
	}
	for _, k := range l.sorted(l.createdL) {
		e := l.newEntity()
		err := l.applyChanges(e, l.changes[k])
		if err != nil {
			return err
		}
		err = l.backing.Put(k, e)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", l.keyToString(k), err)
		}
	}
	for _, k := range l.sorted(l.destroyL) {
		err := l.backing.Remove(k)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", l.keyToString(k), err)
		}
	}
	return l.backing.FlushMutableRefs()
}

func (l *Ledger[K, P, A]) applyChanges(e A, changes map[P]any) error {
	for _, p := range sortedProps(changes) {
		if err := p.Set(e, changes[p]); err != nil {
			return err
		}
	}
	return nil
}

func sortedProps[P ~int](changes map[P]any) []P {
	props := make([]P, 0, len(changes))
	for p := range changes {
		props = append(props, p)
	}
	slices.Sort(props)
	return props
}

// sorted returns keys in the comparator order or as is if there is no
// comparator.
func (l *Ledger[K, P, A]) sorted(keys []K) []K {
	if l.keyCmp == nil {
		return keys
	}
	res := slices.Clone(keys)
	slices.SortStableFunc(res, l.keyCmp)
	return res
}

// ordered returns touched keys that still have changes.
func (l *Ledger[K, P, A]) ordered(keys []K) []K {
	res := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := l.changes[k]; ok {
			res = append(res, k)
		}
	}
	return l.sorted(res)
}

func (l *Ledger[K, P, A]) isCreated(k K) bool {
	_, ok := l.created[k]
	return ok
}

func (l *Ledger[K, P, A]) isDestroyed(k K) bool {
	_, ok := l.destroyed[k]
	return ok
}

// Exists returns true for keys either created within the transaction or
// present in the backing store and not destroyed within the transaction.
func (l *Ledger[K, P, A]) Exists(k K) bool {
	if l.isDestroyed(k) {
		return false
	}
	return l.isCreated(k) || l.backing.Contains(k)
}

// Create stages creation of a new entity with default property values.
func (l *Ledger[K, P, A]) Create(k K) error {
	if !l.inTxn {
		return ErrNoTransaction
	}
	if l.isCreated(k) || l.backing.Contains(k) {
		return fmt.Errorf("%w: %s", ErrEntityExists, l.keyToString(k))
	}
	l.created[k] = struct{}{}
	l.createdL = append(l.createdL, k)
	return nil
}

// Set stages a property change, the last value set wins.
func (l *Ledger[K, P, A]) Set(k K, p P, v any) error {
	if !l.inTxn {
		return ErrNoTransaction
	}
	if !l.Exists(k) {
		return fmt.Errorf("%w: %s", ErrMissingEntity, l.keyToString(k))
	}
	if err := p.Set(l.newEntity(), v); err != nil {
		return fmt.Errorf("property %s: %w", p, err)
	}
	props, ok := l.changes[k]
	if !ok {
		props = make(map[P]any)
		l.changes[k] = props
		l.touched = append(l.touched, k)
	}
	props[p] = v
	return nil
}

// Destroy stages removal of the entity. Entity created within the same
// transaction is just forgotten.
func (l *Ledger[K, P, A]) Destroy(k K) error {
	if !l.inTxn {
		return ErrNoTransaction
	}
	if !l.Exists(k) {
		return fmt.Errorf("%w: %s", ErrMissingEntity, l.keyToString(k))
	}
	delete(l.changes, k)
	if l.isCreated(k) {
		delete(l.created, k)
		l.createdL = slices.DeleteFunc(l.createdL, func(c K) bool { return c == k })
		return nil
	}
	l.destroyed[k] = struct{}{}
	l.destroyL = append(l.destroyL, k)
	return nil
}

// UndoChangesOfType drops pending changes of the given properties for all
// keys.
func (l *Ledger[K, P, A]) UndoChangesOfType(props ...P) {
	for k, changes := range l.changes {
		for _, p := range props {
			delete(changes, p)
		}
		if len(changes) == 0 {
			delete(l.changes, k)
		}
	}
}

// ChangedKeys returns keys having pending property changes (including new
// ones) in the order they were first changed.
func (l *Ledger[K, P, A]) ChangedKeys() []K {
	return l.ordered(l.touched)
}

// Get returns a detached copy of the entity with all pending changes
// applied.
func (l *Ledger[K, P, A]) Get(k K) (A, error) {
	var zero A
	if !l.Exists(k) {
		return zero, fmt.Errorf("%w: %s", ErrMissingEntity, l.keyToString(k))
	}
	var e A
	if l.isCreated(k) {
		e = l.newEntity()
	} else {
		ref, err := l.backing.GetUnsafeRef(k)
		if err != nil {
			return zero, err
		}
		e = ref.Copy()
	}
	if err := l.applyChanges(e, l.changes[k]); err != nil {
		return zero, err
	}
	return e, nil
}

// GetProperty returns the pending property value or the one stored in the
// backing store.
func (l *Ledger[K, P, A]) GetProperty(k K, p P) (any, error) {
	if !l.Exists(k) {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntity, l.keyToString(k))
	}
	if v, ok := l.changes[k][p]; ok {
		return v, nil
	}
	if l.isCreated(k) {
		return p.Get(l.newEntity()), nil
	}
	ref, err := l.backing.GetUnsafeRef(k)
	if err != nil {
		return nil, err
	}
	return p.Get(ref), nil
}

// GetAs is a typed GetProperty.
func GetAs[T any, K comparable, P Property[A], A Entity[A]](l *Ledger[K, P, A], k K, p P) (T, error) {
	var zero T
	v, err := l.GetProperty(k, p)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("property %s has type %T", p, v)
	}
	return t, nil
}

// ChangeSetSoFar describes all pending changes.
func (l *Ledger[K, P, A]) ChangeSetSoFar() string {
	var (
		sb    strings.Builder
		first = true
		sep   = func() {
			if !first {
				sb.WriteString(", ")
			}
			first = false
		}
	)
	sb.WriteByte('{')
	for _, k := range l.ordered(l.touched) {
		sep()
		if l.isCreated(k) {
			sb.WriteString("*NEW* ")
		}
		sb.WriteString(l.keyToString(k))
		sb.WriteString(": [")
		for i, p := range sortedProps(l.changes[k]) {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s -> %v", p, l.changes[k][p])
		}
		sb.WriteByte(']')
	}
	for _, k := range l.sorted(l.createdL) {
		if _, ok := l.changes[k]; ok {
			continue
		}
		sep()
		sb.WriteString("*NEW* ")
		sb.WriteString(l.keyToString(k))
	}
	for _, k := range l.sorted(l.destroyL) {
		sep()
		sb.WriteString("*DEAD* ")
		sb.WriteString(l.keyToString(k))
	}
	sb.WriteByte('}')
	return sb.String()
}
