package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// KeyPrefix constants.
const (
	// STAccount is used for account entities keyed by entity id.
	STAccount KeyPrefix = 0x10
	// STToken is used for token definitions.
	STToken KeyPrefix = 0x11
	// STTokenRel is used for account-token relationships keyed by
	// account id followed by token id.
	STTokenRel KeyPrefix = 0x12
	// STSchedule is used for scheduled transactions.
	STSchedule KeyPrefix = 0x13
	// STFileMeta and STFileData store file attributes and file contents.
	STFileMeta KeyPrefix = 0x14
	STFileData KeyPrefix = 0x15
	// SYSEntitySeq stores the next entity number to be allocated.
	SYSEntitySeq KeyPrefix = 0xc0
	SYSVersion   KeyPrefix = 0xf0
)

// SeekRange represents options for Store.Seek operation.
type SeekRange struct {
	// Prefix denotes the Seek's lookup key.
	// Empty Prefix means seeking through all keys in the DB starting from
	// the Start if specified.
	Prefix []byte
	// Start denotes value appended to the Prefix to start Seek from.
	// Seeking starting from some key includes this key to the result;
	// if no matching key was found then next suitable key is picked up.
	// Start may be empty. Empty Start means seeking through all keys in
	// the DB with matching Prefix.
	Start []byte
	// Backwards denotes whether Seek direction should be reversed, i.e.
	// whether seeking should be performed in a descending way.
	// Backwards can be safely combined with Prefix and Start.
	Backwards bool
}

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

type (
	// Store is the underlying KV backend for the ledger data, it's
	// not intended to be used directly, you wrap it with some memory cache
	// layer most of the time.
	Store interface {
		Get([]byte) ([]byte, error)
		// PutChangeSet allows to push prepared changeset to the Store,
		// nil values denote deletions.
		PutChangeSet(puts map[string][]byte) error
		// Seek can guarantee that provided key (k) and value (v) are the only valid until the next call to f.
		// Seek continues iteration until false is returned from f.
		// Key and value slices should not be modified.
		// Seek can guarantee that key-value items are sorted by key in ascending way.
		Seek(rng SeekRange, f func(k, v []byte) bool)
		Close() error
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8

	// KeyValue represents key-value pair.
	KeyValue struct {
		Key   []byte
		Value []byte
	}
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

// AppendKey returns a new key consisting of the prefix followed by the given
// parts.
func (k KeyPrefix) AppendKey(parts ...[]byte) []byte {
	var l = 1
	for _, p := range parts {
		l += len(p)
	}
	key := make([]byte, 1, l)
	key[0] = byte(k)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

func seekRangeToPrefixes(sr SeekRange) *util.Range {
	var (
		rang  *util.Range
		start = make([]byte, len(sr.Prefix)+len(sr.Start))
	)
	copy(start, sr.Prefix)
	copy(start[len(sr.Prefix):], sr.Start)

	if !sr.Backwards {
		rang = util.BytesPrefix(sr.Prefix)
		rang.Start = start
	} else {
		rang = util.BytesPrefix(start)
		rang.Start = sr.Prefix
	}
	return rang
}

// keyInRange checks whether the key satisfies the given SeekRange.
func keyInRange(rng SeekRange, key []byte) bool {
	if !bytes.HasPrefix(key, rng.Prefix) {
		return false
	}
	if len(rng.Start) == 0 {
		return true
	}
	cmp := bytes.Compare(key[len(rng.Prefix):], rng.Start)
	if rng.Backwards {
		return cmp <= 0
	}
	return cmp >= 0
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB:
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}
