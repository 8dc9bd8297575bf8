/*
Package entity contains the ledger entities (accounts, tokens, token
relationships, schedules and file metadata) along with their identifiers.
*/
package entity

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nspcc-dev/ledger-services/pkg/io"
)

// IDSize is the size of the binary ID representation.
const IDSize = 24

// ErrInvalidID is returned when ID can't be parsed.
var ErrInvalidID = errors.New("invalid entity id")

// ID identifies any ledger entity as shard.realm.num triple.
type ID struct {
	Shard int64
	Realm int64
	Num   int64
}

// RelKey identifies account to token relationship.
type RelKey struct {
	Account ID
	Token   ID
}

// NewID is a shortcut for ID creation.
func NewID(shard, realm, num int64) ID {
	return ID{Shard: shard, Realm: realm, Num: num}
}

// ParseID parses "shard.realm.num" string.
func ParseID(s string) (ID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	var nums [3]int64
	for i := range parts {
		n, err := strconv.ParseInt(parts[i], 10, 64)
		if err != nil || n < 0 {
			return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		nums[i] = n
	}
	return ID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

// IsZero returns true for 0.0.0 which is never a valid entity.
func (id ID) IsZero() bool {
	return id == ID{}
}

// String implements the fmt.Stringer interface.
func (id ID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

// Compare returns -1, 0 or 1 comparing shards, realms and numbers in that
// order.
func Compare(a, b ID) int {
	if c := cmp.Compare(a.Shard, b.Shard); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Realm, b.Realm); c != 0 {
		return c
	}
	return cmp.Compare(a.Num, b.Num)
}

// Bytes returns big-endian representation of the ID, byte order of it
// matches Compare for non-negative IDs.
func (id ID) Bytes() []byte {
	b := make([]byte, IDSize)
	binary.BigEndian.PutUint64(b, uint64(id.Shard))
	binary.BigEndian.PutUint64(b[8:], uint64(id.Realm))
	binary.BigEndian.PutUint64(b[16:], uint64(id.Num))
	return b
}

// IDFromBytes is the reverse of ID.Bytes.
func IDFromBytes(b []byte) (ID, error) {
	if len(b) != IDSize {
		return ID{}, fmt.Errorf("%w: %d bytes", ErrInvalidID, len(b))
	}
	return ID{
		Shard: int64(binary.BigEndian.Uint64(b)),
		Realm: int64(binary.BigEndian.Uint64(b[8:])),
		Num:   int64(binary.BigEndian.Uint64(b[16:])),
	}, nil
}

// EncodeBinary implements the io.Serializable interface.
func (id *ID) EncodeBinary(w *io.BinWriter) {
	w.WriteI64LE(id.Shard)
	w.WriteI64LE(id.Realm)
	w.WriteI64LE(id.Num)
}

// DecodeBinary implements the io.Serializable interface.
func (id *ID) DecodeBinary(r *io.BinReader) {
	id.Shard = r.ReadI64LE()
	id.Realm = r.ReadI64LE()
	id.Num = r.ReadI64LE()
}

// String implements the fmt.Stringer interface.
func (k RelKey) String() string {
	return k.Account.String() + "-" + k.Token.String()
}

// CompareRel orders relationships by account and then by token.
func CompareRel(a, b RelKey) int {
	if c := Compare(a.Account, b.Account); c != 0 {
		return c
	}
	return Compare(a.Token, b.Token)
}

// Bytes returns account bytes followed by token bytes.
func (k RelKey) Bytes() []byte {
	return append(k.Account.Bytes(), k.Token.Bytes()...)
}

// RelKeyFromBytes is the reverse of RelKey.Bytes.
func RelKeyFromBytes(b []byte) (RelKey, error) {
	if len(b) != 2*IDSize {
		return RelKey{}, fmt.Errorf("%w: %d bytes", ErrInvalidID, len(b))
	}
	acc, _ := IDFromBytes(b[:IDSize])
	tok, _ := IDFromBytes(b[IDSize:])
	return RelKey{Account: acc, Token: tok}, nil
}
