/*
Package keys implements the ledger key model: simple Ed25519 and ECDSA
secp256k1 public keys combined into key lists and threshold keys.
*/
package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/ledger-services/pkg/io"
)

// Kind is the type of the key.
type Kind byte

// Supported key kinds.
const (
	KindEd25519 Kind = iota + 1
	KindECDSASecp256k1
	KindThreshold
	KindList
)

const (
	// Ed25519Size is the size of the Ed25519 public key.
	Ed25519Size = ed25519.PublicKeySize
	// Secp256k1Size is the size of the compressed secp256k1 public key.
	Secp256k1Size = 33
	// MaxDepth is the maximum nesting level of complex keys.
	MaxDepth = 15
	// maxListLen limits the number of keys in a list on decoding.
	maxListLen = 1024
)

var (
	// ErrInvalidKey is returned when the key structure is not acceptable.
	ErrInvalidKey = errors.New("invalid key")
	// ErrKeyTooDeep is returned for keys nested deeper than MaxDepth.
	ErrKeyTooDeep = errors.New("key nested too deep")
)

// Key is a public key that may be simple (Ed25519, ECDSA) or complex
// (a list of keys all of which must sign or a threshold key requiring at
// least Threshold of its keys to sign).
type Key struct {
	Kind      Kind
	PublicKey []byte
	Threshold uint32
	Keys      []*Key
}

// NewEd25519 creates a simple Ed25519 key.
func NewEd25519(pub ed25519.PublicKey) *Key {
	return &Key{Kind: KindEd25519, PublicKey: bytes.Clone(pub)}
}

// NewEd25519FromString decodes a hex-encoded Ed25519 public key.
func NewEd25519FromString(s string) (*Key, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != Ed25519Size {
		return nil, fmt.Errorf("%w: Ed25519 key length %d", ErrInvalidKey, len(b))
	}
	return &Key{Kind: KindEd25519, PublicKey: b}, nil
}

// NewList creates a key list out of the given keys.
func NewList(keys ...*Key) *Key {
	return &Key{Kind: KindList, Keys: keys}
}

// NewThreshold creates a threshold key.
func NewThreshold(threshold uint32, keys ...*Key) *Key {
	return &Key{Kind: KindThreshold, Threshold: threshold, Keys: keys}
}

// IsSimple returns true for Ed25519 and ECDSA keys.
func (k *Key) IsSimple() bool {
	return k.Kind == KindEd25519 || k.Kind == KindECDSASecp256k1
}

// IsEmpty returns true for nil keys and for complex keys without any
// simple key inside.
func (k *Key) IsEmpty() bool {
	if k == nil {
		return true
	}
	if k.IsSimple() {
		return len(k.PublicKey) == 0
	}
	for _, sub := range k.Keys {
		if !sub.IsEmpty() {
			return false
		}
	}
	return true
}

// Validate checks the key structure, it returns nil for keys that can be
// used as account, token or file keys.
func (k *Key) Validate() error {
	return k.validate(0)
}

func (k *Key) validate(depth int) error {
	if depth > MaxDepth {
		return ErrKeyTooDeep
	}
	if k == nil {
		return fmt.Errorf("%w: nil key", ErrInvalidKey)
	}
	switch k.Kind {
	case KindEd25519:
		if len(k.PublicKey) != Ed25519Size {
			return fmt.Errorf("%w: Ed25519 key length %d", ErrInvalidKey, len(k.PublicKey))
		}
	case KindECDSASecp256k1:
		if len(k.PublicKey) != Secp256k1Size || (k.PublicKey[0] != 0x02 && k.PublicKey[0] != 0x03) {
			return fmt.Errorf("%w: bad secp256k1 key", ErrInvalidKey)
		}
	case KindList, KindThreshold:
		if len(k.Keys) == 0 {
			return fmt.Errorf("%w: empty key list", ErrInvalidKey)
		}
		if k.Kind == KindThreshold && (k.Threshold == 0 || int(k.Threshold) > len(k.Keys)) {
			return fmt.Errorf("%w: threshold %d of %d", ErrInvalidKey, k.Threshold, len(k.Keys))
		}
		for _, sub := range k.Keys {
			if err := sub.validate(depth + 1); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidKey, k.Kind)
	}
	return nil
}

// NumSimpleKeys returns the number of simple keys in the whole key tree.
func (k *Key) NumSimpleKeys() int {
	if k == nil {
		return 0
	}
	if k.IsSimple() {
		return 1
	}
	var n int
	for _, sub := range k.Keys {
		n += sub.NumSimpleKeys()
	}
	return n
}

// CountMetadata returns the number of simple keys and the number of
// threshold keys in the tree. These two numbers are what storage size
// estimations are based on.
func (k *Key) CountMetadata() (simple int, thresholds int) {
	if k == nil {
		return 0, 0
	}
	switch k.Kind {
	case KindList, KindThreshold:
		if k.Kind == KindThreshold {
			thresholds++
		}
		for _, sub := range k.Keys {
			s, t := sub.CountMetadata()
			simple += s
			thresholds += t
		}
	default:
		simple++
	}
	return simple, thresholds
}

// Equal returns true if both keys have the same structure and contents.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.Kind != other.Kind || k.Threshold != other.Threshold ||
		!bytes.Equal(k.PublicKey, other.PublicKey) || len(k.Keys) != len(other.Keys) {
		return false
	}
	for i := range k.Keys {
		if !k.Keys[i].Equal(other.Keys[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the key.
func (k *Key) Copy() *Key {
	if k == nil {
		return nil
	}
	res := &Key{
		Kind:      k.Kind,
		Threshold: k.Threshold,
	}
	if k.PublicKey != nil {
		res.PublicKey = bytes.Clone(k.PublicKey)
	}
	if k.Keys != nil {
		res.Keys = make([]*Key, len(k.Keys))
		for i := range k.Keys {
			res.Keys[i] = k.Keys[i].Copy()
		}
	}
	return res
}

// String implements the fmt.Stringer interface.
func (k *Key) String() string {
	if k == nil {
		return "<nil>"
	}
	switch k.Kind {
	case KindEd25519:
		return "ed25519:" + hex.EncodeToString(k.PublicKey)
	case KindECDSASecp256k1:
		return "secp256k1:" + hex.EncodeToString(k.PublicKey)
	}
	subs := make([]string, len(k.Keys))
	for i := range k.Keys {
		subs[i] = k.Keys[i].String()
	}
	if k.Kind == KindThreshold {
		return fmt.Sprintf("threshold(%d)[%s]", k.Threshold, strings.Join(subs, ", "))
	}
	return "list[" + strings.Join(subs, ", ") + "]"
}

// EncodeBinary implements the io.Serializable interface.
func (k *Key) EncodeBinary(w *io.BinWriter) {
	k.encode(w, 0)
}

func (k *Key) encode(w *io.BinWriter, depth int) {
	if depth > MaxDepth {
		w.Err = ErrKeyTooDeep
		return
	}
	w.WriteB(byte(k.Kind))
	switch k.Kind {
	case KindEd25519, KindECDSASecp256k1:
		w.WriteVarBytes(k.PublicKey)
	default:
		if k.Kind == KindThreshold {
			w.WriteU32LE(k.Threshold)
		}
		w.WriteVarUint(uint64(len(k.Keys)))
		for _, sub := range k.Keys {
			sub.encode(w, depth+1)
		}
	}
}

// DecodeBinary implements the io.Serializable interface.
func (k *Key) DecodeBinary(r *io.BinReader) {
	k.decode(r, 0)
}

func (k *Key) decode(r *io.BinReader, depth int) {
	if depth > MaxDepth {
		r.Err = ErrKeyTooDeep
		return
	}
	k.Kind = Kind(r.ReadB())
	switch k.Kind {
	case KindEd25519, KindECDSASecp256k1:
		k.PublicKey = r.ReadVarBytes(Secp256k1Size)
	case KindThreshold, KindList:
		if k.Kind == KindThreshold {
			k.Threshold = r.ReadU32LE()
		}
		n := r.ReadVarUint()
		if n > maxListLen {
			r.Err = fmt.Errorf("%w: %d keys in a list", ErrInvalidKey, n)
			return
		}
		k.Keys = make([]*Key, n)
		for i := range k.Keys {
			k.Keys[i] = new(Key)
			k.Keys[i].decode(r, depth+1)
		}
	default:
		if r.Err == nil {
			r.Err = fmt.Errorf("%w: unknown kind %d", ErrInvalidKey, k.Kind)
		}
	}
}

// EncodeOptional writes a presence flag followed by the key if it's not nil.
func EncodeOptional(w *io.BinWriter, k *Key) {
	w.WriteBool(k != nil)
	if k != nil {
		k.EncodeBinary(w)
	}
}

// DecodeOptional reads a key written by EncodeOptional.
func DecodeOptional(r *io.BinReader) *Key {
	if !r.ReadBool() {
		return nil
	}
	k := new(Key)
	k.DecodeBinary(r)
	return k
}
