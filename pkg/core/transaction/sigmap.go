package transaction

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// SigPair is a signature along with the public key prefix identifying the
// signer.
type SigPair struct {
	PubKeyPrefix []byte
	Ed25519      []byte
}

// SigMap is a set of signatures attached to the transaction.
type SigMap struct {
	Pairs []SigPair
}

// Field numbers of SignatureMap and SignaturePair messages.
const (
	sigMapPairField     protowire.Number = 1
	sigPairPrefixField  protowire.Number = 1
	sigPairEd25519Field protowire.Number = 3
)

func (p *SigPair) serializedSize() int {
	var n int
	if len(p.PubKeyPrefix) != 0 {
		n += protowire.SizeTag(sigPairPrefixField) + protowire.SizeBytes(len(p.PubKeyPrefix))
	}
	if len(p.Ed25519) != 0 {
		n += protowire.SizeTag(sigPairEd25519Field) + protowire.SizeBytes(len(p.Ed25519))
	}
	return n
}

// SerializedSize returns the size of the map in the protobuf wire format.
func (m *SigMap) SerializedSize() int {
	var n int
	for i := range m.Pairs {
		n += protowire.SizeTag(sigMapPairField) + protowire.SizeBytes(m.Pairs[i].serializedSize())
	}
	return n
}

// Bytes returns the map serialized in the protobuf wire format.
func (m *SigMap) Bytes() []byte {
	var b = make([]byte, 0, m.SerializedSize())
	for i := range m.Pairs {
		p := &m.Pairs[i]
		b = protowire.AppendTag(b, sigMapPairField, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(p.serializedSize()))
		if len(p.PubKeyPrefix) != 0 {
			b = protowire.AppendTag(b, sigPairPrefixField, protowire.BytesType)
			b = protowire.AppendBytes(b, p.PubKeyPrefix)
		}
		if len(p.Ed25519) != 0 {
			b = protowire.AppendTag(b, sigPairEd25519Field, protowire.BytesType)
			b = protowire.AppendBytes(b, p.Ed25519)
		}
	}
	return b
}

// HasPrefix checks whether the map has a signature for a key starting with
// the given public key bytes.
func (m *SigMap) HasPrefix(pub []byte) bool {
	for i := range m.Pairs {
		pre := m.Pairs[i].PubKeyPrefix
		if len(pre) != 0 && bytes.HasPrefix(pub, pre) {
			return true
		}
	}
	return false
}
