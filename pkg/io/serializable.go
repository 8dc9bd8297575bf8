package io

import "errors"

var errTrailingData = errors.New("unexpected trailing data")

type (
	// Serializable defines the binary encoding/decoding interface. Errors are
	// returned via BinReader/BinWriter Err field. These functions must have safe
	// behavior when the passed BinReader/BinWriter with Err is already set.
	Serializable interface {
		DecodeBinary(*BinReader)
		EncodeBinary(*BinWriter)
	}

	decodable interface {
		DecodeBinary(*BinReader)
	}

	encodable interface {
		EncodeBinary(*BinWriter)
	}
)

// ToBytes serializes the given item into a fresh byte slice.
func ToBytes(item encodable) ([]byte, error) {
	w := NewBufBinWriter()
	item.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromBytes deserializes the given byte slice into item, trailing data is
// treated as an error.
func FromBytes(data []byte, item decodable) error {
	r := NewBinReaderFromBuf(data)
	item.DecodeBinary(r)
	if r.Err != nil {
		return r.Err
	}
	if r.ReadB(); r.Err == nil {
		return errTrailingData
	}
	return nil
}
