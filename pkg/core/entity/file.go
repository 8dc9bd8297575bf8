package entity

import (
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/io"
)

// FileMeta holds file attributes, contents are stored separately.
type FileMeta struct {
	// WACL is the key list any of which can modify the file, nil (or
	// empty list) for immutable files.
	WACL    *keys.Key
	Memo    string
	Expiry  int64
	Deleted bool
}

// Copy returns a deep copy of file attributes.
func (f *FileMeta) Copy() *FileMeta {
	res := *f
	res.WACL = f.WACL.Copy()
	return &res
}

// EncodeBinary implements the io.Serializable interface.
func (f *FileMeta) EncodeBinary(w *io.BinWriter) {
	keys.EncodeOptional(w, f.WACL)
	w.WriteString(f.Memo)
	w.WriteI64LE(f.Expiry)
	w.WriteBool(f.Deleted)
}

// DecodeBinary implements the io.Serializable interface.
func (f *FileMeta) DecodeBinary(r *io.BinReader) {
	f.WACL = keys.DecodeOptional(r)
	f.Memo = r.ReadString(MaxMemoSize)
	f.Expiry = r.ReadI64LE()
	f.Deleted = r.ReadBool()
}
