package entity

import (
	"bytes"

	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/io"
)

// MaxScheduledBodySize limits the size of the scheduled transaction body.
const MaxScheduledBodySize = 6 * 1024

// Schedule is a scheduled transaction waiting for signatures.
type Schedule struct {
	// TransactionBody is the serialized scheduled transaction body, schedules
	// are deduplicated by it.
	TransactionBody []byte
	Payer           ID
	SchedulingPayer ID
	AdminKey        *keys.Key
	Memo            string
	Expiry          int64
	Deleted         bool
	Executed        bool
}

// Copy returns a deep copy of the schedule.
func (s *Schedule) Copy() *Schedule {
	res := *s
	res.TransactionBody = bytes.Clone(s.TransactionBody)
	res.AdminKey = s.AdminKey.Copy()
	return &res
}

// EncodeBinary implements the io.Serializable interface.
func (s *Schedule) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(s.TransactionBody)
	s.Payer.EncodeBinary(w)
	s.SchedulingPayer.EncodeBinary(w)
	keys.EncodeOptional(w, s.AdminKey)
	w.WriteString(s.Memo)
	w.WriteI64LE(s.Expiry)
	w.WriteBool(s.Deleted)
	w.WriteBool(s.Executed)
}

// DecodeBinary implements the io.Serializable interface.
func (s *Schedule) DecodeBinary(r *io.BinReader) {
	s.TransactionBody = r.ReadVarBytes(MaxScheduledBodySize)
	s.Payer.DecodeBinary(r)
	s.SchedulingPayer.DecodeBinary(r)
	s.AdminKey = keys.DecodeOptional(r)
	s.Memo = r.ReadString(MaxMemoSize)
	s.Expiry = r.ReadI64LE()
	s.Deleted = r.ReadBool()
	s.Executed = r.ReadBool()
}
