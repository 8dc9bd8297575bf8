package entity

import (
	"slices"

	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/io"
)

// MaxMemoSize limits memo length on decoding.
const MaxMemoSize = 1024

// Account is a ledger account (possibly a smart contract one).
type Account struct {
	Key                 *keys.Key
	Memo                string
	Proxy               ID
	Expiry              int64
	AutoRenewPeriod     int64
	Deleted             bool
	ReceiverSigRequired bool
	SmartContract       bool
	Balance             int64
	// Tokens is a sorted list of associated tokens.
	Tokens []ID
}

// Copy implements the ledger entity interface.
func (a *Account) Copy() *Account {
	res := *a
	res.Key = a.Key.Copy()
	res.Tokens = slices.Clone(a.Tokens)
	return &res
}

// HasToken checks whether the token is associated with the account.
func (a *Account) HasToken(token ID) bool {
	_, ok := slices.BinarySearchFunc(a.Tokens, token, Compare)
	return ok
}

// AddToken associates the token keeping the list sorted. It returns false if
// the token was already there.
func (a *Account) AddToken(token ID) bool {
	i, ok := slices.BinarySearchFunc(a.Tokens, token, Compare)
	if ok {
		return false
	}
	a.Tokens = slices.Insert(a.Tokens, i, token)
	return true
}

// RemoveToken dissociates the token, it returns false if there was no such
// token.
func (a *Account) RemoveToken(token ID) bool {
	i, ok := slices.BinarySearchFunc(a.Tokens, token, Compare)
	if !ok {
		return false
	}
	a.Tokens = slices.Delete(a.Tokens, i, i+1)
	return true
}

// EncodeBinary implements the io.Serializable interface.
func (a *Account) EncodeBinary(w *io.BinWriter) {
	keys.EncodeOptional(w, a.Key)
	w.WriteString(a.Memo)
	a.Proxy.EncodeBinary(w)
	w.WriteI64LE(a.Expiry)
	w.WriteI64LE(a.AutoRenewPeriod)
	w.WriteBool(a.Deleted)
	w.WriteBool(a.ReceiverSigRequired)
	w.WriteBool(a.SmartContract)
	w.WriteI64LE(a.Balance)
	w.WriteVarUint(uint64(len(a.Tokens)))
	for i := range a.Tokens {
		a.Tokens[i].EncodeBinary(w)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (a *Account) DecodeBinary(r *io.BinReader) {
	a.Key = keys.DecodeOptional(r)
	a.Memo = r.ReadString(MaxMemoSize)
	a.Proxy.DecodeBinary(r)
	a.Expiry = r.ReadI64LE()
	a.AutoRenewPeriod = r.ReadI64LE()
	a.Deleted = r.ReadBool()
	a.ReceiverSigRequired = r.ReadBool()
	a.SmartContract = r.ReadBool()
	a.Balance = r.ReadI64LE()
	n := r.ReadArrayLen()
	if n == 0 {
		a.Tokens = nil
		return
	}
	a.Tokens = make([]ID, n)
	for i := range a.Tokens {
		a.Tokens[i].DecodeBinary(r)
	}
}
