package entity

import (
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/io"
)

// Token is a fungible token definition.
type Token struct {
	Name          string
	Symbol        string
	Decimals      uint32
	TotalSupply   int64
	Treasury      ID
	AdminKey      *keys.Key
	KycKey        *keys.Key
	FreezeKey     *keys.Key
	SupplyKey     *keys.Key
	WipeKey       *keys.Key
	FreezeDefault bool
	// KycGrantedByDefault is set for tokens without KYC key, all
	// relationships with such tokens are KYC-granted.
	KycGrantedByDefault bool
	Expiry              int64
	AutoRenewAccount    ID
	AutoRenewPeriod     int64
	Deleted             bool
}

// Copy returns a deep copy of the token.
func (t *Token) Copy() *Token {
	res := *t
	res.AdminKey = t.AdminKey.Copy()
	res.KycKey = t.KycKey.Copy()
	res.FreezeKey = t.FreezeKey.Copy()
	res.SupplyKey = t.SupplyKey.Copy()
	res.WipeKey = t.WipeKey.Copy()
	return &res
}

// HasAdminKey returns false for immutable tokens.
func (t *Token) HasAdminKey() bool { return t.AdminKey != nil }

// EncodeBinary implements the io.Serializable interface.
func (t *Token) EncodeBinary(w *io.BinWriter) {
	w.WriteString(t.Name)
	w.WriteString(t.Symbol)
	w.WriteU32LE(t.Decimals)
	w.WriteI64LE(t.TotalSupply)
	t.Treasury.EncodeBinary(w)
	for _, k := range []*keys.Key{t.AdminKey, t.KycKey, t.FreezeKey, t.SupplyKey, t.WipeKey} {
		keys.EncodeOptional(w, k)
	}
	w.WriteBool(t.FreezeDefault)
	w.WriteBool(t.KycGrantedByDefault)
	w.WriteI64LE(t.Expiry)
	t.AutoRenewAccount.EncodeBinary(w)
	w.WriteI64LE(t.AutoRenewPeriod)
	w.WriteBool(t.Deleted)
}

// DecodeBinary implements the io.Serializable interface.
func (t *Token) DecodeBinary(r *io.BinReader) {
	t.Name = r.ReadString(MaxMemoSize)
	t.Symbol = r.ReadString(MaxMemoSize)
	t.Decimals = r.ReadU32LE()
	t.TotalSupply = r.ReadI64LE()
	t.Treasury.DecodeBinary(r)
	t.AdminKey = keys.DecodeOptional(r)
	t.KycKey = keys.DecodeOptional(r)
	t.FreezeKey = keys.DecodeOptional(r)
	t.SupplyKey = keys.DecodeOptional(r)
	t.WipeKey = keys.DecodeOptional(r)
	t.FreezeDefault = r.ReadBool()
	t.KycGrantedByDefault = r.ReadBool()
	t.Expiry = r.ReadI64LE()
	t.AutoRenewAccount.DecodeBinary(r)
	t.AutoRenewPeriod = r.ReadI64LE()
	t.Deleted = r.ReadBool()
}

// TokenRel is the account to token relationship.
type TokenRel struct {
	Balance    int64
	Frozen     bool
	KycGranted bool
}

// Copy implements the ledger entity interface.
func (r *TokenRel) Copy() *TokenRel {
	res := *r
	return &res
}

// EncodeBinary implements the io.Serializable interface.
func (r *TokenRel) EncodeBinary(w *io.BinWriter) {
	w.WriteI64LE(r.Balance)
	w.WriteBool(r.Frozen)
	w.WriteBool(r.KycGranted)
}

// DecodeBinary implements the io.Serializable interface.
func (r *TokenRel) DecodeBinary(br *io.BinReader) {
	r.Balance = br.ReadI64LE()
	r.Frozen = br.ReadBool()
	r.KycGranted = br.ReadBool()
}
