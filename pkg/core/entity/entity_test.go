package entity

import (
	"bytes"
	"slices"
	"testing"

	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() *keys.Key {
	return keys.NewEd25519(bytes.Repeat([]byte{7}, keys.Ed25519Size))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("0.0.111")
	require.NoError(t, err)
	require.Equal(t, NewID(0, 0, 111), id)
	require.Equal(t, "0.0.111", id.String())

	for _, bad := range []string{"", "1.2", "1.2.x", "1.-2.3", "1.2.3.4"} {
		_, err = ParseID(bad)
		require.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestIDOrdering(t *testing.T) {
	ids := []ID{NewID(1, 0, 0), NewID(0, 1, 0), NewID(0, 0, 300), NewID(0, 0, 2)}
	byCompare := slices.Clone(ids)
	slices.SortFunc(byCompare, Compare)
	byBytes := slices.Clone(ids)
	slices.SortFunc(byBytes, func(a, b ID) int { return bytes.Compare(a.Bytes(), b.Bytes()) })
	require.Equal(t, byCompare, byBytes)
	require.Equal(t, NewID(0, 0, 2), byCompare[0])

	for _, id := range ids {
		actual, err := IDFromBytes(id.Bytes())
		require.NoError(t, err)
		require.Equal(t, id, actual)
	}
	_, err := IDFromBytes([]byte{1})
	require.Error(t, err)
}

func TestRelKey(t *testing.T) {
	k := RelKey{Account: NewID(0, 0, 1001), Token: NewID(0, 0, 2002)}
	actual, err := RelKeyFromBytes(k.Bytes())
	require.NoError(t, err)
	require.Equal(t, k, actual)
	require.Equal(t, "0.0.1001-0.0.2002", k.String())
	require.Equal(t, -1, CompareRel(k, RelKey{Account: k.Account, Token: NewID(0, 0, 2003)}))
}

func TestAccountTokens(t *testing.T) {
	a := new(Account)
	require.True(t, a.AddToken(NewID(0, 0, 5)))
	require.True(t, a.AddToken(NewID(0, 0, 3)))
	require.False(t, a.AddToken(NewID(0, 0, 5)))
	require.Equal(t, []ID{NewID(0, 0, 3), NewID(0, 0, 5)}, a.Tokens)
	require.True(t, a.HasToken(NewID(0, 0, 3)))
	require.True(t, a.RemoveToken(NewID(0, 0, 3)))
	require.False(t, a.RemoveToken(NewID(0, 0, 3)))
	require.False(t, a.HasToken(NewID(0, 0, 3)))
}

func TestEntityEncoding(t *testing.T) {
	acc := &Account{
		Key:             testKey(),
		Memo:            "memo",
		Proxy:           NewID(0, 0, 3),
		Expiry:          1_234_567,
		AutoRenewPeriod: 7776000,
		Balance:         100,
		Tokens:          []ID{NewID(0, 0, 9)},
	}
	actualAcc := new(Account)
	data, err := io.ToBytes(acc)
	require.NoError(t, err)
	require.NoError(t, io.FromBytes(data, actualAcc))
	require.Equal(t, acc, actualAcc)

	tok := &Token{Name: "Coin", Symbol: "C", TotalSupply: 10, Treasury: NewID(0, 0, 2), AdminKey: testKey(), FreezeDefault: true}
	actualTok := new(Token)
	data, err = io.ToBytes(tok)
	require.NoError(t, err)
	require.NoError(t, io.FromBytes(data, actualTok))
	require.Equal(t, tok, actualTok)

	sch := &Schedule{TransactionBody: []byte{1, 2, 3}, Payer: NewID(0, 0, 2), Memo: "later", Expiry: 5}
	actualSch := new(Schedule)
	data, err = io.ToBytes(sch)
	require.NoError(t, err)
	require.NoError(t, io.FromBytes(data, actualSch))
	require.Equal(t, sch, actualSch)

	meta := &FileMeta{WACL: keys.NewList(testKey()), Memo: "f", Expiry: 7}
	actualMeta := new(FileMeta)
	data, err = io.ToBytes(meta)
	require.NoError(t, err)
	require.NoError(t, io.FromBytes(data, actualMeta))
	require.Equal(t, meta, actualMeta)
}

func TestCopiesAreDetached(t *testing.T) {
	acc := &Account{Key: testKey(), Tokens: []ID{NewID(0, 0, 1)}}
	c := acc.Copy()
	c.Tokens[0] = NewID(0, 0, 2)
	c.Key.PublicKey[0] = 0
	assert.Equal(t, NewID(0, 0, 1), acc.Tokens[0])
	assert.Equal(t, byte(7), acc.Key.PublicKey[0])

	tok := &Token{SupplyKey: testKey()}
	ct := tok.Copy()
	ct.SupplyKey.PublicKey[0] = 0
	assert.Equal(t, byte(7), tok.SupplyKey.PublicKey[0])
}

func TestSeqSource(t *testing.T) {
	s := NewSeqSource(1001)
	sponsor := NewID(1, 2, 3)

	require.Equal(t, NewID(1, 2, 1001), s.NewAccountID(sponsor))
	require.Equal(t, NewID(1, 2, 1002), s.NewTokenID(sponsor))
	s.ReclaimLastID()
	require.Equal(t, NewID(1, 2, 1002), s.NewFileID(sponsor))
	s.ResetProvisionalIDs()

	require.Equal(t, NewID(1, 2, 1003), s.NewScheduleID(sponsor))
	require.Equal(t, NewID(1, 2, 1004), s.NewAccountID(sponsor))
	s.ReclaimProvisionalIDs()
	require.Equal(t, int64(1003), s.Peek())

	st := storage.NewMemoryStore()
	restored, err := LoadSeqSource(st, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), restored.Peek())

	require.NoError(t, s.Flush(st))
	restored, err = LoadSeqSource(st, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1003), restored.Peek())
}
