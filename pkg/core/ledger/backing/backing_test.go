package backing

import (
	"testing"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	a = entity.NewID(0, 0, 2)
	b = entity.NewID(0, 0, 3)
)

func newTestAccounts(t *testing.T) (*Accounts, *AccountsMap) {
	m := NewAccountsMap(storage.NewMemoryStore(), zaptest.NewLogger(t))
	require.NoError(t, m.Put(a, &entity.Account{Balance: 10}))
	return NewAccounts(m, zaptest.NewLogger(t)), m
}

func TestGetRefIdentity(t *testing.T) {
	acc, _ := newTestAccounts(t)

	r1, err := acc.GetRef(a)
	require.NoError(t, err)
	r2, err := acc.GetRef(a)
	require.NoError(t, err)
	require.Same(t, r1, r2)

	_, err = acc.GetRef(b)
	require.ErrorIs(t, err, txledger.ErrMissingEntity)
}

func TestPutRequiresMutableRef(t *testing.T) {
	acc, m := newTestAccounts(t)

	require.ErrorIs(t, acc.Put(a, &entity.Account{Balance: 1}), ErrNotMutableRef)

	ref, err := acc.GetRef(a)
	require.NoError(t, err)
	ref.Balance = 11
	require.NoError(t, acc.Put(a, ref))
	require.ErrorIs(t, acc.Put(a, ref.Copy()), ErrNotMutableRef)

	got, _ := m.Get(a)
	require.Equal(t, int64(10), got.Balance)

	require.NoError(t, acc.FlushMutableRefs())
	got, _ = m.Get(a)
	require.Equal(t, int64(11), got.Balance)

	// The cache is cleared by flush, a new reference is given.
	r2, err := acc.GetRef(a)
	require.NoError(t, err)
	require.NotSame(t, ref, r2)
}

func TestPutNewAndRemove(t *testing.T) {
	acc, m := newTestAccounts(t)

	require.False(t, acc.Contains(b))
	require.NoError(t, acc.Put(b, &entity.Account{Balance: 5}))
	require.True(t, acc.Contains(b))
	require.True(t, m.ContainsKey(b))
	require.Equal(t, []entity.ID{a, b}, acc.IDSet())

	require.NoError(t, acc.Remove(b))
	require.False(t, acc.Contains(b))
	require.False(t, m.ContainsKey(b))
}

func TestRebuildFromSources(t *testing.T) {
	acc, m := newTestAccounts(t)
	require.NoError(t, m.Put(b, &entity.Account{}))
	require.False(t, acc.Contains(b))

	_, err := acc.GetRef(a)
	require.NoError(t, err)
	acc.RebuildFromSources()
	require.True(t, acc.Contains(b))
	require.Empty(t, acc.cache)
}

func TestDiscardMutableRefs(t *testing.T) {
	acc, m := newTestAccounts(t)
	ref, err := acc.GetRef(a)
	require.NoError(t, err)
	ref.Balance = 0
	acc.DiscardMutableRefs()
	require.NoError(t, acc.FlushMutableRefs())
	got, _ := m.Get(a)
	require.Equal(t, int64(10), got.Balance)
}

func TestPure(t *testing.T) {
	_, m := newTestAccounts(t)
	p := NewPure[entity.ID, *entity.Account](m)

	got, ok := p.Get(a)
	require.True(t, ok)
	require.Equal(t, int64(10), got.Balance)
	require.True(t, p.Contains(a))
	require.Equal(t, []entity.ID{a}, p.IDSet())

	_, err := p.GetRef(a)
	require.ErrorIs(t, err, ErrReadOnly)
	require.ErrorIs(t, p.Put(b, &entity.Account{}), ErrReadOnly)
	require.ErrorIs(t, p.Remove(a), ErrReadOnly)
	require.NoError(t, p.FlushMutableRefs())
	_, err = p.GetUnsafeRef(b)
	require.ErrorIs(t, err, txledger.ErrMissingEntity)
}
