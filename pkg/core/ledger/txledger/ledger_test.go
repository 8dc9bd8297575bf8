package txledger

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testAccount struct {
	balance int64
	memo    string
}

func (a *testAccount) Copy() *testAccount {
	res := *a
	return &res
}

type testProp int

const (
	propBalance testProp = iota
	propMemo
)

func (p testProp) String() string {
	if p == propBalance {
		return "BALANCE"
	}
	return "MEMO"
}

func (p testProp) Get(a *testAccount) any {
	if p == propBalance {
		return a.balance
	}
	return a.memo
}

func (p testProp) Set(a *testAccount, v any) error {
	switch p {
	case propBalance:
		b, ok := v.(int64)
		if !ok {
			return fmt.Errorf("bad balance %T", v)
		}
		a.balance = b
	case propMemo:
		m, ok := v.(string)
		if !ok {
			return fmt.Errorf("bad memo %T", v)
		}
		a.memo = m
	}
	return nil
}

// recordingBacking is a map-based BackingStore recording mutating calls.
type recordingBacking struct {
	m       map[int]*testAccount
	refs    map[int]*testAccount
	calls   []string
	failPut bool
}

func newRecordingBacking() *recordingBacking {
	return &recordingBacking{m: make(map[int]*testAccount), refs: make(map[int]*testAccount)}
}

func (b *recordingBacking) GetRef(id int) (*testAccount, error) {
	if r, ok := b.refs[id]; ok {
		return r, nil
	}
	a, ok := b.m[id]
	if !ok {
		return nil, ErrMissingEntity
	}
	r := a.Copy()
	b.refs[id] = r
	return r, nil
}

func (b *recordingBacking) GetUnsafeRef(id int) (*testAccount, error) {
	a, ok := b.m[id]
	if !ok {
		return nil, ErrMissingEntity
	}
	return a, nil
}

func (b *recordingBacking) Put(id int, a *testAccount) error {
	if b.failPut {
		return errors.New("put failed")
	}
	b.calls = append(b.calls, fmt.Sprintf("put %d", id))
	if _, ok := b.m[id]; !ok {
		b.m[id] = a
	}
	return nil
}

func (b *recordingBacking) Remove(id int) error {
	b.calls = append(b.calls, fmt.Sprintf("remove %d", id))
	delete(b.m, id)
	return nil
}

func (b *recordingBacking) Contains(id int) bool {
	_, ok := b.m[id]
	return ok
}

func (b *recordingBacking) IDSet() []int {
	var res []int
	for k := range b.m {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

func (b *recordingBacking) FlushMutableRefs() error {
	for id, r := range b.refs {
		b.m[id] = r
	}
	b.refs = make(map[int]*testAccount)
	b.calls = append(b.calls, "flush")
	return nil
}

func (b *recordingBacking) DiscardMutableRefs() {
	b.refs = make(map[int]*testAccount)
}

func newTestLedger(t *testing.T) (*Ledger[int, testProp, *testAccount], *recordingBacking) {
	b := newRecordingBacking()
	b.m[1] = &testAccount{balance: 100, memo: "one"}
	l := New[int, testProp, *testAccount](func() *testAccount { return new(testAccount) }, b, zaptest.NewLogger(t))
	return l, b
}

func TestTransactionExclusivity(t *testing.T) {
	l, _ := newTestLedger(t)

	require.ErrorIs(t, l.Create(2), ErrNoTransaction)
	require.ErrorIs(t, l.Set(1, propMemo, "x"), ErrNoTransaction)
	require.ErrorIs(t, l.Destroy(1), ErrNoTransaction)
	require.ErrorIs(t, l.Commit(), ErrNoTransaction)
	require.ErrorIs(t, l.Rollback(), ErrNoTransaction)

	require.NoError(t, l.Begin())
	require.True(t, l.IsInTransaction())
	require.ErrorIs(t, l.Begin(), ErrTransactionInProgress)
	require.NoError(t, l.Rollback())
	require.False(t, l.IsInTransaction())
	require.NoError(t, l.Begin())
}

func TestReadsReflectPendingChanges(t *testing.T) {
	l, b := newTestLedger(t)

	require.NoError(t, l.Begin())
	require.NoError(t, l.Set(1, propBalance, int64(5)))
	require.NoError(t, l.Set(1, propBalance, int64(7)))

	v, err := GetAs[int64](l, 1, propBalance)
	require.NoError(t, err)
	require.Equal(t, int64(7), v)
	acc, err := l.Get(1)
	require.NoError(t, err)
	require.Equal(t, &testAccount{balance: 7, memo: "one"}, acc)
	require.Equal(t, int64(100), b.m[1].balance)

	require.NoError(t, l.Rollback())
	v, err = GetAs[int64](l, 1, propBalance)
	require.NoError(t, err)
	require.Equal(t, int64(100), v)
}

func TestSetChecks(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Begin())

	require.ErrorIs(t, l.Set(42, propMemo, "x"), ErrMissingEntity)
	require.Error(t, l.Set(1, propBalance, "not a number"))
	_, err := GetAs[string](l, 1, propBalance)
	require.Error(t, err)
}

func TestCreateAndDestroy(t *testing.T) {
	l, b := newTestLedger(t)
	require.NoError(t, l.Begin())

	require.ErrorIs(t, l.Create(1), ErrEntityExists)
	require.NoError(t, l.Create(2))
	require.ErrorIs(t, l.Create(2), ErrEntityExists)
	require.True(t, l.Exists(2))
	require.NoError(t, l.Set(2, propMemo, "two"))
	m, err := GetAs[string](l, 2, propMemo)
	require.NoError(t, err)
	require.Equal(t, "two", m)
	bal, err := GetAs[int64](l, 2, propBalance)
	require.NoError(t, err)
	require.Equal(t, int64(0), bal)

	require.NoError(t, l.Destroy(1))
	require.False(t, l.Exists(1))
	_, err = l.Get(1)
	require.ErrorIs(t, err, ErrMissingEntity)
	require.ErrorIs(t, l.Set(1, propMemo, "x"), ErrMissingEntity)
	require.ErrorIs(t, l.Destroy(1), ErrMissingEntity)

	require.Equal(t, "{*NEW* 2: [MEMO -> two], *DEAD* 1}", l.ChangeSetSoFar())

	require.NoError(t, l.Commit())
	require.False(t, b.Contains(1))
	require.Equal(t, &testAccount{memo: "two"}, b.m[2])
	require.Equal(t, []string{"put 2", "remove 1", "flush"}, b.calls)
}

func TestDestroyPendingCreate(t *testing.T) {
	l, b := newTestLedger(t)
	require.NoError(t, l.Begin())
	require.NoError(t, l.Create(3))
	require.NoError(t, l.Set(3, propMemo, "three"))
	require.NoError(t, l.Destroy(3))
	require.False(t, l.Exists(3))
	require.Equal(t, "{}", l.ChangeSetSoFar())
	require.NoError(t, l.Commit())
	require.False(t, b.Contains(3))
	require.Equal(t, []string{"flush"}, b.calls)
}

func TestCommitOrdering(t *testing.T) {
	l, b := newTestLedger(t)
	l.SetKeyComparator(func(a, b int) int { return cmp.Compare(b, a) })

	require.NoError(t, l.Begin())
	for i := 2; i < 100; i++ {
		require.NoError(t, l.Create(i))
	}
	require.NoError(t, l.Commit())

	require.NoError(t, l.Begin())
	for i := 2; i < 100; i++ {
		require.NoError(t, l.Destroy(i))
	}
	require.NoError(t, l.Commit())

	var puts, removes []string
	for i := 99; i >= 2; i-- {
		puts = append(puts, fmt.Sprintf("put %d", i))
		removes = append(removes, fmt.Sprintf("remove %d", i))
	}
	expected := append(append(puts, "flush"), append(removes, "flush")...)
	require.Equal(t, expected, b.calls)
}

func TestCommitInsertionOrderByDefault(t *testing.T) {
	l, b := newTestLedger(t)
	require.NoError(t, l.Begin())
	for _, k := range []int{5, 3, 4} {
		require.NoError(t, l.Create(k))
	}
	require.NoError(t, l.Commit())
	require.Equal(t, []string{"put 5", "put 3", "put 4", "flush"}, b.calls)
}

func TestCommitAppliesChangesThroughRefs(t *testing.T) {
	l, b := newTestLedger(t)
	original := b.m[1]

	require.NoError(t, l.Begin())
	require.NoError(t, l.Set(1, propMemo, "changed"))
	require.NoError(t, l.Commit())

	require.False(t, l.IsInTransaction())
	require.Equal(t, "changed", b.m[1].memo)
	require.Equal(t, "one", original.memo)
	require.Equal(t, []string{"put 1", "flush"}, b.calls)
}

func TestCommitFailureKeepsTransactionOpen(t *testing.T) {
	l, b := newTestLedger(t)
	require.NoError(t, l.Begin())
	require.NoError(t, l.Set(1, propBalance, int64(1)))
	b.failPut = true

	require.Error(t, l.Commit())
	require.True(t, l.IsInTransaction())

	require.NoError(t, l.Rollback())
	require.Empty(t, b.refs)
	require.Equal(t, int64(100), b.m[1].balance)
}

func TestUndoChangesOfType(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Begin())
	require.NoError(t, l.Set(1, propBalance, int64(1)))
	require.NoError(t, l.Set(1, propMemo, "x"))

	l.UndoChangesOfType(propBalance)
	require.Equal(t, []int{1}, l.ChangedKeys())
	require.Equal(t, "{1: [MEMO -> x]}", l.ChangeSetSoFar())

	l.UndoChangesOfType(propMemo)
	require.Empty(t, l.ChangedKeys())
}

func TestChangeSetSoFarKeyToString(t *testing.T) {
	l, _ := newTestLedger(t)
	l.SetKeyToString(func(k int) string { return fmt.Sprintf("0.0.%d", k) })
	require.NoError(t, l.Begin())
	require.NoError(t, l.Set(1, propMemo, "m"))
	require.NoError(t, l.Set(1, propBalance, int64(2)))
	require.Equal(t, "{0.0.1: [BALANCE -> 2, MEMO -> m]}", l.ChangeSetSoFar())
}
