package schedules

import (
	"bytes"
	"testing"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/backing"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	now      = 1_600_000_000
	lifetime = 1800
)

var (
	payer   = entity.NewID(0, 0, 1001)
	other   = entity.NewID(0, 0, 1002)
	deleted = entity.NewID(0, 0, 1003)
	missing = entity.NewID(0, 0, 9999)
)

func newTestStore(t *testing.T) (*Store, *backing.SchedulesMap, *entity.SeqSource) {
	var (
		log = zaptest.NewLogger(t)
		st  = storage.NewMemCachedStore(storage.NewMemoryStore())
		am  = backing.NewAccountsMap(st, log)
		sm  = backing.NewSchedulesMap(st, log)
		ids = entity.NewSeqSource(3001)
	)
	require.NoError(t, am.Put(payer, &entity.Account{Balance: 1000}))
	require.NoError(t, am.Put(other, &entity.Account{Balance: 1000}))
	require.NoError(t, am.Put(deleted, &entity.Account{Deleted: true}))
	accounts := ledger.NewAccountsLedger(backing.NewAccounts(am, log), log)
	return New(ids, sm, accounts, lifetime, log), sm, ids
}

func adminKey() *keys.Key {
	return keys.NewEd25519(bytes.Repeat([]byte{7}, keys.Ed25519Size))
}

func create(t *testing.T, s *Store, body string, admin *keys.Key) entity.ID {
	id, code := s.CreateProvisionally(&entity.Schedule{
		TransactionBody: []byte(body),
		SchedulingPayer: payer,
		AdminKey:        admin,
		Memo:            "test",
	}, now)
	require.Equal(t, response.OK, code)
	require.NoError(t, s.CommitCreation())
	return id
}

func TestCreate(t *testing.T) {
	s, sm, ids := newTestStore(t)

	id, code := s.CreateProvisionally(&entity.Schedule{
		TransactionBody: []byte("body"),
		Payer:           other,
		SchedulingPayer: payer,
	}, now)
	require.Equal(t, response.OK, code)
	require.Equal(t, entity.NewID(0, 0, 3001), id)
	require.True(t, s.IsCreationPending())
	require.True(t, s.Exists(id))

	found, sch, ok := s.LookupSchedule([]byte("body"))
	require.True(t, ok)
	require.Equal(t, id, found)
	require.EqualValues(t, now+lifetime, sch.Expiry)

	require.NoError(t, s.CommitCreation())
	require.False(t, s.IsCreationPending())
	stored, ok := sm.Get(id)
	require.True(t, ok)
	require.Equal(t, other, stored.Payer)
	require.EqualValues(t, 3002, ids.Peek())

	found, _, ok = s.LookupSchedule([]byte("body"))
	require.True(t, ok)
	require.Equal(t, id, found)
	_, _, ok = s.LookupSchedule([]byte("other body"))
	require.False(t, ok)
}

func TestCreateValidation(t *testing.T) {
	s, _, ids := newTestStore(t)
	testCases := []struct {
		name string
		sch  entity.Schedule
		code response.Code
	}{
		{"missing payer", entity.Schedule{Payer: missing, SchedulingPayer: payer}, response.InvalidSchedulePayerID},
		{"deleted payer", entity.Schedule{Payer: deleted, SchedulingPayer: payer}, response.InvalidSchedulePayerID},
		{"missing account", entity.Schedule{SchedulingPayer: missing}, response.InvalidScheduleAccountID},
		{"bad admin key", entity.Schedule{SchedulingPayer: payer, AdminKey: keys.NewList()}, response.InvalidAdminKey},
		{"big body", entity.Schedule{SchedulingPayer: payer, TransactionBody: make([]byte, entity.MaxScheduledBodySize+1)}, response.TransactionOversize},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, code := s.CreateProvisionally(&tc.sch, now)
			require.Equal(t, tc.code, code)
			require.False(t, s.IsCreationPending())
		})
	}
	require.EqualValues(t, 3001, ids.Peek())
}

func TestRollbackCreation(t *testing.T) {
	s, _, ids := newTestStore(t)
	id, code := s.CreateProvisionally(&entity.Schedule{TransactionBody: []byte("body"), SchedulingPayer: payer}, now)
	require.Equal(t, response.OK, code)
	s.RollbackCreation()
	require.False(t, s.Exists(id))
	require.EqualValues(t, 3001, ids.Peek())
	_, _, ok := s.LookupSchedule([]byte("body"))
	require.False(t, ok)
	require.Error(t, s.CommitCreation())
	_, err := s.Get(id)
	require.ErrorIs(t, err, ErrMissingSchedule)
}

func TestDeleteAndExecute(t *testing.T) {
	s, sm, _ := newTestStore(t)
	mutable := create(t, s, "a", adminKey())
	immutable := create(t, s, "b", nil)

	require.True(t, adminKey().Equal(s.AdminKey(mutable)))
	require.Nil(t, s.AdminKey(immutable))

	require.Equal(t, response.ScheduleIsImmutable, s.Delete(immutable))
	require.Equal(t, response.InvalidScheduleID, s.Delete(missing))
	require.Equal(t, response.OK, s.Delete(mutable))
	require.Equal(t, response.ScheduleAlreadyDeleted, s.Delete(mutable))
	require.Equal(t, response.ScheduleAlreadyDeleted, s.MarkAsExecuted(mutable))
	_, _, ok := s.LookupSchedule([]byte("a"))
	require.False(t, ok)

	require.Equal(t, response.OK, s.MarkAsExecuted(immutable))
	require.Equal(t, response.ScheduleAlreadyExecuted, s.MarkAsExecuted(immutable))
	sch, ok := sm.Get(immutable)
	require.True(t, ok)
	require.True(t, sch.Executed)

	// Identical body can be scheduled again once the first one is gone.
	again := create(t, s, "a", nil)
	found, _, ok := s.LookupSchedule([]byte("a"))
	require.True(t, ok)
	require.Equal(t, again, found)
}

func TestExpire(t *testing.T) {
	s, sm, _ := newTestStore(t)
	id := create(t, s, "a", nil)
	pending, code := s.CreateProvisionally(&entity.Schedule{TransactionBody: []byte("p"), SchedulingPayer: payer}, now)
	require.Equal(t, response.OK, code)
	require.Error(t, s.Expire(pending))
	require.Equal(t, response.InvalidScheduleID, s.MarkAsExecuted(pending))
	s.RollbackCreation()

	require.NoError(t, s.Expire(id))
	require.False(t, sm.ContainsKey(id))
	_, _, ok := s.LookupSchedule([]byte("a"))
	require.False(t, ok)
	require.ErrorIs(t, s.Expire(id), ErrMissingSchedule)
}

func TestRebuildViews(t *testing.T) {
	s, sm, ids := newTestStore(t)
	a := create(t, s, "a", adminKey())
	b := create(t, s, "b", adminKey())
	require.Equal(t, response.OK, s.Delete(b))

	accounts := s.accounts
	s2 := New(ids, sm, accounts, lifetime, nil)
	found, _, ok := s2.LookupSchedule([]byte("a"))
	require.True(t, ok)
	require.Equal(t, a, found)
	_, _, ok = s2.LookupSchedule([]byte("b"))
	require.False(t, ok)
}
