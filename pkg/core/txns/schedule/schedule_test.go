package schedule

import (
	"strings"
	"testing"

	"github.com/nspcc-dev/ledger-services/internal/testledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestEnv(t *testing.T) (*state.State, *txns.BasicContext, *CreateTransitionLogic, *DeleteTransitionLogic) {
	s := testledger.New(t, nil)
	require.NoError(t, s.Ledger.Begin())
	ctx := txns.NewBasicContext()
	log := zaptest.NewLogger(t)
	return s, ctx, NewCreateTransitionLogic(s.Schedules, s.Validator, ctx, log),
		NewDeleteTransitionLogic(s.Schedules, ctx, log)
}

func run(ctx *txns.BasicContext, logic txns.TransitionLogic, data transaction.Data) response.Code {
	accessor := testledger.Accessor(data)
	ctx.Reset(accessor, testledger.Now)
	if !logic.Applicability(accessor.Body()) {
		return response.NotSupported
	}
	if code := logic.SyntaxCheck(accessor.Body()); code != response.OK {
		return code
	}
	logic.DoStateTransition()
	return ctx.Status()
}

func TestCreate(t *testing.T) {
	s, ctx, create, _ := newTestEnv(t)
	require.False(t, create.Applicability(&transaction.Body{Data: &transaction.ScheduleDelete{}}))

	op := &transaction.ScheduleCreate{
		TransactionBody: []byte("transfer"),
		AdminKey:        testledger.Key(20),
		Payer:           testledger.Alice,
		Memo:            "later",
	}
	require.Equal(t, response.Success, run(ctx, create, op))
	id := ctx.Created()
	require.Equal(t, entity.NewID(0, 0, testledger.FirstEntity), id)

	sch, err := s.Schedules.Get(id)
	require.NoError(t, err)
	require.Equal(t, testledger.Payer, sch.SchedulingPayer)
	require.Equal(t, testledger.Alice, sch.Payer)
	require.Equal(t, "later", sch.Memo)
	require.Equal(t, testledger.Now.Unix()+s.Validator.Config().ScheduleTxExpiryTime, sch.Expiry)
	require.False(t, s.Schedules.IsCreationPending())

	require.Equal(t, response.IdenticalScheduleAlreadyCreated, run(ctx, create, op))
	require.True(t, ctx.Created().IsZero())
	require.EqualValues(t, testledger.FirstEntity+1, s.IDs.Peek())
}

func TestCreateFailures(t *testing.T) {
	s, ctx, create, _ := newTestEnv(t)
	testCases := []struct {
		name string
		op   transaction.ScheduleCreate
		code response.Code
	}{
		{"empty body", transaction.ScheduleCreate{}, response.InvalidTransactionBody},
		{"long memo", transaction.ScheduleCreate{TransactionBody: []byte{1}, Memo: strings.Repeat("m", 101)}, response.MemoTooLong},
		{"bad admin key", transaction.ScheduleCreate{TransactionBody: []byte{1}, AdminKey: keys.NewList()}, response.InvalidAdminKey},
		{"missing payer", transaction.ScheduleCreate{TransactionBody: []byte{1}, Payer: testledger.Missing}, response.InvalidSchedulePayerID},
		{"deleted payer", transaction.ScheduleCreate{TransactionBody: []byte{1}, Payer: testledger.Deleted}, response.InvalidSchedulePayerID},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, run(ctx, create, &tc.op))
			require.False(t, s.Schedules.IsCreationPending())
		})
	}
	require.EqualValues(t, testledger.FirstEntity, s.IDs.Peek())
}

func TestDelete(t *testing.T) {
	s, ctx, create, del := newTestEnv(t)
	require.Equal(t, response.Success, run(ctx, create, &transaction.ScheduleCreate{
		TransactionBody: []byte("a"),
		AdminKey:        testledger.Key(20),
	}))
	mutable := ctx.Created()
	require.Equal(t, response.Success, run(ctx, create, &transaction.ScheduleCreate{TransactionBody: []byte("b")}))
	immutable := ctx.Created()

	require.Equal(t, response.InvalidScheduleID, run(ctx, del, &transaction.ScheduleDelete{}))
	require.Equal(t, response.InvalidScheduleID, run(ctx, del, &transaction.ScheduleDelete{Schedule: testledger.Missing}))
	require.Equal(t, response.ScheduleIsImmutable, run(ctx, del, &transaction.ScheduleDelete{Schedule: immutable}))
	require.Equal(t, response.Success, run(ctx, del, &transaction.ScheduleDelete{Schedule: mutable}))
	require.Equal(t, response.ScheduleAlreadyDeleted, run(ctx, del, &transaction.ScheduleDelete{Schedule: mutable}))

	sch, err := s.Schedules.Get(mutable)
	require.NoError(t, err)
	require.True(t, sch.Deleted)

	// Deleted schedules don't block identical ones.
	require.Equal(t, response.Success, run(ctx, create, &transaction.ScheduleCreate{TransactionBody: []byte("a")}))
	require.NotEqual(t, mutable, ctx.Created())
}
