package txns_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nspcc-dev/ledger-services/internal/testledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns/crypto"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/fees"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testFee = fees.FeeObject{NodeFee: 10, NetworkFee: 20, ServiceFee: 30}

type fakeFees struct {
	fee    fees.FeeObject
	err    error
	nonFee int64
}

func (f *fakeFees) ComputeFee(*transaction.Accessor, *keys.Key, *state.View) (fees.FeeObject, error) {
	return f.fee, f.err
}

func (f *fakeFees) EstimatedNonFeePayerAdjustments(*transaction.Accessor, time.Time) int64 {
	return f.nonFee
}

type fakeMultiplier struct {
	updates []time.Time
}

func (f *fakeMultiplier) UpdateMultiplier(now time.Time) {
	f.updates = append(f.updates, now)
}

// fakeLogic handles ContractCreate transactions with the given function.
type fakeLogic struct {
	ctx    txns.TransactionContext
	syntax response.Code
	do     func()
}

func (f *fakeLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.ContractCreate)
	return ok
}

func (f *fakeLogic) SyntaxCheck(*transaction.Body) response.Code {
	return f.syntax
}

func (f *fakeLogic) DoStateTransition() {
	f.do()
}

type testEnv struct {
	state *state.State
	proc  *txns.Processor
	fees  *fakeFees
	mult  *fakeMultiplier
	logic *fakeLogic
}

func newTestEnv(t *testing.T) *testEnv {
	var (
		s    = testledger.New(t, nil)
		ctx  = txns.NewBasicContext()
		log  = zaptest.NewLogger(t)
		fake = &fakeLogic{ctx: ctx, syntax: response.OK}
		e    = &testEnv{state: s, fees: &fakeFees{fee: testFee}, mult: new(fakeMultiplier), logic: fake}
	)
	var err error
	e.proc, err = txns.NewProcessor(txns.Config{
		Store:      s.Store,
		Ledger:     s.Ledger,
		IDs:        s.IDs,
		Fees:       e.fees,
		Multiplier: e.mult,
		View:       s.View(),
		Funding:    testledger.Funding,
		Logics: []txns.TransitionLogic{
			crypto.NewTransferTransitionLogic(s.Ledger, s.Validator, ctx, log),
			fake,
		},
		Resets: []func(){s.Reload},
	}, ctx, log)
	require.NoError(t, err)
	return e
}

func (e *testEnv) balance(t *testing.T, id entity.ID) int64 {
	acc, ok := e.state.View().Account(id)
	require.True(t, ok)
	return acc.Balance
}

func (e *testEnv) process(t *testing.T, accessor *transaction.Accessor) *txns.Record {
	rec, err := e.proc.Process(accessor, testledger.Now)
	require.NoError(t, err)
	require.False(t, e.state.Ledger.Accounts().IsInTransaction())
	return rec
}

func transfer(from, to entity.ID, amount int64) *transaction.CryptoTransfer {
	return &transaction.CryptoTransfer{Transfers: transaction.TransferList{AccountAmounts: []transaction.AccountAmount{
		{Account: from, Amount: -amount},
		{Account: to, Amount: amount},
	}}}
}

func TestNewProcessor(t *testing.T) {
	_, err := txns.NewProcessor(txns.Config{}, txns.NewBasicContext(), nil)
	require.Error(t, err)

	s := testledger.New(t, nil)
	_, err = txns.NewProcessor(txns.Config{Store: s.Store, Ledger: s.Ledger, IDs: s.IDs, Fees: new(fakeFees)}, nil, nil)
	require.Error(t, err)
}

func TestProcessSuccess(t *testing.T) {
	e := newTestEnv(t)
	accessor := testledger.Accessor(transfer(testledger.Payer, testledger.Alice, 100))
	rec := e.process(t, accessor)

	require.Equal(t, response.Success, rec.Status)
	require.Equal(t, accessor.TxID(), rec.TxID)
	require.Equal(t, testledger.Now, rec.ConsensusTime)
	require.EqualValues(t, 60, rec.Fee)
	require.Equal(t, []time.Time{testledger.Now}, e.mult.updates)
	require.Equal(t, transaction.TransferList{AccountAmounts: []transaction.AccountAmount{
		{Account: testledger.Node, Amount: 10},
		{Account: testledger.Funding, Amount: 50},
		{Account: testledger.Payer, Amount: -160},
		{Account: testledger.Alice, Amount: 100},
	}}, rec.Transfers)

	require.EqualValues(t, testledger.InitialBalance-160, e.balance(t, testledger.Payer))
	require.EqualValues(t, testledger.InitialBalance+100, e.balance(t, testledger.Alice))
	require.EqualValues(t, 10, e.balance(t, testledger.Node))
	require.EqualValues(t, 50, e.balance(t, testledger.Funding))
}

func TestProcessTimeChecks(t *testing.T) {
	e := newTestEnv(t)
	body := func(modify func(b *transaction.Body)) *transaction.Accessor {
		a := testledger.Accessor(transfer(testledger.Payer, testledger.Alice, 1))
		modify(a.Body())
		return a
	}
	testCases := []struct {
		name     string
		accessor *transaction.Accessor
		code     response.Code
	}{
		{"start in future", body(func(b *transaction.Body) { b.TransactionID.ValidStart = testledger.Now.Add(time.Second) }), response.InvalidTransactionStart},
		{"no duration", body(func(b *transaction.Body) { b.ValidDuration = 0 }), response.InvalidTransactionDuration},
		{"expired", body(func(b *transaction.Body) { b.TransactionID.ValidStart = testledger.Now.Add(-time.Hour) }), response.TransactionExpired},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.process(t, tc.accessor)
			require.Equal(t, tc.code, rec.Status)
			require.Zero(t, rec.Fee)
		})
	}
	require.Empty(t, e.mult.updates)
	require.EqualValues(t, testledger.InitialBalance, e.balance(t, testledger.Payer))
}

func TestProcessPrecheck(t *testing.T) {
	e := newTestEnv(t)
	data := transfer(testledger.Alice, testledger.Bob, 1)
	lowFee := testledger.AccessorFrom(testledger.Payer, data)
	lowFee.Body().TransactionFee = 59
	badNode := testledger.AccessorFrom(testledger.Payer, data)
	badNode.Body().NodeAccount = testledger.Missing

	testCases := []struct {
		name     string
		accessor *transaction.Accessor
		prepare  func()
		code     response.Code
	}{
		{"missing payer", testledger.AccessorFrom(testledger.Missing, data), nil, response.PayerAccountNotFound},
		{"deleted payer", testledger.AccessorFrom(testledger.Deleted, data), nil, response.PayerAccountNotFound},
		{"missing node", badNode, nil, response.InvalidNodeAccount},
		{"low fee", lowFee, nil, response.InsufficientTxFee},
		{"bad body", testledger.Accessor(data), func() { e.fees.err = errors.New("no estimator") }, response.InvalidTransactionBody},
		{"poor payer", testledger.Accessor(data), func() { e.fees.nonFee = -testledger.InitialBalance }, response.InsufficientPayerBalance},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e.fees.err, e.fees.nonFee = nil, 0
			if tc.prepare != nil {
				tc.prepare()
			}
			rec := e.process(t, tc.accessor)
			require.Equal(t, tc.code, rec.Status)
			require.Zero(t, rec.Fee)
			require.Empty(t, rec.Transfers.AccountAmounts)
		})
	}
	require.EqualValues(t, testledger.InitialBalance, e.balance(t, testledger.Payer))
	require.EqualValues(t, testledger.InitialBalance, e.balance(t, testledger.Alice))
	require.Zero(t, e.balance(t, testledger.Funding))

	// Positive adjustments don't help the payer.
	e.fees.err, e.fees.nonFee = nil, testledger.InitialBalance
	e.fees.fee = fees.FeeObject{NetworkFee: testledger.InitialBalance + 1}
	a := testledger.Accessor(data)
	a.Body().TransactionFee = 2 * testledger.InitialBalance
	require.Equal(t, response.InsufficientPayerBalance, e.process(t, a).Status)
}

func TestProcessFailureChargesFees(t *testing.T) {
	e := newTestEnv(t)
	rec := e.process(t, testledger.Accessor(transfer(testledger.Payer, testledger.Missing, 100)))
	require.Equal(t, response.InvalidAccountID, rec.Status)
	require.EqualValues(t, 60, rec.Fee)
	require.Equal(t, transaction.TransferList{AccountAmounts: []transaction.AccountAmount{
		{Account: testledger.Node, Amount: 10},
		{Account: testledger.Funding, Amount: 50},
		{Account: testledger.Payer, Amount: -60},
	}}, rec.Transfers)
	require.EqualValues(t, testledger.InitialBalance-60, e.balance(t, testledger.Payer))

	// Syntax errors are charged too.
	rec = e.process(t, testledger.Accessor(transfer(testledger.Payer, testledger.Payer, 100)))
	require.Equal(t, response.AccountRepeatedInAccountAmounts, rec.Status)
	require.EqualValues(t, testledger.InitialBalance-120, e.balance(t, testledger.Payer))

	rec = e.process(t, testledger.Accessor(&transaction.FileCreate{}))
	require.Equal(t, response.NotSupported, rec.Status)
	require.EqualValues(t, testledger.InitialBalance-180, e.balance(t, testledger.Payer))
}

func TestProcessFailureDropsChanges(t *testing.T) {
	e := newTestEnv(t)
	var token entity.ID
	e.logic.do = func() {
		s := e.state
		id, err := s.Ledger.Create(testledger.Payer, 1000, nil)
		require.NoError(t, err)
		require.Equal(t, entity.NewID(0, 0, testledger.FirstEntity), id)

		var code response.Code
		token, code = s.Tokens.CreateProvisionally(testledger.TokenCreate("ABC", 1), testledger.Payer, testledger.Now.Unix())
		require.Equal(t, response.OK, code)
		require.NoError(t, s.Tokens.CommitCreation())
		require.True(t, s.Tokens.Exists(token))
		require.True(t, s.Ledger.IsKnownTreasury(testledger.Payer))

		e.proc.Context().SetStatus(response.InvalidSignature)
	}
	rec := e.process(t, testledger.Accessor(&transaction.ContractCreate{}))
	require.Equal(t, response.InvalidSignature, rec.Status)
	require.True(t, rec.Created.IsZero())
	require.EqualValues(t, testledger.InitialBalance-60, e.balance(t, testledger.Payer))
	require.False(t, e.state.Tokens.Exists(token))
	require.False(t, e.state.Ledger.IsKnownTreasury(testledger.Payer))
	require.EqualValues(t, testledger.FirstEntity, e.state.IDs.Peek())
	_, ok := e.state.View().Account(entity.NewID(0, 0, testledger.FirstEntity))
	require.False(t, ok)

	// The same ids are given out again.
	e.logic.do = func() {
		id, err := e.state.Ledger.Create(testledger.Payer, 1000, nil)
		require.NoError(t, err)
		e.proc.Context().SetCreated(id)
		e.proc.Context().SetStatus(response.Success)
	}
	rec = e.process(t, testledger.Accessor(&transaction.ContractCreate{}))
	require.Equal(t, response.Success, rec.Status)
	require.Equal(t, entity.NewID(0, 0, testledger.FirstEntity), rec.Created)
	require.EqualValues(t, 1000, e.balance(t, rec.Created))
	require.EqualValues(t, testledger.InitialBalance-1120, e.balance(t, testledger.Payer))
	require.EqualValues(t, testledger.FirstEntity+1, e.state.IDs.Peek())
}

func TestProcessPanic(t *testing.T) {
	e := newTestEnv(t)
	e.logic.do = func() {
		require.NoError(t, e.state.Ledger.AdjustBalance(testledger.Alice, 5))
		panic("boom")
	}
	rec := e.process(t, testledger.Accessor(&transaction.ContractCreate{}))
	require.Equal(t, response.FailInvalid, rec.Status)
	require.EqualValues(t, testledger.InitialBalance, e.balance(t, testledger.Alice))
	require.EqualValues(t, testledger.InitialBalance-60, e.balance(t, testledger.Payer))

	// Unbalanced changes can't be committed.
	e.logic.do = func() {
		require.NoError(t, e.state.Ledger.AdjustBalance(testledger.Alice, 5))
		e.proc.Context().SetStatus(response.Success)
	}
	rec = e.process(t, testledger.Accessor(&transaction.ContractCreate{}))
	require.Equal(t, response.FailInvalid, rec.Status)
	require.EqualValues(t, testledger.InitialBalance, e.balance(t, testledger.Alice))
	require.EqualValues(t, testledger.InitialBalance-120, e.balance(t, testledger.Payer))
}
