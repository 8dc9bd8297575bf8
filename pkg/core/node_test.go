package core

import (
	"strings"
	"testing"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/query"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const initialBalance = 1_000_000_000_000

var (
	now      = time.Unix(1_600_000_000, 0)
	treasury = entity.NewID(0, 0, 2)
	nodeAcc  = entity.NewID(0, 0, 3)
	user     = entity.NewID(0, 0, 50)
	funding  = entity.NewID(0, 0, 98)
)

func hexKey(b string) string {
	return strings.Repeat(b, 32)
}

// fixedPrices makes every component cost exactly the given number of
// tinycents whatever the usage is.
func fixedPrices(node, network, service int64) schedule.FeeData {
	c := func(v int64) schedule.FeeComponents {
		return schedule.FeeComponents{Min: v * fees.FeeDivisorFactor, Max: v * fees.FeeDivisorFactor}
	}
	return schedule.FeeData{Node: c(node), Network: c(network), Service: c(service)}
}

func feeSchedules(transfer schedule.FeeData) schedule.CurrentAndNextFeeSchedule {
	entries := []schedule.TransactionFeeSchedule{
		{Function: transaction.CryptoTransferT, Fees: transfer},
		{Function: transaction.FileUpdateT, Fees: fixedPrices(1, 1, 1)},
		{Function: transaction.CryptoGetAccountBalance, Fees: fixedPrices(0, 7, 0)},
	}
	return schedule.CurrentAndNextFeeSchedule{
		Current: schedule.FeeSchedule{Expiry: now.Unix() + 1000, Entries: entries},
		Next:    schedule.FeeSchedule{Expiry: now.Unix() + 2000, Entries: entries},
	}
}

func testGenesis() Genesis {
	return Genesis{
		SystemKey: hexKey("0a"),
		Accounts: []GenesisAccount{
			{Number: 2, Key: hexKey("02"), Balance: initialBalance},
			{Number: 3, Key: hexKey("03")},
			{Number: 50, Key: hexKey("50")},
			{Number: 98, Key: hexKey("98")},
		},
		FeeSchedules: feeSchedules(fixedPrices(1000, 2000, 3000)),
		ExchangeRates: schedule.ExchangeRateSet{
			Current: schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 1, Expiry: now.Unix() + 1000},
			Next:    schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 2, Expiry: now.Unix() + 2000},
		},
	}
}

func newTestNode(t *testing.T, st storage.Store) *Node {
	n, err := NewNode(st, config.Default().ProtocolConfiguration, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	return n
}

func newBootstrappedNode(t *testing.T) *Node {
	n := newTestNode(t, storage.NewMemoryStore())
	require.NoError(t, n.Bootstrap(testGenesis(), now))
	require.NoError(t, n.Init())
	return n
}

func accessor(data transaction.Data) *transaction.Accessor {
	return transaction.NewAccessor(&transaction.Body{
		TransactionID:  transaction.TransactionID{Payer: treasury, ValidStart: now.Add(-time.Second)},
		NodeAccount:    nodeAcc,
		TransactionFee: 1_000_000,
		ValidDuration:  120,
		Data:           data,
	}, transaction.SigMap{})
}

func transfer(to entity.ID, amount int64) *transaction.CryptoTransfer {
	return &transaction.CryptoTransfer{Transfers: transaction.TransferList{AccountAmounts: []transaction.AccountAmount{
		{Account: treasury, Amount: -amount},
		{Account: to, Amount: amount},
	}}}
}

func balance(t *testing.T, n *Node, id entity.ID) int64 {
	acc, err := n.Account(id)
	require.NoError(t, err)
	return acc.Balance
}

func TestNewNode(t *testing.T) {
	cfg := config.Default().ProtocolConfiguration
	cfg.FundingAccount = 0
	_, err := NewNode(storage.NewMemoryStore(), cfg, nil, nil)
	require.Error(t, err)

	n := newTestNode(t, storage.NewMemoryStore())
	require.ErrorIs(t, n.Init(), fees.ErrPriceSchedulesUnavailable)
}

func TestBootstrap(t *testing.T) {
	st := storage.NewMemoryStore()
	n := newTestNode(t, st)
	bad := testGenesis()
	bad.SystemKey = "xyz"
	require.Error(t, n.Bootstrap(bad, now))
	bad = testGenesis()
	bad.Accounts = append(bad.Accounts, GenesisAccount{Number: 5000, Key: hexKey("05")})
	require.Error(t, n.Bootstrap(bad, now))

	require.NoError(t, n.Bootstrap(testGenesis(), now))
	require.ErrorIs(t, n.Bootstrap(testGenesis(), now), ErrInitialized)
	require.NoError(t, n.Init())
	require.EqualValues(t, initialBalance, balance(t, n, treasury))

	// Everything is persisted into the underlying store.
	n2 := newTestNode(t, st)
	require.NoError(t, n2.Init())
	require.EqualValues(t, initialBalance, balance(t, n2, treasury))
	require.Equal(t, fixedPrices(1000, 2000, 3000), n2.PricesGiven(transaction.CryptoTransferT, now))
	_, err := n2.Account(entity.NewID(0, 0, 4))
	require.Error(t, err)
}

func TestProcess(t *testing.T) {
	n := newBootstrappedNode(t)
	rec, err := n.Process(accessor(transfer(user, 100)), now)
	require.NoError(t, err)
	require.Equal(t, response.Success, rec.Status)
	require.EqualValues(t, 6000, rec.Fee)

	require.EqualValues(t, initialBalance-6100, balance(t, n, treasury))
	require.EqualValues(t, 100, balance(t, n, user))
	require.EqualValues(t, 1000, balance(t, n, nodeAcc))
	require.EqualValues(t, 5000, balance(t, n, funding))

	rec, err = n.Process(accessor(transfer(entity.NewID(0, 0, 4), 100)), now)
	require.NoError(t, err)
	require.Equal(t, response.InvalidAccountID, rec.Status)
	require.EqualValues(t, initialBalance-12100, balance(t, n, treasury))
}

func TestFeeSchedulesUpdate(t *testing.T) {
	n := newBootstrappedNode(t)
	updated := feeSchedules(fixedPrices(2000, 4000, 6000))
	rec, err := n.Process(accessor(&transaction.FileUpdate{
		File:     entity.NewID(0, 0, 111),
		Contents: updated.Bytes(),
	}), now)
	require.NoError(t, err)
	require.Equal(t, response.Success, rec.Status)
	require.EqualValues(t, 3, rec.Fee)
	require.Equal(t, fixedPrices(2000, 4000, 6000), n.PricesGiven(transaction.CryptoTransferT, now))

	rec, err = n.Process(accessor(transfer(user, 1)), now)
	require.NoError(t, err)
	require.EqualValues(t, 12000, rec.Fee)

	// Undecodable contents are stored but don't change prices.
	rec, err = n.Process(accessor(&transaction.FileUpdate{
		File:     entity.NewID(0, 0, 111),
		Contents: []byte{0xff},
	}), now)
	require.NoError(t, err)
	require.Equal(t, response.Success, rec.Status)
	require.Equal(t, fixedPrices(2000, 4000, 6000), n.PricesGiven(transaction.CryptoTransferT, now))
}

func TestEstimates(t *testing.T) {
	n := newBootstrappedNode(t)
	fee, err := n.EstimateFee(accessor(transfer(user, 1)), now)
	require.NoError(t, err)
	require.Equal(t, fees.FeeObject{NodeFee: 1000, NetworkFee: 2000, ServiceFee: 3000}, fee)

	// Next rate is twice cheaper.
	fee, err = n.EstimateFee(accessor(transfer(user, 1)), now.Add(1500*time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 3000, fee.Total())

	fee, err = n.QueryFee(&query.Query{Data: &query.CryptoGetAccountBalance{Account: user}}, now)
	require.NoError(t, err)
	require.Equal(t, fees.FeeObject{NetworkFee: 7}, fee)

	a := accessor(transfer(user, 1))
	a.Body().TransactionID.Payer = entity.NewID(0, 0, 4)
	_, err = n.EstimateFee(a, now)
	require.Error(t, err)
}

func TestReadsWaitForTransaction(t *testing.T) {
	n := newBootstrappedNode(t)
	before := balance(t, n, treasury)

	n.lock.Lock()
	done := make(chan int64)
	go func() {
		acc, err := n.Account(treasury)
		if err != nil {
			done <- -1
			return
		}
		_, err = n.EstimateFee(accessor(transfer(user, 1)), now)
		if err != nil {
			done <- -1
			return
		}
		done <- acc.Balance
	}()
	// Uncommitted change made while the transaction is in progress.
	require.NoError(t, n.state.Ledger.Begin())
	require.NoError(t, n.state.Ledger.AdjustBalance(treasury, -1))
	select {
	case <-done:
		t.Fatal("read finished while a transaction is handled")
	case <-time.After(50 * time.Millisecond):
	}
	require.NoError(t, n.state.Ledger.Rollback())
	n.lock.Unlock()

	require.Equal(t, before, <-done)
}
