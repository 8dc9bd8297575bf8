package fees

import (
	"math"
	"testing"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/files"
	"github.com/nspcc-dev/ledger-services/pkg/core/query"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"github.com/nspcc-dev/ledger-services/pkg/fees/usage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	feeSchedulesFile  = entity.NewID(0, 0, 111)
	exchangeRatesFile = entity.NewID(0, 0, 112)
	payer             = entity.NewID(0, 0, 2)
	other             = entity.NewID(0, 0, 3)
)

type testCtx struct {
	acc *transaction.Accessor
	now time.Time
}

func (c *testCtx) Accessor() *transaction.Accessor { return c.acc }
func (c *testCtx) ConsensusTime() time.Time         { return c.now }

type fixedMultiplier int64

func (m fixedMultiplier) CurrentMultiplier() int64 { return int64(m) }

func constantPrices(node, network, service int64) schedule.FeeData {
	bound := func(c int64) schedule.FeeComponents {
		return schedule.FeeComponents{Max: 1_000_000_000_000, Constant: c}
	}
	return schedule.FeeData{Node: bound(node), Network: bound(network), Service: bound(service)}
}

func newTestFS(t *testing.T) *files.FS {
	return files.New(storage.NewMemoryStore(), entity.NewSeqSource(1000), 1<<20, zaptest.NewLogger(t))
}

func transferAccessor(aas ...transaction.AccountAmount) *transaction.Accessor {
	return transaction.NewAccessor(&transaction.Body{
		TransactionID: transaction.TransactionID{Payer: payer, ValidStart: time.Unix(100, 0)},
		Data:          &transaction.CryptoTransfer{Transfers: transaction.TransferList{AccountAmounts: aas}},
	}, transaction.SigMap{})
}

func TestPricesGivenSelection(t *testing.T) {
	p := NewBasicUsagePrices(newTestFS(t), feeSchedulesFile, nil, zaptest.NewLogger(t))
	cur, next := constantPrices(1, 2, 3), constantPrices(4, 5, 6)
	p.SetFeeSchedules(schedule.CurrentAndNextFeeSchedule{
		Current: schedule.FeeSchedule{Expiry: 1000, Entries: []schedule.TransactionFeeSchedule{{Function: transaction.CryptoTransferT, Fees: cur}}},
		Next:    schedule.FeeSchedule{Expiry: 2000, Entries: []schedule.TransactionFeeSchedule{{Function: transaction.CryptoTransferT, Fees: next}}},
	})
	for sec, exp := range map[int64]schedule.FeeData{
		0:    cur,
		999:  cur,
		1000: next,
		1999: next,
		2000: cur,
		5000: cur,
	} {
		require.Equal(t, exp, p.PricesGiven(transaction.CryptoTransferT, time.Unix(sec, 0)), sec)
	}
}

func TestPricesFallBackToDefault(t *testing.T) {
	ctx := new(testCtx)
	p := NewBasicUsagePrices(newTestFS(t), feeSchedulesFile, ctx, zaptest.NewLogger(t))

	// Nothing loaded yet.
	require.Equal(t, DefaultUsagePrices, p.PricesGiven(transaction.CryptoTransferT, time.Unix(1, 0)))
	require.Equal(t, DefaultUsagePrices, p.ActivePrices())
	require.Equal(t, schedule.CurrentAndNextFeeSchedule{}, p.ActivePricesSchedules())

	s := schedule.CurrentAndNextFeeSchedule{
		Current: schedule.FeeSchedule{Expiry: 1000, Entries: []schedule.TransactionFeeSchedule{
			{Function: transaction.CryptoTransferT, Fees: constantPrices(1, 2, 3)},
		}},
		Next: schedule.FeeSchedule{Expiry: 2000},
	}
	p.SetFeeSchedules(s)
	require.Equal(t, s, p.ActivePricesSchedules())

	// Missing functionality and missing entry in the next schedule.
	require.Equal(t, DefaultUsagePrices, p.PricesGiven(transaction.TokenMintT, time.Unix(1, 0)))
	require.Equal(t, DefaultUsagePrices, p.PricesGiven(transaction.CryptoTransferT, time.Unix(1500, 0)))
	for _, c := range []schedule.FeeComponents{DefaultUsagePrices.Node, DefaultUsagePrices.Network, DefaultUsagePrices.Service} {
		require.Equal(t, schedule.FeeComponents{Min: 100_000, Max: 100_000}, c)
	}

	// No transaction in context.
	require.Equal(t, DefaultUsagePrices, p.ActivePrices())

	ctx.acc = transferAccessor()
	ctx.now = time.Unix(10, 0)
	require.Equal(t, constantPrices(1, 2, 3), p.ActivePrices())
	ctx.now = time.Unix(1500, 0)
	require.Equal(t, DefaultUsagePrices, p.ActivePrices())
}

func TestLoadPriceSchedulesScenario(t *testing.T) {
	fs := newTestFS(t)
	next := constantPrices(40_000, 50_000, 60_000)
	next.Service.Bpt = 7
	s := schedule.CurrentAndNextFeeSchedule{
		Current: schedule.FeeSchedule{Expiry: 1_234_567, Entries: []schedule.TransactionFeeSchedule{
			{Function: transaction.CryptoTransferT, Fees: constantPrices(10_000, 20_000, 30_000)},
		}},
		Next: schedule.FeeSchedule{Expiry: 1_235_567, Entries: []schedule.TransactionFeeSchedule{
			{Function: transaction.CryptoTransferT, Fees: next},
		}},
	}
	require.NoError(t, fs.CreateAt(feeSchedulesFile, s.Bytes(), &entity.FileMeta{}))

	p := NewBasicUsagePrices(fs, feeSchedulesFile, nil, zaptest.NewLogger(t))
	c := NewCalculator(nil, p, fixedMultiplier(1), nil, usage.DefaultEstimators(1800).For, zaptest.NewLogger(t))
	require.NoError(t, c.Init())
	require.Equal(t, next, p.PricesGiven(transaction.CryptoTransferT, time.Unix(1_235_000, 0)))
	require.Equal(t, s, p.ActivePricesSchedules())

	// File updates are picked up by the hook.
	fs.OnUpdate(feeSchedulesFile, p.OnFileUpdate)
	s.Next.Entries[0].Fees = constantPrices(1, 1, 1)
	require.NoError(t, fs.Overwrite(feeSchedulesFile, s.Bytes()))
	require.Equal(t, constantPrices(1, 1, 1), p.PricesGiven(transaction.CryptoTransferT, time.Unix(1_235_000, 0)))

	// Broken updates are ignored.
	require.NoError(t, fs.Overwrite(feeSchedulesFile, []byte{0xff}))
	require.Equal(t, constantPrices(1, 1, 1), p.PricesGiven(transaction.CryptoTransferT, time.Unix(1_235_000, 0)))
}

func TestLoadPriceSchedulesFailures(t *testing.T) {
	fs := newTestFS(t)
	p := NewBasicUsagePrices(fs, feeSchedulesFile, nil, zaptest.NewLogger(t))
	c := NewCalculator(nil, p, fixedMultiplier(1), nil, usage.DefaultEstimators(1800).For, nil)
	require.ErrorIs(t, c.Init(), ErrPriceSchedulesUnavailable)

	require.NoError(t, fs.CreateAt(feeSchedulesFile, []byte{0x0a, 0x10}, &entity.FileMeta{}))
	require.ErrorIs(t, p.LoadPriceSchedules(), ErrPriceSchedulesUnavailable)

	require.NoError(t, fs.Delete(feeSchedulesFile))
	require.ErrorIs(t, p.LoadPriceSchedules(), ErrPriceSchedulesUnavailable)
}

func TestExchangeRates(t *testing.T) {
	fs := newTestFS(t)
	ctx := &testCtx{now: time.Unix(150, 0)}
	e := NewBasicExchange(fs, exchangeRatesFile, ctx, zaptest.NewLogger(t))
	require.ErrorIs(t, e.LoadRates(), ErrRatesUnavailable)

	set := schedule.ExchangeRateSet{
		Current: schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 12, Expiry: 100},
		Next:    schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 15, Expiry: 200},
	}
	require.NoError(t, fs.CreateAt(exchangeRatesFile, set.Bytes(), &entity.FileMeta{}))
	require.NoError(t, e.LoadRates())
	require.Equal(t, set, e.Rates())

	require.Equal(t, set.Current, e.Rate(time.Unix(99, 0)))
	require.Equal(t, set.Next, e.Rate(time.Unix(100, 0)))
	require.Equal(t, set.Next, e.ActiveRate())

	fs.OnUpdate(exchangeRatesFile, e.OnFileUpdate)
	set.Next.CentEquiv = 30
	require.NoError(t, fs.Overwrite(exchangeRatesFile, set.Bytes()))
	require.EqualValues(t, 30, e.ActiveRate().CentEquiv)
}

func TestComponentFee(t *testing.T) {
	price := schedule.FeeComponents{Max: 1_000_000, Constant: 1000, Bpt: 10, Tv: 500}
	require.EqualValues(t, 2, ComponentFeeInTinycents(price, schedule.FeeComponents{Constant: 1, Bpt: 100}))
	// tv is divided by the factor before being added.
	require.EqualValues(t, 1, ComponentFeeInTinycents(price, schedule.FeeComponents{Constant: 1, Tv: 1999}))
	// Positive fees below one tinycent are rounded up to 1.
	require.EqualValues(t, 1, ComponentFeeInTinycents(schedule.FeeComponents{Max: 10, Bpt: 1}, schedule.FeeComponents{Bpt: 5}))
	require.EqualValues(t, 0, ComponentFeeInTinycents(schedule.FeeComponents{Max: 10}, schedule.FeeComponents{Bpt: 5}))
	// Bounds.
	require.EqualValues(t, 5, ComponentFeeInTinycents(schedule.FeeComponents{Min: 5000, Max: 10_000}, schedule.FeeComponents{}))
	require.EqualValues(t, 10, ComponentFeeInTinycents(schedule.FeeComponents{Max: 10_000, Bpt: 1000}, schedule.FeeComponents{Bpt: 1000}))
	// Default prices always give min fee.
	require.EqualValues(t, 100, ComponentFeeInTinycents(DefaultUsagePrices.Node, schedule.FeeComponents{Constant: 1, Bpt: 1000}))
}

func TestComponentFeeSaturates(t *testing.T) {
	bounds := schedule.FeeComponents{Min: 1000, Max: math.MaxInt64}
	testCases := map[string]struct {
		price, usage schedule.FeeComponents
	}{
		"product":     {schedule.FeeComponents{Bpt: math.MaxInt64}, schedule.FeeComponents{Bpt: 2}},
		"sum":         {schedule.FeeComponents{Bpt: math.MaxInt64, Vpt: math.MaxInt64}, schedule.FeeComponents{Bpt: 1, Vpt: 1}},
		"tv":          {schedule.FeeComponents{Tv: math.MaxInt64}, schedule.FeeComponents{Tv: math.MaxInt64}},
		"wraps to +1": {schedule.FeeComponents{Constant: 1 << 62, Bpt: 1}, schedule.FeeComponents{Constant: 4, Bpt: 1}},
	}
	for name, tc := range testCases {
		tc.price.Min, tc.price.Max = bounds.Min, bounds.Max
		require.EqualValues(t, int64(math.MaxInt64/FeeDivisorFactor), ComponentFeeInTinycents(tc.price, tc.usage), name)
	}

	capped := schedule.FeeComponents{Min: 1000, Max: 50_000, Gas: math.MaxInt64}
	require.EqualValues(t, 50, ComponentFeeInTinycents(capped, schedule.FeeComponents{Gas: math.MaxInt64}))
	negative := schedule.FeeComponents{Max: 50_000, Bpt: -1000, Constant: 3000}
	require.EqualValues(t, 3, ComponentFeeInTinycents(negative, schedule.FeeComponents{Bpt: 10, Constant: 1}))
}

func TestTinybarsFromTinycents(t *testing.T) {
	rate := schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 12}
	require.EqualValues(t, 10, TinybarsFromTinycents(rate, 120, 1))
	require.EqualValues(t, 30, TinybarsFromTinycents(rate, 120, 3))
	require.EqualValues(t, 0, TinybarsFromTinycents(rate, 11, 1))
	require.EqualValues(t, -10, TinybarsFromTinycents(rate, -120, 1))
	// Intermediate value doesn't fit into 64 bits.
	big := schedule.ExchangeRate{HbarEquiv: 1 << 30, CentEquiv: 1 << 30}
	require.EqualValues(t, int64(1)<<62, TinybarsFromTinycents(big, 1<<62, 1))
	require.EqualValues(t, int64(9223372036854775807), TinybarsFromTinycents(big, 1<<62, 4))
}

type stubEstimator struct {
	applicable bool
	usage      schedule.FeeData
	err        error
	calls      *int
}

func (e stubEstimator) ApplicableTo(*transaction.Body) bool { return e.applicable }

func (e stubEstimator) UsageGiven(*transaction.Body, usage.SigUsage, *state.View) (schedule.FeeData, error) {
	if e.calls != nil {
		*e.calls++
	}
	return e.usage, e.err
}

func unitUsage() schedule.FeeData {
	c := schedule.FeeComponents{Constant: 1}
	return schedule.FeeData{Node: c, Network: c, Service: c}
}

func newTestCalculator(t *testing.T, m MultiplierSource, ests ...usage.TxnEstimator) (*Calculator, *testCtx) {
	ctx := &testCtx{now: time.Unix(10, 0)}
	p := NewBasicUsagePrices(newTestFS(t), feeSchedulesFile, ctx, zaptest.NewLogger(t))
	p.SetFeeSchedules(schedule.CurrentAndNextFeeSchedule{
		Current: schedule.FeeSchedule{Expiry: 1000, Entries: []schedule.TransactionFeeSchedule{
			{Function: transaction.CryptoTransferT, Fees: constantPrices(12_000, 24_000, 36_000)},
			{Function: transaction.ContractCallT, Fees: schedule.FeeData{Service: schedule.FeeComponents{Gas: 120_000}}},
			{Function: transaction.ContractCreateT, Fees: schedule.FeeData{Service: schedule.FeeComponents{Gas: 1000}}},
		}},
	})
	e := NewBasicExchange(newTestFS(t), exchangeRatesFile, ctx, zaptest.NewLogger(t))
	e.SetRates(schedule.ExchangeRateSet{
		Current: schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 12, Expiry: 1000},
		Next:    schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 12, Expiry: 2000},
	})
	txnEstimators := func(fn transaction.Functionality) []usage.TxnEstimator {
		if fn == transaction.CryptoTransferT {
			return ests
		}
		return nil
	}
	return NewCalculator(e, p, m, usage.DefaultQueryEstimators(), txnEstimators, zaptest.NewLogger(t)), ctx
}

func TestComputeAndEstimateFee(t *testing.T) {
	c, ctx := newTestCalculator(t, fixedMultiplier(5), stubEstimator{applicable: true, usage: unitUsage()})
	acc := transferAccessor()
	ctx.acc = acc

	fee, err := c.ComputeFee(acc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, FeeObject{NodeFee: 5, NetworkFee: 10, ServiceFee: 15}, fee)
	require.EqualValues(t, 30, fee.Total())

	fee, err = c.EstimateFee(acc, nil, nil, time.Unix(10, 0))
	require.NoError(t, err)
	require.Equal(t, FeeObject{NodeFee: 1, NetworkFee: 2, ServiceFee: 3}, fee)

	// Multiplier is never less than 1.
	c, ctx = newTestCalculator(t, fixedMultiplier(0), stubEstimator{applicable: true, usage: unitUsage()})
	ctx.acc = acc
	fee, err = c.ComputeFee(acc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, FeeObject{NodeFee: 1, NetworkFee: 2, ServiceFee: 3}, fee)
}

func TestEstimatorSelection(t *testing.T) {
	var first, second int
	c, _ := newTestCalculator(t, fixedMultiplier(1),
		stubEstimator{applicable: false, calls: &first},
		stubEstimator{applicable: true, usage: unitUsage(), calls: &second},
		stubEstimator{applicable: true, err: usage.ErrUnexpectedData},
	)
	_, err := c.EstimateFee(transferAccessor(), nil, nil, time.Unix(10, 0))
	require.NoError(t, err)
	require.Zero(t, first)
	require.Equal(t, 1, second)

	c, _ = newTestCalculator(t, fixedMultiplier(1), stubEstimator{applicable: true, err: usage.ErrUnexpectedData})
	_, err = c.EstimateFee(transferAccessor(), nil, nil, time.Unix(10, 0))
	require.ErrorIs(t, err, ErrInvalidTxBody)

	c, _ = newTestCalculator(t, fixedMultiplier(1), stubEstimator{applicable: false})
	_, err = c.EstimateFee(transferAccessor(), nil, nil, time.Unix(10, 0))
	require.ErrorIs(t, err, ErrNoEstimator)

	_, err = c.EstimateFee(transaction.NewAccessor(&transaction.Body{Data: &transaction.TokenMint{}}, transaction.SigMap{}),
		nil, nil, time.Unix(10, 0))
	require.ErrorIs(t, err, ErrNoEstimator)
}

func TestQueryPayment(t *testing.T) {
	c, _ := newTestCalculator(t, fixedMultiplier(100))
	prices := constantPrices(12_000, 24_000, 36_000)
	prices.Node.Bpr = 1000

	q := &query.Query{Data: &query.CryptoGetAccountBalance{Account: payer}}
	fee, err := c.ComputePayment(q, prices, nil, time.Unix(10, 0))
	require.NoError(t, err)
	// (12000 + 48*1000)/1000 = 60 tinycents, 5 tinybars; network and
	// service have no usage.
	require.Equal(t, FeeObject{NodeFee: 5}, fee)

	fee, err = c.EstimatePayment(q, prices, nil, time.Unix(10, 0), query.AnswerStateProof)
	require.NoError(t, err)
	require.EqualValues(t, (12_000+(48+usage.StateProofSize)*1000)/1000/12, fee.NodeFee)

	_, err = c.ComputePayment(&query.Query{}, prices, nil, time.Unix(10, 0))
	require.ErrorIs(t, err, ErrNoEstimator)
}

func TestGasPriceFloor(t *testing.T) {
	c, ctx := newTestCalculator(t, fixedMultiplier(1))
	// 120000/1000 = 120 tinycents, 10 tinybars.
	require.EqualValues(t, 10, c.EstimatedGasPriceInTinybars(transaction.ContractCallT, time.Unix(10, 0)))
	// 1000/1000 = 1 tinycent rounds down to 0 tinybars.
	require.EqualValues(t, 1, c.EstimatedGasPriceInTinybars(transaction.ContractCreateT, time.Unix(10, 0)))
	// Default prices have no gas price at all.
	require.EqualValues(t, 1, c.EstimatedGasPriceInTinybars(transaction.TokenMintT, time.Unix(10, 0)))
	require.EqualValues(t, 1, c.ActiveGasPriceInTinybars())

	ctx.acc = transaction.NewAccessor(&transaction.Body{Data: &transaction.ContractCall{}}, transaction.SigMap{})
	require.EqualValues(t, 10, c.ActiveGasPriceInTinybars())
}

func TestNonFeePayerAdjustments(t *testing.T) {
	c, _ := newTestCalculator(t, fixedMultiplier(1))
	at := time.Unix(10, 0)

	acc := transferAccessor(
		transaction.AccountAmount{Account: payer, Amount: 5},
		transaction.AccountAmount{Account: other, Amount: -5},
	)
	require.EqualValues(t, 5, c.EstimatedNonFeePayerAdjustments(acc, at))

	acc = transferAccessor(
		transaction.AccountAmount{Account: payer, Amount: -7},
		transaction.AccountAmount{Account: other, Amount: 10},
		transaction.AccountAmount{Account: payer, Amount: -3},
	)
	require.EqualValues(t, -10, c.EstimatedNonFeePayerAdjustments(acc, at))

	mk := func(d transaction.Data) *transaction.Accessor {
		return transaction.NewAccessor(&transaction.Body{
			TransactionID: transaction.TransactionID{Payer: payer},
			Data:          d,
		}, transaction.SigMap{})
	}
	require.EqualValues(t, -1000, c.EstimatedNonFeePayerAdjustments(mk(&transaction.CryptoCreate{InitialBalance: 1000}), at))
	require.EqualValues(t, -100-3*1, c.EstimatedNonFeePayerAdjustments(mk(&transaction.ContractCreate{InitialBalance: 100, Gas: 3}), at))
	require.EqualValues(t, -100-3*10, c.EstimatedNonFeePayerAdjustments(mk(&transaction.ContractCall{Amount: 100, Gas: 3}), at))
	require.Zero(t, c.EstimatedNonFeePayerAdjustments(mk(&transaction.TokenMint{Amount: 100}), at))
}

func TestCongestionMultipliers(t *testing.T) {
	var load int
	m := NewCongestionMultipliers(ThrottleFunc(func() int { return load }), config.FeesConfiguration{
		CongestionMultipliers: []config.CongestionThreshold{{Percent: 90, Multiplier: 10}, {Percent: 95, Multiplier: 25}},
		MinCongestionPeriod:   60,
	}, zaptest.NewLogger(t))
	require.EqualValues(t, 1, m.CurrentMultiplier())

	t0 := time.Unix(1000, 0)
	load = 92
	m.UpdateMultiplier(t0)
	require.EqualValues(t, 1, m.CurrentMultiplier())
	m.UpdateMultiplier(t0.Add(60 * time.Second))
	require.EqualValues(t, 10, m.CurrentMultiplier())

	load = 96
	m.UpdateMultiplier(t0.Add(61 * time.Second))
	require.EqualValues(t, 10, m.CurrentMultiplier())
	m.UpdateMultiplier(t0.Add(121 * time.Second))
	require.EqualValues(t, 25, m.CurrentMultiplier())

	load = 50
	m.UpdateMultiplier(t0.Add(122 * time.Second))
	require.EqualValues(t, 1, m.CurrentMultiplier())

	load = 99
	m.UpdateMultiplier(t0.Add(200 * time.Second))
	m.ResetExpectations()
	require.EqualValues(t, 1, m.CurrentMultiplier())
	m.UpdateMultiplier(t0.Add(230 * time.Second))
	require.EqualValues(t, 1, m.CurrentMultiplier())
}
