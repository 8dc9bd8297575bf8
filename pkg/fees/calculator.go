package fees

import (
	"fmt"
	"math"
	"time"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ledger-services/pkg/core/query"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"github.com/nspcc-dev/ledger-services/pkg/fees/usage"
	"go.uber.org/zap"
)

// FeeDivisorFactor is the number of price units in a tinycent.
const FeeDivisorFactor = 1000

// FeeObject is a fee split into node, network and service parts, all in
// tinybars.
type FeeObject struct {
	NodeFee    int64
	NetworkFee int64
	ServiceFee int64
}

// Total returns the sum of all fee parts.
func (f FeeObject) Total() int64 {
	return f.NodeFee + f.NetworkFee + f.ServiceFee
}

// Calculator computes fees based on resource usage.
type Calculator struct {
	exchange        HbarCentExchange
	prices          UsagePricesProvider
	multiplier      MultiplierSource
	queryEstimators []usage.QueryEstimator
	txnEstimators   func(transaction.Functionality) []usage.TxnEstimator
	log             *zap.Logger
}

// NewCalculator creates a calculator. Query estimators and transaction
// estimators returned by txnEstimators are tried in order, the first
// applicable one is used.
func NewCalculator(exchange HbarCentExchange, prices UsagePricesProvider, multiplier MultiplierSource,
	queryEstimators []usage.QueryEstimator, txnEstimators func(transaction.Functionality) []usage.TxnEstimator,
	log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		exchange:        exchange,
		prices:          prices,
		multiplier:      multiplier,
		queryEstimators: queryEstimators,
		txnEstimators:   txnEstimators,
		log:             log,
	}
}

// Init loads price schedules, an error here means the node can't work.
func (c *Calculator) Init() error {
	return c.prices.LoadPriceSchedules()
}

// ComputeFee returns the fee of the transaction being handled using active
// prices, rate and congestion multiplier.
func (c *Calculator) ComputeFee(accessor *transaction.Accessor, payerKey *keys.Key, view *state.View) (FeeObject, error) {
	countCalculation("compute")
	return c.feeGiven(accessor, payerKey, view, c.prices.ActivePrices(), c.exchange.ActiveRate(),
		max(1, c.multiplier.CurrentMultiplier()))
}

// EstimateFee returns the fee of the transaction as if it was handled at the
// given time without congestion.
func (c *Calculator) EstimateFee(accessor *transaction.Accessor, payerKey *keys.Key, view *state.View, at time.Time) (FeeObject, error) {
	countCalculation("estimate")
	return c.feeGiven(accessor, payerKey, view, c.prices.PricesGiven(accessor.Function(), at), c.exchange.Rate(at), 1)
}

func (c *Calculator) feeGiven(accessor *transaction.Accessor, payerKey *keys.Key, view *state.View,
	prices schedule.FeeData, rate schedule.ExchangeRate, multiplier int64) (FeeObject, error) {
	sigs := usage.NewSigUsage(accessor.SigMap(), payerKey)
	u, err := c.txnUsage(accessor, sigs, view)
	if err != nil {
		return FeeObject{}, err
	}
	return FeeObjectGiven(prices, u, rate, multiplier), nil
}

func (c *Calculator) txnUsage(accessor *transaction.Accessor, sigs usage.SigUsage, view *state.View) (schedule.FeeData, error) {
	var fn = accessor.Function()
	for _, e := range c.txnEstimators(fn) {
		if !e.ApplicableTo(accessor.Body()) {
			continue
		}
		u, err := e.UsageGiven(accessor.Body(), sigs, view)
		if err != nil {
			return schedule.FeeData{}, fmt.Errorf("%w: %s: %v", ErrInvalidTxBody, fn, err)
		}
		return u, nil
	}
	return schedule.FeeData{}, fmt.Errorf("%w for %s", ErrNoEstimator, fn)
}

// ComputePayment returns the fee of the query with the given prices.
func (c *Calculator) ComputePayment(q *query.Query, prices schedule.FeeData, view *state.View, at time.Time) (FeeObject, error) {
	countCalculation("payment")
	return c.paymentGiven(q, prices, view, at, q.ResponseType)
}

// EstimatePayment returns the fee of the query if it's answered with the
// given response type.
func (c *Calculator) EstimatePayment(q *query.Query, prices schedule.FeeData, view *state.View, at time.Time,
	rt query.ResponseType) (FeeObject, error) {
	countCalculation("payment_estimate")
	return c.paymentGiven(q, prices, view, at, rt)
}

func (c *Calculator) paymentGiven(q *query.Query, prices schedule.FeeData, view *state.View, at time.Time,
	rt query.ResponseType) (FeeObject, error) {
	for _, e := range c.queryEstimators {
		if !e.ApplicableTo(q) {
			continue
		}
		u, err := e.UsageGiven(q, view, rt)
		if err != nil {
			return FeeObject{}, err
		}
		return FeeObjectGiven(prices, u, c.exchange.Rate(at), 1), nil
	}
	return FeeObject{}, fmt.Errorf("%w for query %s", ErrNoEstimator, q.Functionality())
}

// EstimatedNonFeePayerAdjustments returns the expected change of the payer
// balance not related to fees.
func (c *Calculator) EstimatedNonFeePayerAdjustments(accessor *transaction.Accessor, at time.Time) int64 {
	switch d := accessor.Body().Data.(type) {
	case *transaction.CryptoCreate:
		return -d.InitialBalance
	case *transaction.CryptoTransfer:
		var (
			payer = accessor.Payer()
			net   int64
		)
		for _, aa := range d.Transfers.AccountAmounts {
			if aa.Account == payer {
				net += aa.Amount
			}
		}
		return net
	case *transaction.ContractCreate:
		return -d.InitialBalance - d.Gas*c.EstimatedGasPriceInTinybars(transaction.ContractCreateT, at)
	case *transaction.ContractCall:
		return -d.Amount - d.Gas*c.EstimatedGasPriceInTinybars(transaction.ContractCallT, at)
	default:
		return 0
	}
}

// EstimatedGasPriceInTinybars returns the gas price of the functionality at
// the given time, it's never less than 1.
func (c *Calculator) EstimatedGasPriceInTinybars(fn transaction.Functionality, at time.Time) int64 {
	return gasPriceInTinybars(c.prices.PricesGiven(fn, at), c.exchange.Rate(at))
}

// ActiveGasPriceInTinybars returns the gas price of the transaction being
// handled, it's never less than 1.
func (c *Calculator) ActiveGasPriceInTinybars() int64 {
	return gasPriceInTinybars(c.prices.ActivePrices(), c.exchange.ActiveRate())
}

func gasPriceInTinybars(prices schedule.FeeData, rate schedule.ExchangeRate) int64 {
	return max(1, TinybarsFromTinycents(rate, prices.Service.Gas/FeeDivisorFactor, 1))
}

// FeeObjectGiven applies prices to usage and converts the result to tinybars.
func FeeObjectGiven(prices, u schedule.FeeData, rate schedule.ExchangeRate, multiplier int64) FeeObject {
	return FeeObject{
		NodeFee:    TinybarsFromTinycents(rate, ComponentFeeInTinycents(prices.Node, u.Node), multiplier),
		NetworkFee: TinybarsFromTinycents(rate, ComponentFeeInTinycents(prices.Network, u.Network), multiplier),
		ServiceFee: TinybarsFromTinycents(rate, ComponentFeeInTinycents(prices.Service, u.Service), multiplier),
	}
}

// ComponentFeeInTinycents returns the price of the usage bounded by min and
// max prices. Negative prices and usages count as zero, the sum saturates at
// math.MaxInt64 before the bounds are applied.
func ComponentFeeInTinycents(price, u schedule.FeeComponents) int64 {
	var (
		sum = new(uint256.Int)
		tv  = product(price.Tv, u.Tv)
		add = func(a, b int64) {
			sum.Add(sum, product(a, b))
		}
	)
	add(price.Constant, u.Constant)
	add(price.Bpt, u.Bpt)
	add(price.Vpt, u.Vpt)
	add(price.Rbh, u.Rbh)
	add(price.Sbh, u.Sbh)
	add(price.Gas, u.Gas)
	add(price.Bpr, u.Bpr)
	add(price.Sbpr, u.Sbpr)
	sum.Add(sum, tv.Div(tv, uint256.NewInt(FeeDivisorFactor)))

	var fee int64 = math.MaxInt64
	if sum.IsUint64() && sum.Uint64() <= math.MaxInt64 {
		fee = int64(sum.Uint64())
	}
	fee = max(price.Min, min(price.Max, fee))
	var least int64
	if fee > 0 {
		least = 1
	}
	return max(least, fee/FeeDivisorFactor)
}

func product(a, b int64) *uint256.Int {
	v := uint256.NewInt(uint64(max(0, a)))
	return v.Mul(v, uint256.NewInt(uint64(max(0, b))))
}

// TinybarsFromTinycents converts tinycents to tinybars and applies the
// multiplier, results not fitting into int64 are saturated.
func TinybarsFromTinycents(rate schedule.ExchangeRate, tinycents int64, multiplier int64) int64 {
	if tinycents < 0 {
		return -TinybarsFromTinycents(rate, -tinycents, multiplier)
	}
	var (
		v    = uint256.NewInt(uint64(tinycents))
		hbar = uint256.NewInt(uint64(max(0, int64(rate.HbarEquiv))))
		cent = uint256.NewInt(uint64(max(0, int64(rate.CentEquiv))))
		mult = uint256.NewInt(uint64(max(0, multiplier)))
	)
	v.Mul(v, hbar)
	v.Div(v, cent)
	v.Mul(v, mult)
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v.Uint64())
}
