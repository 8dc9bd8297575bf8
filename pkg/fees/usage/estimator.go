package usage

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/query"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

// ErrUnexpectedData is returned when an estimator gets a transaction or a
// query it can't handle.
var ErrUnexpectedData = errors.New("unexpected data")

type (
	// TxnEstimator estimates transaction resource usage.
	TxnEstimator interface {
		ApplicableTo(b *transaction.Body) bool
		UsageGiven(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error)
	}

	// QueryEstimator estimates query resource usage.
	QueryEstimator interface {
		ApplicableTo(q *query.Query) bool
		UsageGiven(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error)
	}
)

// dataOf returns transaction data of the expected type.
func dataOf[T any](b *transaction.Body) (T, error) {
	d, ok := b.Data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedData, b.Data)
	}
	return d, nil
}

// queryOf returns query data of the expected type.
func queryOf[T any](q *query.Query) (T, error) {
	d, ok := q.Data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedData, q.Data)
	}
	return d, nil
}

// lifetime returns the number of seconds between the transaction start and
// the given expiry, never negative.
func lifetime(b *transaction.Body, expiry int64) int64 {
	return max(0, expiry-b.TransactionID.ValidStart.Unix())
}

// functional is an estimator applicable to every transaction of the given
// kind.
type functional struct {
	fn    transaction.Functionality
	usage func(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error)
}

func (e functional) ApplicableTo(b *transaction.Body) bool {
	return b.Functionality() == e.fn
}

func (e functional) UsageGiven(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error) {
	return e.usage(b, sigs, view)
}

// Estimators is the set of transaction estimators by functionality.
type Estimators map[transaction.Functionality][]TxnEstimator

// For returns estimators of the given functionality in the order they must
// be tried.
func (e Estimators) For(fn transaction.Functionality) []TxnEstimator {
	return e[fn]
}

// DefaultEstimators returns estimators for every supported transaction,
// scheduleLifetime is the number of seconds schedules are kept for.
func DefaultEstimators(scheduleLifetime int64) Estimators {
	var res = make(Estimators)
	add := func(fn transaction.Functionality, f func(*transaction.Body, SigUsage, *state.View) (schedule.FeeData, error)) {
		res[fn] = append(res[fn], functional{fn: fn, usage: f})
	}
	add(transaction.CryptoCreateT, cryptoCreateUsage)
	add(transaction.CryptoUpdateT, cryptoUpdateUsage)
	add(transaction.CryptoDeleteT, cryptoDeleteUsage)
	add(transaction.CryptoTransferT, cryptoTransferUsage)
	add(transaction.ContractCreateT, contractCreateUsage)
	add(transaction.ContractCallT, contractCallUsage)
	add(transaction.FileCreateT, fileCreateUsage)
	add(transaction.FileUpdateT, fileUpdateUsage)
	add(transaction.FileAppendT, fileAppendUsage)
	add(transaction.FileDeleteT, fileDeleteUsage)
	add(transaction.TokenCreateT, tokenCreateUsage)
	add(transaction.TokenUpdateT, tokenUpdateUsage)
	for _, fn := range []transaction.Functionality{transaction.TokenDeleteT, transaction.TokenMintT,
		transaction.TokenBurnT, transaction.TokenAccountWipe, transaction.TokenFreezeAccount,
		transaction.TokenUnfreezeAccount, transaction.TokenGrantKycToAccount,
		transaction.TokenRevokeKycFromAccount} {
		add(fn, tokenOpUsage)
	}
	add(transaction.TokenAssociateToAccount, tokenAssociateUsage)
	add(transaction.TokenDissociateFromAccount, tokenDissociateUsage)
	add(transaction.ScheduleCreateT, func(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error) {
		return scheduleCreateUsage(b, sigs, scheduleLifetime)
	})
	add(transaction.ScheduleDeleteT, scheduleDeleteUsage)
	return res
}

// DefaultQueryEstimators returns estimators for every supported query.
func DefaultQueryEstimators() []QueryEstimator {
	return []QueryEstimator{
		queryFunctional{transaction.CryptoGetAccountBalance, accountBalanceUsage},
		queryFunctional{transaction.CryptoGetInfo, cryptoGetInfoUsage},
		queryFunctional{transaction.FileGetContents, fileGetContentsUsage},
		queryFunctional{transaction.FileGetInfo, fileGetInfoUsage},
		queryFunctional{transaction.TokenGetInfo, tokenGetInfoUsage},
		queryFunctional{transaction.ScheduleGetInfo, scheduleGetInfoUsage},
		queryFunctional{transaction.TransactionGetReceipt, receiptUsage},
	}
}

type queryFunctional struct {
	fn    transaction.Functionality
	usage func(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error)
}

func (e queryFunctional) ApplicableTo(q *query.Query) bool {
	return q.Functionality() == e.fn
}

func (e queryFunctional) UsageGiven(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	return e.usage(q, view, rt)
}
