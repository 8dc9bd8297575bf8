package fees

import "errors"

var (
	// ErrPriceSchedulesUnavailable is returned when fee schedules can't be
	// loaded, it's fatal for the node.
	ErrPriceSchedulesUnavailable = errors.New("price schedules unavailable")
	// ErrRatesUnavailable is returned when exchange rates can't be loaded.
	ErrRatesUnavailable = errors.New("exchange rates unavailable")
	// ErrNoEstimator is returned when there is no estimator applicable to
	// the transaction or query.
	ErrNoEstimator = errors.New("no applicable estimator")
	// ErrInvalidTxBody is returned when an estimator fails to process the
	// transaction body.
	ErrInvalidTxBody = errors.New("invalid transaction body")

	errSchedulesNotLoaded = errors.New("schedules are not loaded")
	errNoActiveTxn        = errors.New("no active transaction")
	errMissingPrices      = errors.New("no prices for functionality")
)
