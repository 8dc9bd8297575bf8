/*
Package fees implements transaction and query fee calculation. Prices come
from the fee schedules file, resource usage from estimators of the usage
package, the result is converted from tinycents to tinybars using the
exchange rate and multiplied by the congestion multiplier.
*/
package fees

import (
	"fmt"
	"sync"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"go.uber.org/zap"
)

// defaultFeeBound is the min and max fee of default prices.
const defaultFeeBound = 100_000

// DefaultUsagePrices are used when no prices can be resolved.
var DefaultUsagePrices = schedule.FeeData{
	Node:    schedule.FeeComponents{Min: defaultFeeBound, Max: defaultFeeBound},
	Network: schedule.FeeComponents{Min: defaultFeeBound, Max: defaultFeeBound},
	Service: schedule.FeeComponents{Min: defaultFeeBound, Max: defaultFeeBound},
}

type (
	// FileSource gives access to system files.
	FileSource interface {
		Exists(id entity.ID) bool
		Cat(id entity.ID) ([]byte, error)
	}

	// TxnContext gives access to the transaction being handled.
	TxnContext interface {
		Accessor() *transaction.Accessor
		ConsensusTime() time.Time
	}

	// UsagePricesProvider resolves prices of functionalities.
	UsagePricesProvider interface {
		LoadPriceSchedules() error
		ActivePrices() schedule.FeeData
		PricesGiven(fn transaction.Functionality, at time.Time) schedule.FeeData
	}
)

// BasicUsagePrices is an UsagePricesProvider reading schedules from the
// file system.
type BasicUsagePrices struct {
	files  FileSource
	fileID entity.ID
	txnCtx TxnContext
	log    *zap.Logger

	lock      sync.RWMutex
	schedules *schedule.CurrentAndNextFeeSchedule
}

// NewBasicUsagePrices creates a provider reading schedules from the given
// file, txnCtx is used to get active prices.
func NewBasicUsagePrices(files FileSource, fileID entity.ID, txnCtx TxnContext, log *zap.Logger) *BasicUsagePrices {
	if log == nil {
		log = zap.NewNop()
	}
	return &BasicUsagePrices{
		files:  files,
		fileID: fileID,
		txnCtx: txnCtx,
		log:    log,
	}
}

// LoadPriceSchedules reads and decodes the fee schedules file.
func (p *BasicUsagePrices) LoadPriceSchedules() error {
	if !p.files.Exists(p.fileID) {
		return fmt.Errorf("%w: no fee schedules file %s", ErrPriceSchedulesUnavailable, p.fileID)
	}
	data, err := p.files.Cat(p.fileID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPriceSchedulesUnavailable, err)
	}
	var s schedule.CurrentAndNextFeeSchedule
	if err = s.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrPriceSchedulesUnavailable, err)
	}
	p.SetFeeSchedules(s)
	return nil
}

// SetFeeSchedules replaces the schedules used.
func (p *BasicUsagePrices) SetFeeSchedules(s schedule.CurrentAndNextFeeSchedule) {
	p.lock.Lock()
	p.schedules = &s
	p.lock.Unlock()
	p.log.Info("fee schedules set",
		zap.Int64("current expiry", s.Current.Expiry),
		zap.Int64("next expiry", s.Next.Expiry))
}

// ActivePricesSchedules returns the schedules used, they're empty if nothing
// was loaded yet.
func (p *BasicUsagePrices) ActivePricesSchedules() schedule.CurrentAndNextFeeSchedule {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.schedules == nil {
		return schedule.CurrentAndNextFeeSchedule{}
	}
	return *p.schedules
}

// OnFileUpdate reloads schedules when the fee schedules file changes, it's
// intended to be registered as a file system hook.
func (p *BasicUsagePrices) OnFileUpdate(id entity.ID, data []byte) {
	if id != p.fileID {
		return
	}
	var s schedule.CurrentAndNextFeeSchedule
	if err := s.Decode(data); err != nil {
		p.log.Error("can't decode updated fee schedules", zap.Stringer("file", id), zap.Error(err))
		return
	}
	p.SetFeeSchedules(s)
}

// ActivePrices returns prices of the transaction being handled at its
// consensus time. It never fails, default prices are returned when there is
// no transaction or prices can't be resolved.
func (p *BasicUsagePrices) ActivePrices() schedule.FeeData {
	var (
		fn  transaction.Functionality
		at  time.Time
		err = errNoActiveTxn
	)
	if p.txnCtx != nil {
		if acc := p.txnCtx.Accessor(); acc != nil {
			fn, at = acc.Function(), p.txnCtx.ConsensusTime()
			var fd schedule.FeeData
			fd, err = p.resolve(fn, at)
			if err == nil {
				return fd
			}
		}
	}
	return p.orDefault(fn, at, err)
}

// PricesGiven returns prices of the functionality at the given time. It
// never fails, default prices are returned when prices can't be resolved.
func (p *BasicUsagePrices) PricesGiven(fn transaction.Functionality, at time.Time) schedule.FeeData {
	fd, err := p.resolve(fn, at)
	if err != nil {
		return p.orDefault(fn, at, err)
	}
	return fd
}

// resolve picks the next schedule iff at is in [current expiry, next expiry)
// and the current one otherwise.
func (p *BasicUsagePrices) resolve(fn transaction.Functionality, at time.Time) (schedule.FeeData, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.schedules == nil {
		return schedule.FeeData{}, errSchedulesNotLoaded
	}
	var (
		sec = at.Unix()
		s   = &p.schedules.Current
	)
	if p.schedules.Current.Expiry <= sec && sec < p.schedules.Next.Expiry {
		s = &p.schedules.Next
	}
	fd, ok := s.Lookup(fn)
	if !ok {
		return schedule.FeeData{}, fmt.Errorf("%w %s", errMissingPrices, fn)
	}
	return fd, nil
}

func (p *BasicUsagePrices) orDefault(fn transaction.Functionality, at time.Time, err error) schedule.FeeData {
	p.log.Warn("using default usage prices",
		zap.Stringer("function", fn),
		zap.Time("at", at),
		zap.Error(err))
	countDefaultPrices()
	return DefaultUsagePrices
}
