package fees

import (
	"fmt"
	"sync"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"go.uber.org/zap"
)

// HbarCentExchange provides hbar to cent exchange rates.
type HbarCentExchange interface {
	// ActiveRate returns the rate at the consensus time of the transaction
	// being handled.
	ActiveRate() schedule.ExchangeRate
	Rate(at time.Time) schedule.ExchangeRate
}

// BasicExchange is a HbarCentExchange reading rates from the file system.
type BasicExchange struct {
	files  FileSource
	fileID entity.ID
	txnCtx TxnContext
	log    *zap.Logger

	lock  sync.RWMutex
	rates schedule.ExchangeRateSet
}

// NewBasicExchange creates an exchange reading rates from the given file.
func NewBasicExchange(files FileSource, fileID entity.ID, txnCtx TxnContext, log *zap.Logger) *BasicExchange {
	if log == nil {
		log = zap.NewNop()
	}
	return &BasicExchange{
		files:  files,
		fileID: fileID,
		txnCtx: txnCtx,
		log:    log,
	}
}

// LoadRates reads and decodes the exchange rates file.
func (e *BasicExchange) LoadRates() error {
	if !e.files.Exists(e.fileID) {
		return fmt.Errorf("%w: no exchange rates file %s", ErrRatesUnavailable, e.fileID)
	}
	data, err := e.files.Cat(e.fileID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRatesUnavailable, err)
	}
	var s schedule.ExchangeRateSet
	if err = s.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrRatesUnavailable, err)
	}
	e.SetRates(s)
	return nil
}

// SetRates replaces rates used.
func (e *BasicExchange) SetRates(s schedule.ExchangeRateSet) {
	e.lock.Lock()
	e.rates = s
	e.lock.Unlock()
	e.log.Info("exchange rates set",
		zap.Int32("hbar", s.Current.HbarEquiv),
		zap.Int32("cents", s.Current.CentEquiv),
		zap.Int64("expiry", s.Current.Expiry))
}

// Rates returns rates used.
func (e *BasicExchange) Rates() schedule.ExchangeRateSet {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.rates
}

// OnFileUpdate reloads rates when the exchange rates file changes.
func (e *BasicExchange) OnFileUpdate(id entity.ID, data []byte) {
	if id != e.fileID {
		return
	}
	var s schedule.ExchangeRateSet
	if err := s.Decode(data); err != nil {
		e.log.Error("can't decode updated exchange rates", zap.Stringer("file", id), zap.Error(err))
		return
	}
	e.SetRates(s)
}

// ActiveRate implements the HbarCentExchange interface.
func (e *BasicExchange) ActiveRate() schedule.ExchangeRate {
	var at time.Time
	if e.txnCtx != nil {
		at = e.txnCtx.ConsensusTime()
	}
	return e.Rate(at)
}

// Rate implements the HbarCentExchange interface, the current rate is used
// before its expiry and the next one after.
func (e *BasicExchange) Rate(at time.Time) schedule.ExchangeRate {
	e.lock.RLock()
	defer e.lock.RUnlock()
	if at.Unix() < e.rates.Current.Expiry {
		return e.rates.Current
	}
	return e.rates.Next
}
