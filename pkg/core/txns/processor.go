package txns

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/properties"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/fees"
	"go.uber.org/zap"
)

type (
	// FeeCalculator computes transaction fees.
	FeeCalculator interface {
		ComputeFee(accessor *transaction.Accessor, payerKey *keys.Key, view *state.View) (fees.FeeObject, error)
		EstimatedNonFeePayerAdjustments(accessor *transaction.Accessor, at time.Time) int64
	}

	// MultiplierUpdater refreshes the congestion multiplier.
	MultiplierUpdater interface {
		UpdateMultiplier(now time.Time)
	}

	// IDs is the entity id source that can be saved to the store.
	IDs interface {
		entity.IDSource
		Flush(store storage.Store) error
	}

	// Store is the cached store all the state lives in.
	Store interface {
		storage.Store
		Persist() (int, error)
		Reset()
	}
)

// Config contains everything the processor works with.
type Config struct {
	Store      Store
	Ledger     *ledger.Ledger
	IDs        IDs
	Fees       FeeCalculator
	Multiplier MultiplierUpdater
	View       *state.View
	// Funding is the account receiving network and service fees.
	Funding entity.ID
	Logics  []TransitionLogic
	// Resets are called after failed transaction changes are dropped from
	// the store, they must drop everything cached over it.
	Resets []func()
}

// Processor handles transactions one by one.
type Processor struct {
	Config
	ctx *BasicContext
	log *zap.Logger
}

// NewProcessor creates a processor, ctx is the context shared with
// transition logic.
func NewProcessor(cfg Config, ctx *BasicContext, log *zap.Logger) (*Processor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Store == nil || cfg.Ledger == nil || cfg.IDs == nil || cfg.Fees == nil {
		return nil, errors.New("store, ledger, ids and fees are mandatory")
	}
	if ctx == nil {
		return nil, errors.New("nil transaction context")
	}
	return &Processor{Config: cfg, ctx: ctx, log: log}, nil
}

// Context returns the transaction context.
func (p *Processor) Context() *BasicContext {
	return p.ctx
}

// Process handles the transaction at the given consensus time. Transactions
// failing prechecks are not charged, others are charged fees whatever the
// outcome is. Errors are returned only if the state can't be saved.
func (p *Processor) Process(accessor *transaction.Accessor, now time.Time) (*Record, error) {
	p.ctx.Reset(accessor, now)
	rec := &Record{TxID: accessor.TxID(), ConsensusTime: now}

	if code := p.checkTime(accessor.Body(), now); code != response.OK {
		rec.Status = code
		countProcessed(code.String())
		return rec, nil
	}
	if p.Multiplier != nil {
		p.Multiplier.UpdateMultiplier(now)
	}
	if err := p.Ledger.Begin(); err != nil {
		return nil, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}

	fee, code := p.precheck(accessor, now)
	if code != response.OK {
		if err := p.Ledger.Rollback(); err != nil {
			return nil, err
		}
		countRollback()
		rec.Status = code
		countProcessed(code.String())
		return rec, nil
	}

	p.transition(accessor.Body())
	status := p.ctx.Status()
	if status == response.Success {
		err := p.chargeFees(accessor, fee)
		if err == nil {
			rec.Transfers = p.Ledger.NetTransfersInTxn()
			rec.TokenTransfers = p.Ledger.NetTokenTransfersInTxn()
			err = p.Ledger.Commit()
		}
		if err != nil {
			p.log.Error("failed to commit transaction",
				zap.Stringer("tx", accessor.TxID()),
				zap.String("changes", p.Ledger.ChangeSetSoFar()),
				zap.Error(err))
			status = response.FailInvalid
		} else {
			countCommit()
		}
	}
	if status != response.Success {
		var err error
		rec.Transfers, err = p.chargeFeesOnly(accessor, fee)
		if err != nil {
			return nil, err
		}
		rec.TokenTransfers = nil
		rec.Created = entity.ID{}
	} else {
		rec.Created = p.ctx.Created()
	}
	rec.Status = status
	rec.Fee = fee.Total()

	if err := p.IDs.Flush(p.Store); err != nil {
		return nil, fmt.Errorf("failed to save entity sequence: %w", err)
	}
	if _, err := p.Store.Persist(); err != nil {
		return nil, fmt.Errorf("failed to persist changes: %w", err)
	}
	p.IDs.ResetProvisionalIDs()
	addFees(rec.Fee)
	countProcessed(status.String())
	return rec, nil
}

func (p *Processor) checkTime(body *transaction.Body, now time.Time) response.Code {
	start := body.TransactionID.ValidStart
	if start.After(now) {
		return response.InvalidTransactionStart
	}
	if body.ValidDuration <= 0 {
		return response.InvalidTransactionDuration
	}
	if now.After(start.Add(time.Duration(body.ValidDuration) * time.Second)) {
		return response.TransactionExpired
	}
	return response.OK
}

func (p *Processor) precheck(accessor *transaction.Accessor, now time.Time) (fees.FeeObject, response.Code) {
	payer := accessor.Payer()
	if deleted, err := p.Ledger.IsDeleted(payer); err != nil || deleted {
		return fees.FeeObject{}, response.PayerAccountNotFound
	}
	node := accessor.Body().NodeAccount
	if deleted, err := p.Ledger.IsDeleted(node); err != nil || deleted {
		return fees.FeeObject{}, response.InvalidNodeAccount
	}
	payerKey, err := txledger.GetAs[*keys.Key](p.Ledger.Accounts(), payer, properties.Key)
	if err != nil {
		return fees.FeeObject{}, response.PayerAccountNotFound
	}
	fee, err := p.Fees.ComputeFee(accessor, payerKey, p.View)
	if err != nil {
		p.log.Debug("can't compute fee", zap.Stringer("tx", accessor.TxID()), zap.Error(err))
		return fees.FeeObject{}, response.InvalidTransactionBody
	}
	if uint64(fee.Total()) > accessor.Body().TransactionFee {
		return fee, response.InsufficientTxFee
	}
	balance, err := p.Ledger.GetBalance(payer)
	if err != nil {
		return fee, response.PayerAccountNotFound
	}
	// Non-fee adjustments are negative for outgoing transfers.
	if balance+min(0, p.Fees.EstimatedNonFeePayerAdjustments(accessor, now)) < fee.Total() {
		return fee, response.InsufficientPayerBalance
	}
	return fee, response.OK
}

func (p *Processor) transition(body *transaction.Body) {
	logic, ok := Select(p.Logics, body)
	if !ok {
		p.ctx.SetStatus(response.NotSupported)
		return
	}
	if code := logic.SyntaxCheck(body); code != response.OK {
		p.ctx.SetStatus(code)
		return
	}
	Guard(p.ctx, p.log, func() error {
		logic.DoStateTransition()
		return nil
	})
}

func (p *Processor) chargeFees(accessor *transaction.Accessor, fee fees.FeeObject) error {
	payer := accessor.Payer()
	if err := p.Ledger.DoTransfer(payer, accessor.Body().NodeAccount, fee.NodeFee); err != nil {
		return err
	}
	return p.Ledger.DoTransfer(payer, p.Funding, fee.NetworkFee+fee.ServiceFee)
}

// chargeFeesOnly drops all the changes made by the transaction and charges
// fees in a fresh ledger transaction.
func (p *Processor) chargeFeesOnly(accessor *transaction.Accessor, fee fees.FeeObject) (transaction.TransferList, error) {
	if err := p.Ledger.Rollback(); err != nil {
		p.log.Warn("rollback failed", zap.Error(err))
	}
	countRollback()
	p.Store.Reset()
	for _, reset := range p.Resets {
		reset()
	}
	p.IDs.ReclaimProvisionalIDs()

	if err := p.Ledger.Begin(); err != nil {
		return transaction.TransferList{}, fmt.Errorf("failed to begin fee transaction: %w", err)
	}
	if err := p.chargeFees(accessor, fee); err != nil {
		_ = p.Ledger.Rollback()
		return transaction.TransferList{}, fmt.Errorf("failed to charge fees: %w", err)
	}
	transfers := p.Ledger.NetTransfersInTxn()
	if err := p.Ledger.Commit(); err != nil {
		return transaction.TransferList{}, fmt.Errorf("failed to commit fees: %w", err)
	}
	countCommit()
	return transfers, nil
}
