/*
Package crypto implements transition logic of account transactions.
*/
package crypto

import (
	"errors"

	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// CreateTransitionLogic handles CryptoCreate transactions.
type CreateTransitionLogic struct {
	ledger    *ledger.Ledger
	validator *validation.Validator
	ctx       txns.TransactionContext
	log       *zap.Logger
}

var _ txns.TransitionLogic = (*CreateTransitionLogic)(nil)

// NewCreateTransitionLogic creates CryptoCreate transition logic.
func NewCreateTransitionLogic(l *ledger.Ledger, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *CreateTransitionLogic {
	if log == nil {
		log = zap.NewNop()
	}
	return &CreateTransitionLogic{ledger: l, validator: v, ctx: ctx, log: log}
}

// Applicability implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.CryptoCreate)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.CryptoCreate)
	if code := c.validator.MemoCheck(op.Memo); code != response.OK {
		return code
	}
	if op.Key == nil {
		return response.KeyRequired
	}
	if !c.validator.HasGoodEncoding(op.Key) {
		return response.BadEncoding
	}
	if op.InitialBalance < 0 {
		return response.InvalidInitialBalance
	}
	if op.AutoRenewPeriod <= 0 {
		return response.InvalidRenewalPeriod
	}
	if !c.validator.IsValidAutoRenewPeriod(op.AutoRenewPeriod) {
		return response.AutorenewDurationNotInRange
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) DoStateTransition() {
	txns.Guard(c.ctx, c.log, func() error {
		op := c.ctx.Accessor().Body().Data.(*transaction.CryptoCreate)
		customizer := ledger.NewAccountCustomizer().
			Key(op.Key).
			Memo(op.Memo).
			Proxy(op.Proxy).
			Expiry(c.ctx.ConsensusTime().Unix() + op.AutoRenewPeriod).
			AutoRenewPeriod(op.AutoRenewPeriod).
			IsReceiverSigRequired(op.ReceiverSigRequired)
		id, err := c.ledger.Create(c.ctx.ActivePayer(), op.InitialBalance, customizer)
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			c.ctx.SetStatus(response.InsufficientPayerBalance)
			return nil
		case err != nil:
			c.ctx.SetStatus(ledger.CodeOf(err))
			return nil
		}
		c.ctx.SetCreated(id)
		c.ctx.SetStatus(response.Success)
		return nil
	})
}
