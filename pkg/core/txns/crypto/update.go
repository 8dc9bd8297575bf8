package crypto

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// UpdateTransitionLogic handles CryptoUpdate transactions.
type UpdateTransitionLogic struct {
	ledger    *ledger.Ledger
	validator *validation.Validator
	ctx       txns.TransactionContext
	log       *zap.Logger
}

var _ txns.TransitionLogic = (*UpdateTransitionLogic)(nil)

// NewUpdateTransitionLogic creates CryptoUpdate transition logic.
func NewUpdateTransitionLogic(l *ledger.Ledger, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *UpdateTransitionLogic {
	if log == nil {
		log = zap.NewNop()
	}
	return &UpdateTransitionLogic{ledger: l, validator: v, ctx: ctx, log: log}
}

// Applicability implements the txns.TransitionLogic interface.
func (u *UpdateTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.CryptoUpdate)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (u *UpdateTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.CryptoUpdate)
	if op.Memo != nil {
		if code := u.validator.MemoCheck(*op.Memo); code != response.OK {
			return code
		}
	}
	if op.Key != nil && !u.validator.HasGoodEncoding(op.Key) {
		return response.BadEncoding
	}
	if op.AutoRenewPeriod != nil && !u.validator.IsValidAutoRenewPeriod(*op.AutoRenewPeriod) {
		return response.AutorenewDurationNotInRange
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (u *UpdateTransitionLogic) DoStateTransition() {
	txns.Guard(u.ctx, u.log, func() error {
		op := u.ctx.Accessor().Body().Data.(*transaction.CryptoUpdate)
		if !u.ledger.Exists(op.Account) {
			u.ctx.SetStatus(response.InvalidAccountID)
			return nil
		}
		deleted, err := u.ledger.IsDeleted(op.Account)
		if err != nil {
			return err
		}
		if deleted {
			u.ctx.SetStatus(response.AccountDeleted)
			return nil
		}

		c := ledger.NewAccountCustomizer()
		if op.Expiry != nil {
			if !u.validator.IsValidExpiry(*op.Expiry, u.ctx.ConsensusTime()) {
				u.ctx.SetStatus(response.InvalidExpirationTime)
				return nil
			}
			current, err := u.ledger.Expiry(op.Account)
			if err != nil {
				return err
			}
			if *op.Expiry < current {
				u.ctx.SetStatus(response.ExpirationReductionNotAllowed)
				return nil
			}
			c.Expiry(*op.Expiry)
		}
		if op.Key != nil {
			c.Key(op.Key)
		}
		if op.Memo != nil {
			c.Memo(*op.Memo)
		}
		if op.Proxy != nil {
			c.Proxy(*op.Proxy)
		}
		if op.AutoRenewPeriod != nil {
			c.AutoRenewPeriod(*op.AutoRenewPeriod)
		}
		if op.ReceiverSigRequired != nil {
			c.IsReceiverSigRequired(*op.ReceiverSigRequired)
		}
		if !c.IsEmpty() {
			if err := u.ledger.Customize(op.Account, c); err != nil {
				u.ctx.SetStatus(ledger.CodeOf(err))
				return nil
			}
		}
		u.ctx.SetStatus(response.Success)
		return nil
	})
}
