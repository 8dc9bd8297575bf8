package crypto

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"go.uber.org/zap"
)

// DeleteTransitionLogic handles CryptoDelete transactions.
type DeleteTransitionLogic struct {
	ledger *ledger.Ledger
	ctx    txns.TransactionContext
	log    *zap.Logger
}

var _ txns.TransitionLogic = (*DeleteTransitionLogic)(nil)

// NewDeleteTransitionLogic creates CryptoDelete transition logic.
func NewDeleteTransitionLogic(l *ledger.Ledger, ctx txns.TransactionContext, log *zap.Logger) *DeleteTransitionLogic {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeleteTransitionLogic{ledger: l, ctx: ctx, log: log}
}

// Applicability implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.CryptoDelete)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.CryptoDelete)
	if op.Account.IsZero() || op.Transfer.IsZero() {
		return response.InvalidAccountID
	}
	if op.Account == op.Transfer {
		return response.TransferAccountSameAsDeleteAccount
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) DoStateTransition() {
	txns.Guard(d.ctx, d.log, func() error {
		op := d.ctx.Accessor().Body().Data.(*transaction.CryptoDelete)
		for _, id := range []entity.ID{op.Account, op.Transfer} {
			if !d.ledger.Exists(id) {
				d.ctx.SetStatus(response.InvalidAccountID)
				return nil
			}
		}
		if d.ledger.IsKnownTreasury(op.Account) {
			d.ctx.SetStatus(response.AccountIsTreasury)
			return nil
		}
		vanish, err := d.ledger.AllTokenBalancesVanish(op.Account)
		if err != nil {
			return err
		}
		if !vanish {
			d.ctx.SetStatus(response.TransactionRequiresZeroTokenBalances)
			return nil
		}
		if err := d.ledger.Delete(op.Account, op.Transfer); err != nil {
			d.ctx.SetStatus(ledger.CodeOf(err))
			return nil
		}
		d.ctx.SetStatus(response.Success)
		return nil
	})
}
