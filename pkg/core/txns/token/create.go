package token

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"go.uber.org/zap"
)

// CreateTransitionLogic handles TokenCreate transactions. The treasury gets
// associated with the new token, unfrozen, KYC-granted and credited with the
// initial supply.
type CreateTransitionLogic struct {
	Deps
}

var _ txns.TransitionLogic = (*CreateTransitionLogic)(nil)

// NewCreateTransitionLogic creates TokenCreate transition logic.
func NewCreateTransitionLogic(d Deps) *CreateTransitionLogic {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &CreateTransitionLogic{d}
}

// Applicability implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.TokenCreate)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.TokenCreate)
	if code := c.Validator.TokenSymbolCheck(op.Symbol); code != response.OK {
		return code
	}
	if code := c.Validator.TokenNameCheck(op.Name); code != response.OK {
		return code
	}
	if op.Treasury.IsZero() {
		return response.InvalidTreasuryAccountForToken
	}
	if op.FreezeDefault && op.FreezeKey == nil {
		return response.TokenHasNoFreezeKey
	}
	if !op.AutoRenewAccount.IsZero() && !c.Validator.IsValidAutoRenewPeriod(op.AutoRenewPeriod) {
		return response.InvalidRenewalPeriod
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) DoStateTransition() {
	txns.Guard(c.Ctx, c.Log, func() error {
		op := c.Ctx.Accessor().Body().Data.(*transaction.TokenCreate)
		id, code := c.Store.CreateProvisionally(op, c.Ctx.ActivePayer(), c.Ctx.ConsensusTime().Unix())
		if code != response.OK {
			c.Ctx.SetStatus(code)
			return nil
		}
		code = c.setupTreasury(op, id)
		if code != response.OK {
			c.Store.RollbackCreation()
			c.Ledger.DropPendingTokenChanges()
			c.Ctx.SetStatus(code)
			return nil
		}
		if err := c.Store.CommitCreation(); err != nil {
			return err
		}
		c.Ctx.SetCreated(id)
		c.Ctx.SetStatus(response.Success)
		return nil
	})
}

func (c *CreateTransitionLogic) setupTreasury(op *transaction.TokenCreate, id entity.ID) response.Code {
	code := c.Store.Associate(op.Treasury, []entity.ID{id})
	if code == response.OK && op.FreezeKey != nil {
		code = c.Store.Unfreeze(op.Treasury, id)
	}
	if code == response.OK && op.KycKey != nil {
		code = c.Store.GrantKyc(op.Treasury, id)
	}
	if code == response.OK {
		code = c.Ledger.AdjustTokenBalance(op.Treasury, id, int64(op.InitialSupply))
	}
	return code
}
