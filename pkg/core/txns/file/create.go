package file

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/files"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// CreateTransitionLogic handles FileCreate transactions.
type CreateTransitionLogic struct {
	base
}

var _ txns.TransitionLogic = (*CreateTransitionLogic)(nil)

// NewCreateTransitionLogic creates FileCreate transition logic.
func NewCreateTransitionLogic(fs *files.FS, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *CreateTransitionLogic {
	return &CreateTransitionLogic{newBase(fs, v, ctx, log)}
}

// Applicability implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.FileCreate)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface. Files without
// keys are immutable.
func (c *CreateTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.FileCreate)
	if code := c.validator.MemoCheck(op.Memo); code != response.OK {
		return code
	}
	if !op.Keys.IsEmpty() && !c.validator.HasGoodEncoding(op.Keys) {
		return response.BadEncoding
	}
	if len(op.Contents) > c.validator.MaxFileSize() {
		return response.MaxFileSizeExceeded
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) DoStateTransition() {
	txns.Guard(c.ctx, c.log, func() error {
		op := c.ctx.Accessor().Body().Data.(*transaction.FileCreate)
		if !c.validator.IsValidExpiry(op.Expiry, c.ctx.ConsensusTime()) {
			c.ctx.SetStatus(response.InvalidExpirationTime)
			return nil
		}
		id, err := c.fs.Create(op.Contents, &entity.FileMeta{
			WACL:   op.Keys.Copy(),
			Memo:   op.Memo,
			Expiry: op.Expiry,
		}, c.ctx.ActivePayer())
		if err == nil {
			c.ctx.SetCreated(id)
		}
		return c.finish(err)
	})
}
