package file

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/files"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// DeleteTransitionLogic handles FileDelete transactions.
type DeleteTransitionLogic struct {
	base
}

var _ txns.TransitionLogic = (*DeleteTransitionLogic)(nil)

// NewDeleteTransitionLogic creates FileDelete transition logic.
func NewDeleteTransitionLogic(fs *files.FS, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *DeleteTransitionLogic {
	return &DeleteTransitionLogic{newBase(fs, v, ctx, log)}
}

// Applicability implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.FileDelete)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	if body.Data.(*transaction.FileDelete).File.IsZero() {
		return response.InvalidFileID
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) DoStateTransition() {
	txns.Guard(d.ctx, d.log, func() error {
		op := d.ctx.Accessor().Body().Data.(*transaction.FileDelete)
		meta, code, err := d.usable(op.File)
		if err != nil || code != response.OK {
			d.ctx.SetStatus(code)
			return err
		}
		if isImmutable(meta) {
			d.ctx.SetStatus(response.EntityNotAllowedToDelete)
			return nil
		}
		return d.finish(d.fs.Delete(op.File))
	})
}
