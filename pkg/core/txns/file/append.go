package file

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/files"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// AppendTransitionLogic handles FileAppend transactions.
type AppendTransitionLogic struct {
	base
}

var _ txns.TransitionLogic = (*AppendTransitionLogic)(nil)

// NewAppendTransitionLogic creates FileAppend transition logic.
func NewAppendTransitionLogic(fs *files.FS, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *AppendTransitionLogic {
	return &AppendTransitionLogic{newBase(fs, v, ctx, log)}
}

// Applicability implements the txns.TransitionLogic interface.
func (a *AppendTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.FileAppend)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (a *AppendTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.FileAppend)
	if len(op.Contents) > a.validator.MaxFileSize() {
		return response.MaxFileSizeExceeded
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (a *AppendTransitionLogic) DoStateTransition() {
	txns.Guard(a.ctx, a.log, func() error {
		op := a.ctx.Accessor().Body().Data.(*transaction.FileAppend)
		meta, code, err := a.usable(op.File)
		if err != nil || code != response.OK {
			a.ctx.SetStatus(code)
			return err
		}
		if isImmutable(meta) {
			a.ctx.SetStatus(response.AuthorizationFailed)
			return nil
		}
		return a.finish(a.fs.Append(op.File, op.Contents))
	})
}
