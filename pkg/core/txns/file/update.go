package file

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/files"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// UpdateTransitionLogic handles FileUpdate transactions.
type UpdateTransitionLogic struct {
	base
}

var _ txns.TransitionLogic = (*UpdateTransitionLogic)(nil)

// NewUpdateTransitionLogic creates FileUpdate transition logic.
func NewUpdateTransitionLogic(fs *files.FS, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *UpdateTransitionLogic {
	return &UpdateTransitionLogic{newBase(fs, v, ctx, log)}
}

// Applicability implements the txns.TransitionLogic interface.
func (u *UpdateTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.FileUpdate)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (u *UpdateTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.FileUpdate)
	if op.Memo != nil {
		if code := u.validator.MemoCheck(*op.Memo); code != response.OK {
			return code
		}
	}
	if !op.Keys.IsEmpty() && !u.validator.HasGoodEncoding(op.Keys) {
		return response.BadEncoding
	}
	if len(op.Contents) > u.validator.MaxFileSize() {
		return response.MaxFileSizeExceeded
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
// Immutable files can only have their expiry extended, expiry is never
// reduced.
func (u *UpdateTransitionLogic) DoStateTransition() {
	txns.Guard(u.ctx, u.log, func() error {
		op := u.ctx.Accessor().Body().Data.(*transaction.FileUpdate)
		meta, code, err := u.usable(op.File)
		if err != nil || code != response.OK {
			u.ctx.SetStatus(code)
			return err
		}
		if isImmutable(meta) && (op.Keys != nil || op.Contents != nil || op.Memo != nil) {
			u.ctx.SetStatus(response.AuthorizationFailed)
			return nil
		}
		if op.Expiry != nil {
			if !u.validator.IsValidExpiry(*op.Expiry, u.ctx.ConsensusTime()) {
				u.ctx.SetStatus(response.InvalidExpirationTime)
				return nil
			}
			meta.Expiry = max(meta.Expiry, *op.Expiry)
		}
		if op.Keys != nil {
			meta.WACL = op.Keys.Copy()
		}
		if op.Memo != nil {
			meta.Memo = *op.Memo
		}
		if err := u.fs.SetAttr(op.File, meta); err != nil {
			return u.finish(err)
		}
		if op.Contents != nil {
			return u.finish(u.fs.Overwrite(op.File, op.Contents))
		}
		u.ctx.SetStatus(response.Success)
		return nil
	})
}
