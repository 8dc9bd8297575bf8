/*
Package file implements transition logic of file transactions.
*/
package file

import (
	"errors"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/files"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// base holds dependencies shared by all file transition logics.
type base struct {
	fs        *files.FS
	validator *validation.Validator
	ctx       txns.TransactionContext
	log       *zap.Logger
}

func newBase(fs *files.FS, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) base {
	if log == nil {
		log = zap.NewNop()
	}
	return base{fs: fs, validator: v, ctx: ctx, log: log}
}

// codeOf maps file system errors to response codes, unexpected errors are
// returned as is.
func codeOf(err error) (response.Code, error) {
	switch {
	case err == nil:
		return response.OK, nil
	case errors.Is(err, files.ErrUnknownFile):
		return response.InvalidFileID, nil
	case errors.Is(err, files.ErrDeletedFile):
		return response.FileDeleted, nil
	case errors.Is(err, files.ErrOversizeContents):
		return response.MaxFileSizeExceeded, nil
	default:
		return response.FailInvalid, err
	}
}

// finish sets the status corresponding to the file system error.
func (b *base) finish(err error) error {
	code, err := codeOf(err)
	if err != nil {
		return err
	}
	if code == response.OK {
		code = response.Success
	}
	b.ctx.SetStatus(code)
	return nil
}

// usable returns attributes of the file that is not deleted.
func (b *base) usable(id entity.ID) (*entity.FileMeta, response.Code, error) {
	meta, err := b.fs.GetAttr(id)
	if err != nil {
		code, err := codeOf(err)
		return nil, code, err
	}
	if meta.Deleted {
		return nil, response.FileDeleted, nil
	}
	return meta, response.OK, nil
}

func isImmutable(meta *entity.FileMeta) bool {
	return meta.WACL == nil || meta.WACL.IsEmpty()
}
