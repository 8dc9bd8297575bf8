package schedule

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/store/schedules"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"go.uber.org/zap"
)

// DeleteTransitionLogic handles ScheduleDelete transactions.
type DeleteTransitionLogic struct {
	store *schedules.Store
	ctx   txns.TransactionContext
	log   *zap.Logger
}

var _ txns.TransitionLogic = (*DeleteTransitionLogic)(nil)

// NewDeleteTransitionLogic creates ScheduleDelete transition logic.
func NewDeleteTransitionLogic(s *schedules.Store, ctx txns.TransactionContext, log *zap.Logger) *DeleteTransitionLogic {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeleteTransitionLogic{store: s, ctx: ctx, log: log}
}

// Applicability implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.ScheduleDelete)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	if body.Data.(*transaction.ScheduleDelete).Schedule.IsZero() {
		return response.InvalidScheduleID
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (d *DeleteTransitionLogic) DoStateTransition() {
	txns.Guard(d.ctx, d.log, func() error {
		op := d.ctx.Accessor().Body().Data.(*transaction.ScheduleDelete)
		code := d.store.Delete(op.Schedule)
		if code == response.OK {
			code = response.Success
		}
		d.ctx.SetStatus(code)
		return nil
	})
}
