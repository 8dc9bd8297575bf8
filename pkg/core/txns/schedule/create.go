/*
Package schedule implements transition logic of schedule transactions.
*/
package schedule

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/store/schedules"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// CreateTransitionLogic handles ScheduleCreate transactions. Only one live
// schedule may exist for a given transaction body.
type CreateTransitionLogic struct {
	store     *schedules.Store
	validator *validation.Validator
	ctx       txns.TransactionContext
	log       *zap.Logger
}

var _ txns.TransitionLogic = (*CreateTransitionLogic)(nil)

// NewCreateTransitionLogic creates ScheduleCreate transition logic.
func NewCreateTransitionLogic(s *schedules.Store, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *CreateTransitionLogic {
	if log == nil {
		log = zap.NewNop()
	}
	return &CreateTransitionLogic{store: s, validator: v, ctx: ctx, log: log}
}

// Applicability implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.ScheduleCreate)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.ScheduleCreate)
	if len(op.TransactionBody) == 0 {
		return response.InvalidTransactionBody
	}
	if code := c.validator.MemoCheck(op.Memo); code != response.OK {
		return code
	}
	if op.AdminKey != nil && !c.validator.HasGoodEncoding(op.AdminKey) {
		return response.InvalidAdminKey
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (c *CreateTransitionLogic) DoStateTransition() {
	txns.Guard(c.ctx, c.log, func() error {
		op := c.ctx.Accessor().Body().Data.(*transaction.ScheduleCreate)
		if existing, _, ok := c.store.LookupSchedule(op.TransactionBody); ok {
			c.log.Debug("identical schedule exists", zap.Stringer("schedule", existing))
			c.ctx.SetStatus(response.IdenticalScheduleAlreadyCreated)
			return nil
		}
		id, code := c.store.CreateProvisionally(&entity.Schedule{
			TransactionBody: op.TransactionBody,
			Payer:           op.Payer,
			SchedulingPayer: c.ctx.ActivePayer(),
			AdminKey:        op.AdminKey,
			Memo:            op.Memo,
		}, c.ctx.ConsensusTime().Unix())
		if code != response.OK {
			c.ctx.SetStatus(code)
			return nil
		}
		if err := c.store.CommitCreation(); err != nil {
			c.store.RollbackCreation()
			return err
		}
		c.ctx.SetCreated(id)
		c.ctx.SetStatus(response.Success)
		return nil
	})
}
