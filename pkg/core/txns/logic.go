package txns

import (
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"go.uber.org/zap"
)

// TransitionLogic handles one kind of transaction.
type TransitionLogic interface {
	// Applicability checks whether the logic handles the transaction.
	Applicability(body *transaction.Body) bool
	// SyntaxCheck validates the body without looking at the state.
	SyntaxCheck(body *transaction.Body) response.Code
	// DoStateTransition applies the transaction from the context, its
	// outcome is set as context status.
	DoStateTransition()
}

// Guard runs the transition setting FailInvalid status if it returns an
// error or panics. Business failures are expected to be reported via the
// context status with nil error.
func Guard(ctx TransactionContext, log *zap.Logger, transition func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("transition panicked",
				zap.Stringer("tx", ctx.Accessor().TxID()),
				zap.String("panic", fmt.Sprint(r)))
			ctx.SetStatus(response.FailInvalid)
		}
	}()
	if err := transition(); err != nil {
		log.Warn("transition failed",
			zap.Stringer("tx", ctx.Accessor().TxID()),
			zap.Error(err))
		ctx.SetStatus(response.FailInvalid)
	}
}

// Select returns the first logic applicable to the body.
func Select(logics []TransitionLogic, body *transaction.Body) (TransitionLogic, bool) {
	for _, l := range logics {
		if l.Applicability(body) {
			return l, true
		}
	}
	return nil, false
}
