package crypto

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// TransferTransitionLogic handles CryptoTransfer transactions moving hbars
// and tokens atomically.
type TransferTransitionLogic struct {
	ledger    *ledger.Ledger
	validator *validation.Validator
	ctx       txns.TransactionContext
	log       *zap.Logger
}

var _ txns.TransitionLogic = (*TransferTransitionLogic)(nil)

// NewTransferTransitionLogic creates CryptoTransfer transition logic.
func NewTransferTransitionLogic(l *ledger.Ledger, v *validation.Validator, ctx txns.TransactionContext, log *zap.Logger) *TransferTransitionLogic {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransferTransitionLogic{ledger: l, validator: v, ctx: ctx, log: log}
}

// Applicability implements the txns.TransitionLogic interface.
func (t *TransferTransitionLogic) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(*transaction.CryptoTransfer)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (t *TransferTransitionLogic) SyntaxCheck(body *transaction.Body) response.Code {
	op := body.Data.(*transaction.CryptoTransfer)
	if !t.validator.IsAcceptableTransfersLength(op.Transfers) {
		return response.TransferListSizeLimitExceeded
	}
	if code := BasicSyntaxCheck(op.Transfers); code != response.OK {
		return code
	}
	if len(op.TokenTransfers) == 0 {
		return response.OK
	}
	if code := t.validator.TokenTransfersLengthCheck(op.TokenTransfers); code != response.OK {
		return code
	}
	seen := make(map[entity.ID]struct{}, len(op.TokenTransfers))
	for _, tl := range op.TokenTransfers {
		if tl.Token.IsZero() {
			return response.InvalidTokenID
		}
		if _, ok := seen[tl.Token]; ok {
			return response.TokenIDRepeatedInTokenList
		}
		seen[tl.Token] = struct{}{}
		if tl.HasRepeatedAccount() {
			return response.AccountRepeatedInAccountAmounts
		}
	}
	return response.OK
}

// BasicSyntaxCheck validates hbar transfer list. Repeated accounts are
// checked before the sum, so a list that is both repeated and unbalanced
// gets AccountRepeatedInAccountAmounts.
func BasicSyntaxCheck(transfers transaction.TransferList) response.Code {
	if transfers.HasRepeatedAccount() {
		return response.AccountRepeatedInAccountAmounts
	}
	if sum, err := transfers.Sum(); err != nil || sum != 0 {
		return response.InvalidAccountAmounts
	}
	return response.OK
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (t *TransferTransitionLogic) DoStateTransition() {
	txns.Guard(t.ctx, t.log, func() error {
		op := t.ctx.Accessor().Body().Data.(*transaction.CryptoTransfer)
		for _, aa := range op.Transfers.AccountAmounts {
			if !t.ledger.Exists(aa.Account) {
				t.ctx.SetStatus(response.InvalidAccountID)
				return nil
			}
		}
		code := t.ledger.DoAtomicTransfers(op.Transfers, op.TokenTransfers)
		if code != response.OK {
			t.ctx.SetStatus(code)
			return nil
		}
		t.ctx.SetStatus(response.Success)
		return nil
	})
}
