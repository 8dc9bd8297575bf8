/*
Package token implements transition logic of token transactions.
*/
package token

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/store/tokens"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// Deps are the dependencies shared by token transition logics.
type Deps struct {
	Store     *tokens.Store
	Ledger    *ledger.Ledger
	Validator *validation.Validator
	Ctx       txns.TransactionContext
	Log       *zap.Logger
}

// Operation is a single token operation on data of type T. Check is the
// stateless syntax check, Apply changes the token store or ledger.
type Operation[T transaction.Data] interface {
	Check(op T) response.Code
	Apply(op T) response.Code
}

// TransitionLogic handles token transactions with data of type T. Failures
// drop pending token changes, so none of them gets committed.
type TransitionLogic[T transaction.Data] struct {
	Deps
	op Operation[T]
}

var _ txns.TransitionLogic = (*TransitionLogic[*transaction.TokenMint])(nil)

// NewTransitionLogic creates transition logic running op.
func NewTransitionLogic[T transaction.Data](d Deps, op Operation[T]) *TransitionLogic[T] {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &TransitionLogic[T]{Deps: d, op: op}
}

// Applicability implements the txns.TransitionLogic interface.
func (l *TransitionLogic[T]) Applicability(body *transaction.Body) bool {
	_, ok := body.Data.(T)
	return ok
}

// SyntaxCheck implements the txns.TransitionLogic interface.
func (l *TransitionLogic[T]) SyntaxCheck(body *transaction.Body) response.Code {
	return l.op.Check(body.Data.(T))
}

// DoStateTransition implements the txns.TransitionLogic interface.
func (l *TransitionLogic[T]) DoStateTransition() {
	txns.Guard(l.Ctx, l.Log, func() error {
		code := l.op.Apply(l.Ctx.Accessor().Body().Data.(T))
		if code != response.OK {
			l.Ledger.DropPendingTokenChanges()
			l.Ctx.SetStatus(code)
			return nil
		}
		l.Ctx.SetStatus(response.Success)
		return nil
	})
}

func checkToken(token entity.ID) response.Code {
	if token.IsZero() {
		return response.InvalidTokenID
	}
	return response.OK
}

func checkTokenAndAccount(token, account entity.ID) response.Code {
	if account.IsZero() {
		return response.InvalidAccountID
	}
	return checkToken(token)
}

func checkTokenList(account entity.ID, tokens []entity.ID) response.Code {
	if account.IsZero() {
		return response.InvalidAccountID
	}
	seen := make(map[entity.ID]struct{}, len(tokens))
	for _, t := range tokens {
		if code := checkToken(t); code != response.OK {
			return code
		}
		if _, ok := seen[t]; ok {
			return response.TokenIDRepeatedInTokenList
		}
		seen[t] = struct{}{}
	}
	return response.OK
}
