/*
Package ledger implements account balance and token relationship
operations on top of the transactional accounts and token relationships
ledgers. It enforces that no transaction creates or destroys currency.
*/
package ledger

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/properties"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"go.uber.org/zap"
)

type (
	// AccountsLedger is the transactional ledger of accounts.
	AccountsLedger = txledger.Ledger[entity.ID, properties.AccountProperty, *entity.Account]
	// TokenRelsLedger is the transactional ledger of account-token
	// relationships.
	TokenRelsLedger = txledger.Ledger[entity.RelKey, properties.TokenRelProperty, *entity.TokenRel]
)

// NewAccountsLedger creates an accounts ledger applying creations and
// removals in ascending id order.
func NewAccountsLedger(b txledger.BackingStore[entity.ID, *entity.Account], log *zap.Logger) *AccountsLedger {
	l := txledger.New[entity.ID, properties.AccountProperty](func() *entity.Account { return new(entity.Account) }, b, log)
	l.SetKeyComparator(entity.Compare)
	l.SetKeyToString(entity.ID.String)
	return l
}

// NewTokenRelsLedger creates a token relationships ledger applying
// creations and removals in ascending key order.
func NewTokenRelsLedger(b txledger.BackingStore[entity.RelKey, *entity.TokenRel], log *zap.Logger) *TokenRelsLedger {
	l := txledger.New[entity.RelKey, properties.TokenRelProperty](func() *entity.TokenRel { return new(entity.TokenRel) }, b, log)
	l.SetKeyComparator(entity.CompareRel)
	l.SetKeyToString(entity.RelKey.String)
	return l
}
