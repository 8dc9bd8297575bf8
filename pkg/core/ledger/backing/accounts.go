package backing

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/fcmap"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"go.uber.org/zap"
)

type (
	// AccountsMap is the persistent account map.
	AccountsMap = fcmap.StoreMap[entity.ID, *entity.Account]
	// TokenRelsMap is the persistent token relationship map.
	TokenRelsMap = fcmap.StoreMap[entity.RelKey, *entity.TokenRel]
	// TokensMap is the persistent token map.
	TokensMap = fcmap.StoreMap[entity.ID, *entity.Token]
	// SchedulesMap is the persistent schedule map.
	SchedulesMap = fcmap.StoreMap[entity.ID, *entity.Schedule]

	// Accounts backs the accounts ledger.
	Accounts = FCMap[entity.ID, *entity.Account]
	// TokenRels backs the token relationships ledger.
	TokenRels = FCMap[entity.RelKey, *entity.TokenRel]
)

var (
	_ txledger.BackingStore[entity.ID, *entity.Account]      = (*Accounts)(nil)
	_ txledger.BackingStore[entity.RelKey, *entity.TokenRel] = (*TokenRels)(nil)
	_ txledger.BackingStore[entity.ID, *entity.Account]      = (*Pure[entity.ID, *entity.Account])(nil)
)

// NewAccountsMap creates the account map over the store.
func NewAccountsMap(st storage.Store, log *zap.Logger) *AccountsMap {
	return fcmap.NewStoreMap[entity.ID, *entity.Account](st, storage.STAccount,
		func() *entity.Account { return new(entity.Account) }, entity.IDFromBytes, log)
}

// NewTokenRelsMap creates the token relationship map over the store.
func NewTokenRelsMap(st storage.Store, log *zap.Logger) *TokenRelsMap {
	return fcmap.NewStoreMap[entity.RelKey, *entity.TokenRel](st, storage.STTokenRel,
		func() *entity.TokenRel { return new(entity.TokenRel) }, entity.RelKeyFromBytes, log)
}

// NewTokensMap creates the token map over the store.
func NewTokensMap(st storage.Store, log *zap.Logger) *TokensMap {
	return fcmap.NewStoreMap[entity.ID, *entity.Token](st, storage.STToken,
		func() *entity.Token { return new(entity.Token) }, entity.IDFromBytes, log)
}

// NewSchedulesMap creates the schedule map over the store.
func NewSchedulesMap(st storage.Store, log *zap.Logger) *SchedulesMap {
	return fcmap.NewStoreMap[entity.ID, *entity.Schedule](st, storage.STSchedule,
		func() *entity.Schedule { return new(entity.Schedule) }, entity.IDFromBytes, log)
}

// NewAccounts creates accounts backing store flushing references in
// ascending id order.
func NewAccounts(m fcmap.Map[entity.ID, *entity.Account], log *zap.Logger) *Accounts {
	return NewFCMap[entity.ID, *entity.Account](m, entity.Compare, log)
}

// NewTokenRels creates token relationships backing store.
func NewTokenRels(m fcmap.Map[entity.RelKey, *entity.TokenRel], log *zap.Logger) *TokenRels {
	return NewFCMap[entity.RelKey, *entity.TokenRel](m, entity.CompareRel, log)
}
