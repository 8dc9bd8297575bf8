package ledger

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/properties"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"go.uber.org/zap"
)

var (
	// ErrInsufficientFunds is returned when the balance would become
	// negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDeletedAccount is returned for operations on deleted accounts.
	ErrDeletedAccount = errors.New("account is deleted")
	// ErrNonZeroNetAdjustment is returned when hbar adjustments don't sum
	// to zero.
	ErrNonZeroNetAdjustment = errors.New("net hbar adjustment is not zero")
)

// TokenStore is the part of the token store used by the ledger.
type TokenStore interface {
	Get(token entity.ID) (*entity.Token, error)
	AdjustBalance(account, token entity.ID, adjustment int64) response.Code
	Freeze(account, token entity.ID) response.Code
	Unfreeze(account, token entity.ID) response.Code
	GrantKyc(account, token entity.ID) response.Code
	RevokeKyc(account, token entity.ID) response.Code
	IsKnownTreasury(account entity.ID) bool
}

// Ledger is a domain level ledger operating accounts and token
// relationships.
type Ledger struct {
	ids       entity.IDSource
	accounts  *AccountsLedger
	tokenRels *TokenRelsLedger
	tokens    TokenStore
	log       *zap.Logger

	netTransfers map[entity.ID]int64
	// token -> account -> adjustment
	tokenAdjustments map[entity.ID]map[entity.ID]int64
}

// New creates a ledger. tokenRels can be nil if no token operations are to be
// performed, the token store is set separately with SetTokenStore.
func New(ids entity.IDSource, accounts *AccountsLedger, tokenRels *TokenRelsLedger, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		ids:              ids,
		accounts:         accounts,
		tokenRels:        tokenRels,
		log:              log,
		netTransfers:     make(map[entity.ID]int64),
		tokenAdjustments: make(map[entity.ID]map[entity.ID]int64),
	}
}

// SetTokenStore sets the token store used for token operations.
func (l *Ledger) SetTokenStore(ts TokenStore) {
	l.tokens = ts
}

// Accounts returns the underlying accounts ledger.
func (l *Ledger) Accounts() *AccountsLedger {
	return l.accounts
}

// TokenRels returns the underlying token relationships ledger.
func (l *Ledger) TokenRels() *TokenRelsLedger {
	return l.tokenRels
}

// Begin opens transactions in both underlying ledgers.
func (l *Ledger) Begin() error {
	if err := l.accounts.Begin(); err != nil {
		return err
	}
	if l.tokenRels != nil {
		if err := l.tokenRels.Begin(); err != nil {
			_ = l.accounts.Rollback()
			return err
		}
	}
	return nil
}

// Rollback drops all pending changes.
func (l *Ledger) Rollback() error {
	err := l.accounts.Rollback()
	if l.tokenRels != nil && l.tokenRels.IsInTransaction() {
		err = errors.Join(err, l.tokenRels.Rollback())
	}
	l.clearNetTransfers()
	return err
}

// Commit checks that no currency was created or destroyed and commits both
// underlying ledgers. Ledger stays in transaction if the check fails.
func (l *Ledger) Commit() error {
	var (
		sum int64
		err error
	)
	for _, adj := range l.netTransfers {
		sum, err = transaction.AddAmounts(sum, adj)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNonZeroNetAdjustment, err)
		}
	}
	if sum != 0 {
		return fmt.Errorf("%w: %d", ErrNonZeroNetAdjustment, sum)
	}
	if err := l.accounts.Commit(); err != nil {
		return err
	}
	if l.tokenRels != nil && l.tokenRels.IsInTransaction() {
		if err := l.tokenRels.Commit(); err != nil {
			return err
		}
	}
	l.clearNetTransfers()
	return nil
}

func (l *Ledger) clearNetTransfers() {
	clear(l.netTransfers)
	clear(l.tokenAdjustments)
}

// GetBalance returns the account balance in tinybars.
func (l *Ledger) GetBalance(id entity.ID) (int64, error) {
	return txledger.GetAs[int64](l.accounts, id, properties.Balance)
}

// IsDeleted checks whether the account is marked as deleted.
func (l *Ledger) IsDeleted(id entity.ID) (bool, error) {
	return txledger.GetAs[bool](l.accounts, id, properties.IsDeleted)
}

// IsSmartContract checks whether the account belongs to a contract.
func (l *Ledger) IsSmartContract(id entity.ID) (bool, error) {
	return txledger.GetAs[bool](l.accounts, id, properties.IsSmartContract)
}

// Expiry returns the account expiration time.
func (l *Ledger) Expiry(id entity.ID) (int64, error) {
	return txledger.GetAs[int64](l.accounts, id, properties.Expiry)
}

// Exists checks whether the account exists.
func (l *Ledger) Exists(id entity.ID) bool {
	return l.accounts.Exists(id)
}

// computeNewBalance validates the adjustment and returns resulting balance.
func (l *Ledger) computeNewBalance(id entity.ID, adjustment int64) (int64, error) {
	deleted, err := l.IsDeleted(id)
	if err != nil {
		return 0, err
	}
	if deleted {
		return 0, fmt.Errorf("%w: %s", ErrDeletedAccount, id)
	}
	balance, err := l.GetBalance(id)
	if err != nil {
		return 0, err
	}
	nb, err := transaction.AddAmounts(balance, adjustment)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", err, id)
	}
	if nb < 0 {
		return 0, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, id, balance, -adjustment)
	}
	return nb, nil
}

func (l *Ledger) setBalance(id entity.ID, balance int64) error {
	old, err := l.GetBalance(id)
	if err != nil {
		return err
	}
	if err := l.accounts.Set(id, properties.Balance, balance); err != nil {
		return err
	}
	l.netTransfers[id] += balance - old
	return nil
}

// AdjustBalance changes the account balance by the given amount.
func (l *Ledger) AdjustBalance(id entity.ID, adjustment int64) error {
	nb, err := l.computeNewBalance(id, adjustment)
	if err != nil {
		return err
	}
	return l.setBalance(id, nb)
}

// DoTransfer moves amount from one account to another, no changes are made
// if either side is invalid.
func (l *Ledger) DoTransfer(from, to entity.ID, amount int64) error {
	fromBalance, err := l.computeNewBalance(from, -amount)
	if err != nil || from == to {
		return err
	}
	toBalance, err := l.computeNewBalance(to, amount)
	if err != nil {
		return err
	}
	if err := l.setBalance(from, fromBalance); err != nil {
		return err
	}
	return l.setBalance(to, toBalance)
}

// DoTransfers applies all the adjustments of a zero-sum transfer list
// atomically.
func (l *Ledger) DoTransfers(list transaction.TransferList) error {
	sum, err := list.Sum()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNonZeroNetAdjustment, err)
	}
	if sum != 0 {
		return fmt.Errorf("%w: %d", ErrNonZeroNetAdjustment, sum)
	}
	balances := make([]int64, len(list.AccountAmounts))
	for i, aa := range list.AccountAmounts {
		nb, err := l.computeNewBalance(aa.Account, aa.Amount)
		if err != nil {
			return err
		}
		balances[i] = nb
	}
	for i, aa := range list.AccountAmounts {
		if err := l.setBalance(aa.Account, balances[i]); err != nil {
			return err
		}
	}
	return nil
}

// Create allocates a new account funded by the sponsor.
func (l *Ledger) Create(sponsor entity.ID, balance int64, c *AccountCustomizer) (entity.ID, error) {
	sb, err := l.computeNewBalance(sponsor, -balance)
	if err != nil {
		return entity.ID{}, err
	}
	id := l.ids.NewAccountID(sponsor)
	if err := l.setBalance(sponsor, sb); err != nil {
		return entity.ID{}, err
	}
	if err := l.Spawn(id, balance, c); err != nil {
		return entity.ID{}, err
	}
	return id, nil
}

// Spawn creates the account with the given id and balance. The balance
// isn't taken from anywhere, so the caller has to compensate for it before
// commit.
func (l *Ledger) Spawn(id entity.ID, balance int64, c *AccountCustomizer) error {
	if err := l.accounts.Create(id); err != nil {
		return err
	}
	if err := l.accounts.Set(id, properties.Balance, balance); err != nil {
		return err
	}
	l.netTransfers[id] += balance
	if c == nil {
		return nil
	}
	return c.Customize(id, l.accounts)
}

// Customize applies changes to the existing account.
func (l *Ledger) Customize(id entity.ID, c *AccountCustomizer) error {
	deleted, err := l.IsDeleted(id)
	if err != nil {
		return err
	}
	if deleted {
		return fmt.Errorf("%w: %s", ErrDeletedAccount, id)
	}
	return c.Customize(id, l.accounts)
}

// Delete moves the whole account balance to the beneficiary and marks the
// account as deleted.
func (l *Ledger) Delete(id, beneficiary entity.ID) error {
	balance, err := l.GetBalance(id)
	if err != nil {
		return err
	}
	if err := l.DoTransfer(id, beneficiary, balance); err != nil {
		return err
	}
	return l.accounts.Set(id, properties.IsDeleted, true)
}

// NetTransfersInTxn returns non-zero hbar adjustments made in the current
// transaction ordered by account.
func (l *Ledger) NetTransfersInTxn() transaction.TransferList {
	var res transaction.TransferList
	for _, id := range sortedIDs(l.netTransfers) {
		if adj := l.netTransfers[id]; adj != 0 {
			res.AccountAmounts = append(res.AccountAmounts, transaction.AccountAmount{Account: id, Amount: adj})
		}
	}
	return res
}

// NetTokenTransfersInTxn returns non-zero token adjustments made in the
// current transaction ordered by token and account.
func (l *Ledger) NetTokenTransfersInTxn() []transaction.TokenTransferList {
	var res []transaction.TokenTransferList
	for _, token := range sortedIDs(l.tokenAdjustments) {
		var (
			adjs = l.tokenAdjustments[token]
			list = transaction.TokenTransferList{Token: token}
		)
		for _, acc := range sortedIDs(adjs) {
			if adj := adjs[acc]; adj != 0 {
				list.Transfers = append(list.Transfers, transaction.AccountAmount{Account: acc, Amount: adj})
			}
		}
		if len(list.Transfers) != 0 {
			res = append(res, list)
		}
	}
	return res
}

func sortedIDs[V any](m map[entity.ID]V) []entity.ID {
	ids := make([]entity.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, entity.Compare)
	return ids
}

// AdjustTokenBalance changes the account's token balance.
func (l *Ledger) AdjustTokenBalance(account, token entity.ID, adjustment int64) response.Code {
	code := l.tokens.AdjustBalance(account, token, adjustment)
	if code != response.OK {
		return code
	}
	l.UpdateTokenTransfers(token, account, adjustment)
	return response.OK
}

// UpdateTokenTransfers records a token balance change made bypassing
// AdjustTokenBalance.
func (l *Ledger) UpdateTokenTransfers(token, account entity.ID, adjustment int64) {
	adjs, ok := l.tokenAdjustments[token]
	if !ok {
		adjs = make(map[entity.ID]int64)
		l.tokenAdjustments[token] = adjs
	}
	adjs[account] += adjustment
}

// DoTokenTransfer moves amount of token from one account to another. All
// pending token changes are dropped if it fails.
func (l *Ledger) DoTokenTransfer(token, from, to entity.ID, amount int64) response.Code {
	code := l.AdjustTokenBalance(from, token, -amount)
	if code == response.OK {
		code = l.AdjustTokenBalance(to, token, amount)
	}
	if code != response.OK {
		l.DropPendingTokenChanges()
	}
	return code
}

// DoAtomicTransfers applies token and hbar transfers of a CryptoTransfer.
// Either all of them succeed or none is applied.
func (l *Ledger) DoAtomicTransfers(hbar transaction.TransferList, tokens []transaction.TokenTransferList) response.Code {
	var code = response.OK
	for _, tl := range tokens {
		for _, aa := range tl.Transfers {
			code = l.AdjustTokenBalance(aa.Account, tl.Token, aa.Amount)
			if code != response.OK {
				break
			}
		}
		if code != response.OK {
			break
		}
	}
	if code == response.OK {
		for _, tl := range tokens {
			if sum, err := tl.Sum(); err != nil || sum != 0 {
				code = response.TransfersNotZeroSumForToken
				break
			}
		}
	}
	if code == response.OK {
		code = CodeOf(l.DoTransfers(hbar))
	}
	if code != response.OK {
		l.DropPendingTokenChanges()
	}
	return code
}

// GetTokenBalance returns the account's token balance, 0 if there is no
// relationship.
func (l *Ledger) GetTokenBalance(account, token entity.ID) int64 {
	b, err := txledger.GetAs[int64](l.tokenRels, entity.RelKey{Account: account, Token: token}, properties.TokenBalance)
	if err != nil {
		return 0
	}
	return b
}

// AllTokenBalancesVanish checks that the account has no balance of any
// non-deleted token it's associated with.
func (l *Ledger) AllTokenBalancesVanish(account entity.ID) (bool, error) {
	tokens, err := txledger.GetAs[[]entity.ID](l.accounts, account, properties.Tokens)
	if err != nil {
		return false, err
	}
	for _, token := range tokens {
		t, err := l.tokens.Get(token)
		if err == nil && t.Deleted {
			continue
		}
		if l.GetTokenBalance(account, token) != 0 {
			return false, nil
		}
	}
	return true, nil
}

// Freeze freezes the account for the token.
func (l *Ledger) Freeze(account, token entity.ID) response.Code {
	return l.tokens.Freeze(account, token)
}

// Unfreeze unfreezes the account for the token.
func (l *Ledger) Unfreeze(account, token entity.ID) response.Code {
	return l.tokens.Unfreeze(account, token)
}

// GrantKyc grants KYC for the account-token pair.
func (l *Ledger) GrantKyc(account, token entity.ID) response.Code {
	return l.tokens.GrantKyc(account, token)
}

// RevokeKyc revokes KYC for the account-token pair.
func (l *Ledger) RevokeKyc(account, token entity.ID) response.Code {
	return l.tokens.RevokeKyc(account, token)
}

// IsKnownTreasury checks whether the account is a treasury of some token.
func (l *Ledger) IsKnownTreasury(account entity.ID) bool {
	return l.tokens.IsKnownTreasury(account)
}

// DropPendingTokenChanges forgets all token relationship changes and token
// associations made in the current transaction.
func (l *Ledger) DropPendingTokenChanges() {
	if l.tokenRels.IsInTransaction() {
		if err := l.tokenRels.Rollback(); err != nil {
			l.log.Error("failed to roll back token relationships", zap.Error(err))
		}
	}
	if err := l.tokenRels.Begin(); err != nil {
		l.log.Error("failed to reopen token relationships", zap.Error(err))
	}
	l.accounts.UndoChangesOfType(properties.Tokens)
	clear(l.tokenAdjustments)
}

// ChangeSetSoFar describes all pending changes.
func (l *Ledger) ChangeSetSoFar() string {
	var sb strings.Builder
	sb.WriteString("accounts: ")
	sb.WriteString(l.accounts.ChangeSetSoFar())
	if l.tokenRels != nil {
		sb.WriteString(", tokenRels: ")
		sb.WriteString(l.tokenRels.ChangeSetSoFar())
	}
	return sb.String()
}

// CodeOf maps ledger errors to response codes, unexpected errors become
// FailInvalid.
func CodeOf(err error) response.Code {
	switch {
	case err == nil:
		return response.OK
	case errors.Is(err, ErrInsufficientFunds):
		return response.InsufficientAccountBalance
	case errors.Is(err, ErrDeletedAccount):
		return response.AccountDeleted
	case errors.Is(err, txledger.ErrMissingEntity):
		return response.InvalidAccountID
	case errors.Is(err, ErrNonZeroNetAdjustment), errors.Is(err, transaction.ErrAmountOverflow):
		return response.InvalidAccountAmounts
	default:
		return response.FailInvalid
	}
}
