/*
Package tokens implements the token store. Token definitions are kept in a
persistent map while account balances and flags live in the token
relationships ledger.
*/
package tokens

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/fcmap"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/properties"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"go.uber.org/zap"
)

// ErrMissingToken is returned for unknown token ids.
var ErrMissingToken = errors.New("no such token")

// Store manages tokens.
type Store struct {
	ids       entity.IDSource
	validator *validation.Validator
	tokens    fcmap.Map[entity.ID, *entity.Token]
	ledger    *ledger.Ledger
	accounts  *ledger.AccountsLedger
	tokenRels *ledger.TokenRelsLedger
	log       *zap.Logger

	// treasury -> tokens
	knownTreasuries map[entity.ID]map[entity.ID]struct{}

	pendingID entity.ID
	pending   *entity.Token
}

var _ ledger.TokenStore = (*Store)(nil)

// New creates a token store and attaches it to the ledger.
func New(ids entity.IDSource, v *validation.Validator, tokens fcmap.Map[entity.ID, *entity.Token],
	l *ledger.Ledger, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		ids:       ids,
		validator: v,
		tokens:    tokens,
		ledger:    l,
		accounts:  l.Accounts(),
		tokenRels: l.TokenRels(),
		log:       log,
	}
	l.SetTokenStore(s)
	s.RebuildViews()
	return s
}

// RebuildViews recalculates the treasury index from the token map.
func (s *Store) RebuildViews() {
	s.knownTreasuries = make(map[entity.ID]map[entity.ID]struct{})
	for _, id := range s.tokens.KeySet() {
		t, ok := s.tokens.Get(id)
		if !ok || t.Deleted {
			continue
		}
		s.addKnownTreasury(t.Treasury, id)
	}
}

func (s *Store) addKnownTreasury(account, token entity.ID) {
	set, ok := s.knownTreasuries[account]
	if !ok {
		set = make(map[entity.ID]struct{})
		s.knownTreasuries[account] = set
	}
	set[token] = struct{}{}
}

func (s *Store) removeKnownTreasury(account, token entity.ID) {
	set := s.knownTreasuries[account]
	delete(set, token)
	if len(set) == 0 {
		delete(s.knownTreasuries, account)
	}
}

// IsKnownTreasury checks whether the account is a treasury of some
// non-deleted token.
func (s *Store) IsKnownTreasury(account entity.ID) bool {
	_, ok := s.knownTreasuries[account]
	return ok
}

// IsTreasuryForToken checks whether the account is the token treasury.
func (s *Store) IsTreasuryForToken(account, token entity.ID) bool {
	_, ok := s.knownTreasuries[account][token]
	return ok
}

// IsCreationPending checks for a provisionally created token.
func (s *Store) IsCreationPending() bool {
	return s.pending != nil
}

// Exists checks whether the token exists, provisionally created token
// exists too.
func (s *Store) Exists(id entity.ID) bool {
	return (s.pending != nil && s.pendingID == id) || s.tokens.ContainsKey(id)
}

// Get returns a copy of the token.
func (s *Store) Get(id entity.ID) (*entity.Token, error) {
	if s.pending != nil && s.pendingID == id {
		return s.pending.Copy(), nil
	}
	t, ok := s.tokens.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingToken, id)
	}
	return t, nil
}

// Apply changes the token in place.
func (s *Store) Apply(id entity.ID, change func(*entity.Token)) error {
	if s.pending != nil && s.pendingID == id {
		change(s.pending)
		return nil
	}
	t, ok := s.tokens.GetForModify(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingToken, id)
	}
	change(t)
	return s.tokens.Replace(id, t)
}

// CreateProvisionally validates the request and allocates a new token that
// exists in the store until CommitCreation or RollbackCreation is called.
func (s *Store) CreateProvisionally(op *transaction.TokenCreate, sponsor entity.ID, now int64) (entity.ID, response.Code) {
	if code := s.usableOrElse(op.Treasury, response.InvalidTreasuryAccountForToken); code != response.OK {
		return entity.ID{}, code
	}
	autoRenew := !op.AutoRenewAccount.IsZero()
	if autoRenew {
		if code := s.usableOrElse(op.AutoRenewAccount, response.InvalidAutorenewAccount); code != response.OK {
			return entity.ID{}, code
		}
		if !s.validator.IsValidAutoRenewPeriod(op.AutoRenewPeriod) {
			return entity.ID{}, response.InvalidRenewalPeriod
		}
	}
	if code := s.validator.TokenSymbolCheck(op.Symbol); code != response.OK {
		return entity.ID{}, code
	}
	if code := s.validator.TokenNameCheck(op.Name); code != response.OK {
		return entity.ID{}, code
	}
	if op.InitialSupply > math.MaxInt64 {
		return entity.ID{}, response.InvalidTokenInitialSupply
	}
	if op.Decimals > math.MaxInt32 {
		return entity.ID{}, response.InvalidTokenDecimals
	}
	expiry := op.Expiry
	if autoRenew {
		expiry = now + op.AutoRenewPeriod
	}
	if expiry <= now {
		return entity.ID{}, response.InvalidExpirationTime
	}
	if op.FreezeDefault && op.FreezeKey == nil {
		return entity.ID{}, response.TokenHasNoFreezeKey
	}
	for _, kc := range []struct {
		key  *keys.Key
		code response.Code
	}{
		{op.AdminKey, response.InvalidAdminKey},
		{op.KycKey, response.InvalidKycKey},
		{op.WipeKey, response.InvalidWipeKey},
		{op.SupplyKey, response.InvalidSupplyKey},
		{op.FreezeKey, response.InvalidFreezeKey},
	} {
		if kc.key != nil && !s.validator.HasGoodEncoding(kc.key) {
			return entity.ID{}, kc.code
		}
	}

	s.pendingID = s.ids.NewTokenID(sponsor)
	s.pending = &entity.Token{
		Name:                op.Name,
		Symbol:              op.Symbol,
		Decimals:            op.Decimals,
		TotalSupply:         int64(op.InitialSupply),
		Treasury:            op.Treasury,
		AdminKey:            op.AdminKey.Copy(),
		KycKey:              op.KycKey.Copy(),
		FreezeKey:           op.FreezeKey.Copy(),
		SupplyKey:           op.SupplyKey.Copy(),
		WipeKey:             op.WipeKey.Copy(),
		FreezeDefault:       op.FreezeDefault,
		KycGrantedByDefault: op.KycKey == nil,
		Expiry:              expiry,
	}
	if autoRenew {
		s.pending.AutoRenewAccount = op.AutoRenewAccount
		s.pending.AutoRenewPeriod = op.AutoRenewPeriod
	}
	return s.pendingID, response.OK
}

// CommitCreation saves the provisionally created token.
func (s *Store) CommitCreation() error {
	if s.pending == nil {
		return errors.New("no pending token creation")
	}
	if err := s.tokens.Put(s.pendingID, s.pending); err != nil {
		return err
	}
	s.addKnownTreasury(s.pending.Treasury, s.pendingID)
	s.resetPending()
	return nil
}

// RollbackCreation forgets the provisionally created token and returns its
// id to the source.
func (s *Store) RollbackCreation() {
	if s.pending == nil {
		return
	}
	s.ids.ReclaimLastID()
	s.resetPending()
}

// Reset drops the pending creation without reclaiming its id and rebuilds
// the views, it's used after the underlying maps were reset.
func (s *Store) Reset() {
	s.resetPending()
	s.RebuildViews()
}

func (s *Store) resetPending() {
	s.pending = nil
	s.pendingID = entity.ID{}
}

// usableOrElse checks that the account exists and is not deleted.
func (s *Store) usableOrElse(account entity.ID, code response.Code) response.Code {
	if !s.accounts.Exists(account) {
		return code
	}
	if deleted, _ := txledger.GetAs[bool](s.accounts, account, properties.IsDeleted); deleted {
		return code
	}
	return response.OK
}

func (s *Store) checkAccount(account entity.ID) response.Code {
	if !s.accounts.Exists(account) {
		return response.InvalidAccountID
	}
	if deleted, _ := txledger.GetAs[bool](s.accounts, account, properties.IsDeleted); deleted {
		return response.AccountDeleted
	}
	return response.OK
}

func relKey(account, token entity.ID) entity.RelKey {
	return entity.RelKey{Account: account, Token: token}
}

// sanityChecked runs action for an existing token and (unless account is
// nil) an existing account associated with it.
func (s *Store) sanityChecked(account *entity.ID, token entity.ID, action func(*entity.Token) response.Code) response.Code {
	if account != nil {
		if code := s.checkAccount(*account); code != response.OK {
			return code
		}
	}
	if !s.Exists(token) {
		return response.InvalidTokenID
	}
	t, err := s.Get(token)
	if err != nil {
		return response.InvalidTokenID
	}
	if t.Deleted {
		return response.TokenWasDeleted
	}
	if account != nil && !s.IsAssociated(*account, token) {
		return response.TokenNotAssociatedToAccount
	}
	return action(t)
}

// IsAssociated checks whether there is a relationship between the account and
// the token.
func (s *Store) IsAssociated(account, token entity.ID) bool {
	return s.tokenRels.Exists(relKey(account, token))
}

// Associate creates relationships between the account and tokens. Tokens with
// a freeze key are frozen for the account if FreezeDefault is set, tokens
// without KYC key are KYC-granted.
func (s *Store) Associate(account entity.ID, tokens []entity.ID) response.Code {
	if code := s.checkAccount(account); code != response.OK {
		return code
	}
	defs := make([]*entity.Token, 0, len(tokens))
	for _, id := range tokens {
		t, err := s.Get(id)
		if err != nil {
			return response.InvalidTokenID
		}
		if t.Deleted {
			return response.TokenWasDeleted
		}
		if s.IsAssociated(account, id) {
			return response.TokenAlreadyAssociatedToAccount
		}
		defs = append(defs, t)
	}
	current, err := txledger.GetAs[[]entity.ID](s.accounts, account, properties.Tokens)
	if err != nil {
		return response.FailInvalid
	}
	updated := append(slices.Clone(current), tokens...)
	if len(updated) > s.validator.Config().MaxTokensPerAccount {
		return response.TokensPerAccountLimitExceeded
	}
	if err := s.accounts.Set(account, properties.Tokens, updated); err != nil {
		return response.FailInvalid
	}
	for i, id := range tokens {
		key := relKey(account, id)
		t := defs[i]
		if err := s.tokenRels.Create(key); err != nil {
			return response.FailInvalid
		}
		if err := s.tokenRels.Set(key, properties.IsFrozen, t.FreezeKey != nil && t.FreezeDefault); err != nil {
			return response.FailInvalid
		}
		if err := s.tokenRels.Set(key, properties.IsKycGranted, t.KycKey == nil); err != nil {
			return response.FailInvalid
		}
	}
	return response.OK
}

// Dissociate removes relationships between the account and tokens. Balances
// of deleted tokens are dropped, others must be zero.
func (s *Store) Dissociate(account entity.ID, tokens []entity.ID) response.Code {
	if code := s.checkAccount(account); code != response.OK {
		return code
	}
	for _, id := range tokens {
		if !s.IsAssociated(account, id) {
			return response.TokenNotAssociatedToAccount
		}
		t, err := s.Get(id)
		deleted := err == nil && t.Deleted
		if err == nil && !deleted && t.Treasury == account {
			return response.AccountIsTreasury
		}
		if deleted {
			continue
		}
		key := relKey(account, id)
		if frozen, _ := txledger.GetAs[bool](s.tokenRels, key, properties.IsFrozen); frozen {
			return response.AccountFrozenForToken
		}
		if balance, _ := txledger.GetAs[int64](s.tokenRels, key, properties.TokenBalance); balance != 0 {
			return response.TransactionRequiresZeroTokenBalances
		}
	}
	current, err := txledger.GetAs[[]entity.ID](s.accounts, account, properties.Tokens)
	if err != nil {
		return response.FailInvalid
	}
	updated := slices.DeleteFunc(slices.Clone(current), func(id entity.ID) bool {
		return slices.Contains(tokens, id)
	})
	if err := s.accounts.Set(account, properties.Tokens, updated); err != nil {
		return response.FailInvalid
	}
	for _, id := range tokens {
		if err := s.tokenRels.Destroy(relKey(account, id)); err != nil {
			return response.FailInvalid
		}
	}
	return response.OK
}

func (s *Store) setRelFlag(account, token entity.ID, p properties.TokenRelProperty, v bool,
	key func(*entity.Token) bool, noKey response.Code) response.Code {
	return s.sanityChecked(&account, token, func(t *entity.Token) response.Code {
		if !key(t) {
			return noKey
		}
		if err := s.tokenRels.Set(relKey(account, token), p, v); err != nil {
			return response.FailInvalid
		}
		return response.OK
	})
}

func hasFreezeKey(t *entity.Token) bool { return t.FreezeKey != nil }
func hasKycKey(t *entity.Token) bool    { return t.KycKey != nil }

// Freeze freezes the account for the token.
func (s *Store) Freeze(account, token entity.ID) response.Code {
	return s.setRelFlag(account, token, properties.IsFrozen, true, hasFreezeKey, response.TokenHasNoFreezeKey)
}

// Unfreeze unfreezes the account for the token.
func (s *Store) Unfreeze(account, token entity.ID) response.Code {
	return s.setRelFlag(account, token, properties.IsFrozen, false, hasFreezeKey, response.TokenHasNoFreezeKey)
}

// GrantKyc grants KYC to the account for the token.
func (s *Store) GrantKyc(account, token entity.ID) response.Code {
	return s.setRelFlag(account, token, properties.IsKycGranted, true, hasKycKey, response.TokenHasNoKycKey)
}

// RevokeKyc revokes KYC from the account for the token.
func (s *Store) RevokeKyc(account, token entity.ID) response.Code {
	return s.setRelFlag(account, token, properties.IsKycGranted, false, hasKycKey, response.TokenHasNoKycKey)
}

// AdjustBalance changes the account's token balance, the account must not
// be frozen and must have KYC granted.
func (s *Store) AdjustBalance(account, token entity.ID, adjustment int64) response.Code {
	return s.sanityChecked(&account, token, func(*entity.Token) response.Code {
		key := relKey(account, token)
		if frozen, _ := txledger.GetAs[bool](s.tokenRels, key, properties.IsFrozen); frozen {
			return response.AccountFrozenForToken
		}
		if kyc, _ := txledger.GetAs[bool](s.tokenRels, key, properties.IsKycGranted); !kyc {
			return response.AccountKycNotGrantedForToken
		}
		balance, err := txledger.GetAs[int64](s.tokenRels, key, properties.TokenBalance)
		if err != nil {
			return response.FailInvalid
		}
		nb, err := transaction.AddAmounts(balance, adjustment)
		if err != nil {
			return response.InvalidAccountAmounts
		}
		if nb < 0 {
			return response.InsufficientTokenBalance
		}
		if err := s.tokenRels.Set(key, properties.TokenBalance, nb); err != nil {
			return response.FailInvalid
		}
		return response.OK
	})
}

// Mint increases total supply crediting the treasury.
func (s *Store) Mint(token entity.ID, amount uint64) response.Code {
	return s.changeSupply(token, amount, 1, response.InvalidTokenMintAmount)
}

// Burn decreases total supply debiting the treasury.
func (s *Store) Burn(token entity.ID, amount uint64) response.Code {
	return s.changeSupply(token, amount, -1, response.InvalidTokenBurnAmount)
}

func (s *Store) changeSupply(token entity.ID, amount uint64, sign int64, failure response.Code) response.Code {
	return s.sanityChecked(nil, token, func(t *entity.Token) response.Code {
		if t.SupplyKey == nil {
			return response.TokenHasNoSupplyKey
		}
		if amount > math.MaxInt64 {
			return failure
		}
		change := sign * int64(amount)
		total := t.TotalSupply + change
		if total < 0 || (change > 0 && total < t.TotalSupply) {
			return failure
		}
		if code := s.checkAccount(t.Treasury); code != response.OK {
			return code
		}
		if b := s.ledger.GetTokenBalance(t.Treasury, token); b+change < 0 {
			return response.InsufficientTokenBalance
		}
		if code := s.ledger.AdjustTokenBalance(t.Treasury, token, change); code != response.OK {
			return code
		}
		if err := s.Apply(token, func(t *entity.Token) { t.TotalSupply = total }); err != nil {
			return response.FailInvalid
		}
		return response.OK
	})
}

// Wipe removes tokens from a non-treasury account reducing total supply.
func (s *Store) Wipe(account, token entity.ID, amount uint64) response.Code {
	return s.sanityChecked(&account, token, func(t *entity.Token) response.Code {
		if t.WipeKey == nil {
			return response.TokenHasNoWipeKey
		}
		if t.Treasury == account {
			return response.CannotWipeTokenTreasuryAccount
		}
		if amount > math.MaxInt64 {
			return response.InvalidWipingAmount
		}
		wipe := int64(amount)
		total := t.TotalSupply - wipe
		if total < 0 {
			return response.InvalidWipingAmount
		}
		key := relKey(account, token)
		balance, err := txledger.GetAs[int64](s.tokenRels, key, properties.TokenBalance)
		if err != nil {
			return response.FailInvalid
		}
		if balance-wipe < 0 {
			return response.InvalidWipingAmount
		}
		if err := s.tokenRels.Set(key, properties.TokenBalance, balance-wipe); err != nil {
			return response.FailInvalid
		}
		s.ledger.UpdateTokenTransfers(token, account, -wipe)
		if err := s.Apply(token, func(t *entity.Token) { t.TotalSupply = total }); err != nil {
			return response.FailInvalid
		}
		return response.OK
	})
}

// Update changes mutable token properties. Keys can only be replaced if the
// token already has a key of that kind.
func (s *Store) Update(op *transaction.TokenUpdate) response.Code {
	return s.sanityChecked(nil, op.Token, func(t *entity.Token) response.Code {
		if !t.HasAdminKey() {
			return response.TokenIsImmutable
		}
		if op.Expiry != 0 && op.Expiry < t.Expiry {
			return response.InvalidExpirationTime
		}
		if op.AutoRenewAccount != nil {
			if code := s.usableOrElse(*op.AutoRenewAccount, response.InvalidAutorenewAccount); code != response.OK {
				return code
			}
		}
		if op.AutoRenewPeriod != 0 && !s.validator.IsValidAutoRenewPeriod(op.AutoRenewPeriod) {
			return response.InvalidRenewalPeriod
		}
		for _, kc := range []struct {
			change  bool
			present bool
			code    response.Code
		}{
			{op.KycKey != nil, t.KycKey != nil, response.TokenHasNoKycKey},
			{op.FreezeKey != nil, t.FreezeKey != nil, response.TokenHasNoFreezeKey},
			{op.WipeKey != nil, t.WipeKey != nil, response.TokenHasNoWipeKey},
			{op.SupplyKey != nil, t.SupplyKey != nil, response.TokenHasNoSupplyKey},
		} {
			if kc.change && !kc.present {
				return kc.code
			}
		}
		if op.Symbol != "" {
			if code := s.validator.TokenSymbolCheck(op.Symbol); code != response.OK {
				return code
			}
		}
		if op.Name != "" {
			if code := s.validator.TokenNameCheck(op.Name); code != response.OK {
				return code
			}
		}
		if op.Treasury != nil && *op.Treasury != t.Treasury {
			if s.usableOrElse(*op.Treasury, response.InvalidTreasuryAccountForToken) != response.OK ||
				!s.IsAssociated(*op.Treasury, op.Token) {
				return response.InvalidTreasuryAccountForToken
			}
		}
		oldTreasury := t.Treasury
		err := s.Apply(op.Token, func(t *entity.Token) {
			if op.Name != "" {
				t.Name = op.Name
			}
			if op.Symbol != "" {
				t.Symbol = op.Symbol
			}
			if op.Treasury != nil {
				t.Treasury = *op.Treasury
			}
			if op.AdminKey != nil {
				t.AdminKey = op.AdminKey.Copy()
			}
			if op.KycKey != nil {
				t.KycKey = op.KycKey.Copy()
			}
			if op.FreezeKey != nil {
				t.FreezeKey = op.FreezeKey.Copy()
			}
			if op.WipeKey != nil {
				t.WipeKey = op.WipeKey.Copy()
			}
			if op.SupplyKey != nil {
				t.SupplyKey = op.SupplyKey.Copy()
			}
			if op.Expiry != 0 {
				t.Expiry = op.Expiry
			}
			if op.AutoRenewAccount != nil {
				t.AutoRenewAccount = *op.AutoRenewAccount
			}
			if op.AutoRenewPeriod != 0 {
				t.AutoRenewPeriod = op.AutoRenewPeriod
			}
		})
		if err != nil {
			return response.FailInvalid
		}
		if op.Treasury != nil && *op.Treasury != oldTreasury {
			s.removeKnownTreasury(oldTreasury, op.Token)
			s.addKnownTreasury(*op.Treasury, op.Token)
		}
		return response.OK
	})
}

// Delete marks the token as deleted, only tokens with admin key can be
// deleted.
func (s *Store) Delete(token entity.ID) response.Code {
	return s.sanityChecked(nil, token, func(t *entity.Token) response.Code {
		if !t.HasAdminKey() {
			return response.TokenIsImmutable
		}
		if err := s.Apply(token, func(t *entity.Token) { t.Deleted = true }); err != nil {
			return response.FailInvalid
		}
		s.removeKnownTreasury(t.Treasury, token)
		return response.OK
	})
}
