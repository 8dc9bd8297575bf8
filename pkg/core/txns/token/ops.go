package token

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/core/txns"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
)

type (
	// Updater changes token properties. When the treasury changes, the new
	// one gets unfrozen, KYC-granted and receives the whole balance of the
	// old one.
	Updater struct{ Deps }
	// Deleter marks the token as deleted.
	Deleter struct{ Deps }
	// Minter increases the token supply.
	Minter struct{ Deps }
	// Burner decreases the token supply.
	Burner struct{ Deps }
	// Wiper burns tokens of a non-treasury account.
	Wiper struct{ Deps }
	// Freezer freezes the account's token relationship.
	Freezer struct{ Deps }
	// Unfreezer unfreezes the account's token relationship.
	Unfreezer struct{ Deps }
	// KycGranter grants KYC to the account.
	KycGranter struct{ Deps }
	// KycRevoker revokes KYC from the account.
	KycRevoker struct{ Deps }
	// Associator associates the account with tokens.
	Associator struct{ Deps }
	// Dissociator dissociates the account from tokens.
	Dissociator struct{ Deps }
)

var (
	_ Operation[*transaction.TokenUpdate]     = Updater{}
	_ Operation[*transaction.TokenDelete]     = Deleter{}
	_ Operation[*transaction.TokenMint]       = Minter{}
	_ Operation[*transaction.TokenBurn]       = Burner{}
	_ Operation[*transaction.TokenWipe]       = Wiper{}
	_ Operation[*transaction.TokenFreeze]     = Freezer{}
	_ Operation[*transaction.TokenUnfreeze]   = Unfreezer{}
	_ Operation[*transaction.TokenGrantKyc]   = KycGranter{}
	_ Operation[*transaction.TokenRevokeKyc]  = KycRevoker{}
	_ Operation[*transaction.TokenAssociate]  = Associator{}
	_ Operation[*transaction.TokenDissociate] = Dissociator{}
)

// Check implements the Operation interface.
func (u Updater) Check(op *transaction.TokenUpdate) response.Code {
	if code := checkToken(op.Token); code != response.OK {
		return code
	}
	if op.Symbol != "" {
		if code := u.Validator.TokenSymbolCheck(op.Symbol); code != response.OK {
			return code
		}
	}
	if op.Name != "" {
		if code := u.Validator.TokenNameCheck(op.Name); code != response.OK {
			return code
		}
	}
	for _, kc := range []struct {
		key  *keys.Key
		code response.Code
	}{
		{op.AdminKey, response.InvalidAdminKey},
		{op.KycKey, response.InvalidKycKey},
		{op.FreezeKey, response.InvalidFreezeKey},
		{op.WipeKey, response.InvalidWipeKey},
		{op.SupplyKey, response.InvalidSupplyKey},
	} {
		if kc.key != nil && !u.Validator.HasGoodEncoding(kc.key) {
			return kc.code
		}
	}
	return response.OK
}

// Apply implements the Operation interface.
func (u Updater) Apply(op *transaction.TokenUpdate) response.Code {
	t, err := u.Store.Get(op.Token)
	if err != nil {
		return response.InvalidTokenID
	}
	oldTreasury := t.Treasury
	if code := u.Store.Update(op); code != response.OK {
		return code
	}
	if op.Treasury == nil || *op.Treasury == oldTreasury {
		return response.OK
	}
	return u.moveTreasury(op.Token, oldTreasury, *op.Treasury, t.FreezeKey != nil, t.KycKey != nil)
}

func (u Updater) moveTreasury(token, from, to entity.ID, hasFreeze, hasKyc bool) response.Code {
	if hasFreeze {
		if code := u.Ledger.Unfreeze(to, token); code != response.OK {
			return code
		}
	}
	if hasKyc {
		if code := u.Ledger.GrantKyc(to, token); code != response.OK {
			return code
		}
	}
	balance := u.Ledger.GetTokenBalance(from, token)
	return u.Ledger.DoTokenTransfer(token, from, to, balance)
}

// Check implements the Operation interface.
func (Deleter) Check(op *transaction.TokenDelete) response.Code { return checkToken(op.Token) }

// Apply implements the Operation interface.
func (d Deleter) Apply(op *transaction.TokenDelete) response.Code { return d.Store.Delete(op.Token) }

// Check implements the Operation interface.
func (Minter) Check(op *transaction.TokenMint) response.Code {
	if op.Amount == 0 {
		return response.InvalidTokenMintAmount
	}
	return checkToken(op.Token)
}

// Apply implements the Operation interface.
func (m Minter) Apply(op *transaction.TokenMint) response.Code {
	return m.Store.Mint(op.Token, op.Amount)
}

// Check implements the Operation interface.
func (Burner) Check(op *transaction.TokenBurn) response.Code {
	if op.Amount == 0 {
		return response.InvalidTokenBurnAmount
	}
	return checkToken(op.Token)
}

// Apply implements the Operation interface.
func (b Burner) Apply(op *transaction.TokenBurn) response.Code {
	return b.Store.Burn(op.Token, op.Amount)
}

// Check implements the Operation interface.
func (Wiper) Check(op *transaction.TokenWipe) response.Code {
	if op.Amount == 0 {
		return response.InvalidWipingAmount
	}
	return checkTokenAndAccount(op.Token, op.Account)
}

// Apply implements the Operation interface.
func (w Wiper) Apply(op *transaction.TokenWipe) response.Code {
	return w.Store.Wipe(op.Account, op.Token, op.Amount)
}

// Check implements the Operation interface.
func (Freezer) Check(op *transaction.TokenFreeze) response.Code {
	return checkTokenAndAccount(op.Token, op.Account)
}

// Apply implements the Operation interface.
func (f Freezer) Apply(op *transaction.TokenFreeze) response.Code {
	return f.Ledger.Freeze(op.Account, op.Token)
}

// Check implements the Operation interface.
func (Unfreezer) Check(op *transaction.TokenUnfreeze) response.Code {
	return checkTokenAndAccount(op.Token, op.Account)
}

// Apply implements the Operation interface.
func (u Unfreezer) Apply(op *transaction.TokenUnfreeze) response.Code {
	return u.Ledger.Unfreeze(op.Account, op.Token)
}

// Check implements the Operation interface.
func (KycGranter) Check(op *transaction.TokenGrantKyc) response.Code {
	return checkTokenAndAccount(op.Token, op.Account)
}

// Apply implements the Operation interface.
func (g KycGranter) Apply(op *transaction.TokenGrantKyc) response.Code {
	return g.Ledger.GrantKyc(op.Account, op.Token)
}

// Check implements the Operation interface.
func (KycRevoker) Check(op *transaction.TokenRevokeKyc) response.Code {
	return checkTokenAndAccount(op.Token, op.Account)
}

// Apply implements the Operation interface.
func (r KycRevoker) Apply(op *transaction.TokenRevokeKyc) response.Code {
	return r.Ledger.RevokeKyc(op.Account, op.Token)
}

// Check implements the Operation interface.
func (Associator) Check(op *transaction.TokenAssociate) response.Code {
	return checkTokenList(op.Account, op.Tokens)
}

// Apply implements the Operation interface.
func (a Associator) Apply(op *transaction.TokenAssociate) response.Code {
	return a.Store.Associate(op.Account, op.Tokens)
}

// Check implements the Operation interface.
func (Dissociator) Check(op *transaction.TokenDissociate) response.Code {
	return checkTokenList(op.Account, op.Tokens)
}

// Apply implements the Operation interface.
func (d Dissociator) Apply(op *transaction.TokenDissociate) response.Code {
	return d.Store.Dissociate(op.Account, op.Tokens)
}

// NewUpdateTransitionLogic creates TokenUpdate transition logic.
func NewUpdateTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenUpdate] {
	return NewTransitionLogic[*transaction.TokenUpdate](d, Updater{d})
}

// NewDeleteTransitionLogic creates TokenDelete transition logic.
func NewDeleteTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenDelete] {
	return NewTransitionLogic[*transaction.TokenDelete](d, Deleter{d})
}

// NewMintTransitionLogic creates TokenMint transition logic.
func NewMintTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenMint] {
	return NewTransitionLogic[*transaction.TokenMint](d, Minter{d})
}

// NewBurnTransitionLogic creates TokenBurn transition logic.
func NewBurnTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenBurn] {
	return NewTransitionLogic[*transaction.TokenBurn](d, Burner{d})
}

// NewWipeTransitionLogic creates TokenWipe transition logic.
func NewWipeTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenWipe] {
	return NewTransitionLogic[*transaction.TokenWipe](d, Wiper{d})
}

// NewFreezeTransitionLogic creates TokenFreeze transition logic.
func NewFreezeTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenFreeze] {
	return NewTransitionLogic[*transaction.TokenFreeze](d, Freezer{d})
}

// NewUnfreezeTransitionLogic creates TokenUnfreeze transition logic.
func NewUnfreezeTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenUnfreeze] {
	return NewTransitionLogic[*transaction.TokenUnfreeze](d, Unfreezer{d})
}

// NewGrantKycTransitionLogic creates TokenGrantKyc transition logic.
func NewGrantKycTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenGrantKyc] {
	return NewTransitionLogic[*transaction.TokenGrantKyc](d, KycGranter{d})
}

// NewRevokeKycTransitionLogic creates TokenRevokeKyc transition logic.
func NewRevokeKycTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenRevokeKyc] {
	return NewTransitionLogic[*transaction.TokenRevokeKyc](d, KycRevoker{d})
}

// NewAssociateTransitionLogic creates TokenAssociate transition logic.
func NewAssociateTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenAssociate] {
	return NewTransitionLogic[*transaction.TokenAssociate](d, Associator{d})
}

// NewDissociateTransitionLogic creates TokenDissociate transition logic.
func NewDissociateTransitionLogic(d Deps) *TransitionLogic[*transaction.TokenDissociate] {
	return NewTransitionLogic[*transaction.TokenDissociate](d, Dissociator{d})
}

// All returns transition logics of all token transactions.
func All(d Deps) []txns.TransitionLogic {
	return []txns.TransitionLogic{
		NewCreateTransitionLogic(d),
		NewUpdateTransitionLogic(d),
		NewDeleteTransitionLogic(d),
		NewMintTransitionLogic(d),
		NewBurnTransitionLogic(d),
		NewWipeTransitionLogic(d),
		NewFreezeTransitionLogic(d),
		NewUnfreezeTransitionLogic(d),
		NewGrantKycTransitionLogic(d),
		NewRevokeKycTransitionLogic(d),
		NewAssociateTransitionLogic(d),
		NewDissociateTransitionLogic(d),
	}
}
