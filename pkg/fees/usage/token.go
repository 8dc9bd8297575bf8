package usage

import (
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

func tokenKeysSize(ks ...*keys.Key) int64 {
	var n int64
	for _, k := range ks {
		n += KeyStorageSize(k)
	}
	return n
}

func tokenCreateUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.TokenCreate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	size := int64(len(d.Name)+len(d.Symbol)) +
		tokenKeysSize(d.AdminKey, d.KycKey, d.FreezeKey, d.WipeKey, d.SupplyKey)
	if !d.AutoRenewAccount.IsZero() {
		size += BasicEntityIDSize
	}
	life := d.AutoRenewPeriod
	if life == 0 {
		life = lifetime(b, d.Expiry)
	}
	return NewEstimate(b.Memo, sigs).
		AddBpt(size + BasicTokenSize).
		AddRbs((BasicTokenSize + size) * life).
		AddRbs(TokenRelSize * life).
		AddNetworkRbs(BasicEntityIDSize * ReceiptStorageTimeSec).
		Get(), nil
}

func tokenUpdateUsage(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.TokenUpdate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	size := int64(len(d.Name)+len(d.Symbol)) +
		tokenKeysSize(d.AdminKey, d.KycKey, d.FreezeKey, d.WipeKey, d.SupplyKey)
	if d.Treasury != nil {
		size += BasicEntityIDSize
	}
	if d.AutoRenewAccount != nil {
		size += BasicEntityIDSize
	}
	e := NewEstimate(b.Memo, sigs).AddBpt(BasicEntityIDSize + size)
	if view != nil {
		if tok, ok := view.Token(d.Token); ok {
			e.AddRbs(size * lifetime(b, max(tok.Expiry, d.Expiry)))
		}
	}
	return e.Get(), nil
}

// tokenOpUsage covers operations referencing a token, an account and an
// amount at most.
func tokenOpUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	var size int64
	switch b.Data.(type) {
	case *transaction.TokenDelete:
		size = BasicEntityIDSize
	case *transaction.TokenMint:
		size = BasicEntityIDSize + LongSize
	case *transaction.TokenBurn:
		size = BasicEntityIDSize + LongSize
	case *transaction.TokenWipe:
		size = 2*BasicEntityIDSize + LongSize
	case *transaction.TokenFreeze, *transaction.TokenUnfreeze,
		*transaction.TokenGrantKyc, *transaction.TokenRevokeKyc:
		size = 2 * BasicEntityIDSize
	default:
		return schedule.FeeData{}, fmt.Errorf("%w: %T", ErrUnexpectedData, b.Data)
	}
	return NewEstimate(b.Memo, sigs).AddBpt(size).Get(), nil
}

func tokenAssociateUsage(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.TokenAssociate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	n := int64(len(d.Tokens))
	e := NewEstimate(b.Memo, sigs).AddBpt(BasicEntityIDSize * (n + 1))
	if view != nil {
		if acc, ok := view.Account(d.Account); ok {
			e.AddRbs(n * TokenRelSize * lifetime(b, acc.Expiry))
		}
	}
	return e.Get(), nil
}

func tokenDissociateUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.TokenDissociate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	return NewEstimate(b.Memo, sigs).AddBpt(BasicEntityIDSize * int64(len(d.Tokens)+1)).Get(), nil
}
