package transaction

import (
	"errors"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
)

// ErrAmountOverflow is returned when adding amounts overflows int64.
var ErrAmountOverflow = errors.New("amount overflow")

// AccountAmount is a single balance adjustment.
type AccountAmount struct {
	Account entity.ID
	Amount  int64
}

// TransferList is a list of hbar adjustments that must sum to zero.
type TransferList struct {
	AccountAmounts []AccountAmount
}

// TokenTransferList is a list of adjustments of a single token.
type TokenTransferList struct {
	Token     entity.ID
	Transfers []AccountAmount
}

// Sum returns the sum of adjustments or ErrAmountOverflow if it doesn't fit
// into int64.
func (l TransferList) Sum() (int64, error) {
	return sumOf(l.AccountAmounts)
}

// HasRepeatedAccount checks whether any account appears in the list more
// than once.
func (l TransferList) HasRepeatedAccount() bool {
	return hasRepeated(l.AccountAmounts)
}

// Sum returns the sum of adjustments or ErrAmountOverflow if it doesn't fit
// into int64.
func (l TokenTransferList) Sum() (int64, error) {
	return sumOf(l.Transfers)
}

// HasRepeatedAccount checks whether any account appears in the list more
// than once.
func (l TokenTransferList) HasRepeatedAccount() bool {
	return hasRepeated(l.Transfers)
}

// AddAmounts returns a+b or ErrAmountOverflow.
func AddAmounts(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrAmountOverflow
	}
	return s, nil
}

func sumOf(aas []AccountAmount) (int64, error) {
	var (
		s   int64
		err error
	)
	for _, aa := range aas {
		s, err = AddAmounts(s, aa.Amount)
		if err != nil {
			return 0, err
		}
	}
	return s, nil
}

func hasRepeated(aas []AccountAmount) bool {
	seen := make(map[entity.ID]struct{}, len(aas))
	for _, aa := range aas {
		if _, ok := seen[aa.Account]; ok {
			return true
		}
		seen[aa.Account] = struct{}{}
	}
	return false
}
