/*
Package validation contains checks of user-supplied options that depend on
the ledger configuration.
*/
package validation

import (
	"strings"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
)

// Validator checks options against configured limits.
type Validator struct {
	cfg config.LedgerConfiguration
}

// New creates a validator for the given limits.
func New(cfg config.LedgerConfiguration) *Validator {
	return &Validator{cfg: cfg}
}

// Config returns the limits used by the validator.
func (v *Validator) Config() config.LedgerConfiguration {
	return v.cfg
}

// IsValidAutoRenewPeriod checks that the period is within configured range.
func (v *Validator) IsValidAutoRenewPeriod(seconds int64) bool {
	return seconds >= v.cfg.MinAutoRenewPeriod && seconds <= v.cfg.MaxAutoRenewPeriod
}

// IsValidExpiry checks that the expiration time is in the future.
func (v *Validator) IsValidExpiry(expiry int64, now time.Time) bool {
	return expiry > now.Unix()
}

// HasGoodEncoding checks that the key is well-formed.
func (v *Validator) HasGoodEncoding(k *keys.Key) bool {
	return k.Validate() == nil
}

// MemoCheck checks memo length and contents.
func (v *Validator) MemoCheck(memo string) response.Code {
	return v.lengthAndBytesCheck(memo, v.cfg.MaxMemoUtf8Bytes, response.OK, response.MemoTooLong)
}

// TokenNameCheck checks token name.
func (v *Validator) TokenNameCheck(name string) response.Code {
	return v.lengthAndBytesCheck(name, v.cfg.TokenNameMaxLength, response.MissingTokenName, response.TokenNameTooLong)
}

// TokenSymbolCheck checks token symbol, it must consist of upper-case
// letters.
func (v *Validator) TokenSymbolCheck(symbol string) response.Code {
	code := v.lengthAndBytesCheck(symbol, v.cfg.TokenSymbolMaxLength, response.MissingTokenSymbol, response.TokenSymbolTooLong)
	if code != response.OK {
		return code
	}
	for _, c := range symbol {
		if c < 'A' || c > 'Z' {
			return response.InvalidTokenSymbol
		}
	}
	return response.OK
}

// lengthAndBytesCheck returns onEmpty for empty strings (OK means empty is
// allowed) and onTooLong when UTF-8 length exceeds maxLen.
func (v *Validator) lengthAndBytesCheck(s string, maxLen int, onEmpty, onTooLong response.Code) response.Code {
	if len(s) == 0 {
		return onEmpty
	}
	if len(s) > maxLen {
		return onTooLong
	}
	if strings.IndexByte(s, 0) >= 0 {
		return response.InvalidZeroByteInString
	}
	return response.OK
}

// IsAcceptableTransfersLength checks the number of hbar adjustments.
func (v *Validator) IsAcceptableTransfersLength(l transaction.TransferList) bool {
	return len(l.AccountAmounts) <= v.cfg.TransfersMaxLen
}

// TokenTransfersLengthCheck checks the number of token adjustments.
func (v *Validator) TokenTransfersLengthCheck(lists []transaction.TokenTransferList) response.Code {
	var n int
	for _, l := range lists {
		if len(l.Transfers) == 0 {
			return response.EmptyTokenTransferAccountAmounts
		}
		n += len(l.Transfers)
	}
	if n > v.cfg.TokenTransfersMaxLen {
		return response.TokenTransferListSizeLimitExceeded
	}
	return response.OK
}

// MaxFileSize returns the maximum file size in bytes.
func (v *Validator) MaxFileSize() int {
	return v.cfg.MaxFileSizeKB * 1024
}
