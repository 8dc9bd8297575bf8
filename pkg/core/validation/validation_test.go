package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
)

func newValidator() *Validator {
	return New(config.Default().ProtocolConfiguration.Ledger)
}

func TestStrings(t *testing.T) {
	v := newValidator()
	testCases := []struct {
		name  string
		check func(string) response.Code
		in    string
		code  response.Code
	}{
		{"empty memo", v.MemoCheck, "", response.OK},
		{"memo", v.MemoCheck, "hello", response.OK},
		{"long memo", v.MemoCheck, strings.Repeat("a", 101), response.MemoTooLong},
		{"zero in memo", v.MemoCheck, "a\x00b", response.InvalidZeroByteInString},
		{"no name", v.TokenNameCheck, "", response.MissingTokenName},
		{"name", v.TokenNameCheck, "Primary", response.OK},
		{"long name", v.TokenNameCheck, strings.Repeat("n", 101), response.TokenNameTooLong},
		{"no symbol", v.TokenSymbolCheck, "", response.MissingTokenSymbol},
		{"symbol", v.TokenSymbolCheck, "ABC", response.OK},
		{"lower symbol", v.TokenSymbolCheck, "AbC", response.InvalidTokenSymbol},
		{"long symbol", v.TokenSymbolCheck, strings.Repeat("S", 101), response.TokenSymbolTooLong},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, tc.check(tc.in))
		})
	}
}

func TestAutoRenewAndExpiry(t *testing.T) {
	v := newValidator()
	require.False(t, v.IsValidAutoRenewPeriod(0))
	require.True(t, v.IsValidAutoRenewPeriod(1))
	require.True(t, v.IsValidAutoRenewPeriod(1_000_000_000))
	require.False(t, v.IsValidAutoRenewPeriod(1_000_000_001))

	now := time.Unix(1000, 0)
	require.False(t, v.IsValidExpiry(1000, now))
	require.True(t, v.IsValidExpiry(1001, now))
}

func TestKeys(t *testing.T) {
	v := newValidator()
	require.True(t, v.HasGoodEncoding(keys.NewEd25519(make([]byte, keys.Ed25519Size))))
	require.False(t, v.HasGoodEncoding(nil))
	require.False(t, v.HasGoodEncoding(keys.NewList()))
}

func TestTransferLengths(t *testing.T) {
	v := newValidator()
	var l transaction.TransferList
	for i := 0; i < 10; i++ {
		l.AccountAmounts = append(l.AccountAmounts, transaction.AccountAmount{Account: entity.NewID(0, 0, int64(i))})
	}
	require.True(t, v.IsAcceptableTransfersLength(l))
	l.AccountAmounts = append(l.AccountAmounts, transaction.AccountAmount{})
	require.False(t, v.IsAcceptableTransfersLength(l))

	tl := []transaction.TokenTransferList{{Token: entity.NewID(0, 0, 1), Transfers: l.AccountAmounts[:6]}}
	require.Equal(t, response.OK, v.TokenTransfersLengthCheck(tl))
	tl = append(tl, transaction.TokenTransferList{Token: entity.NewID(0, 0, 2), Transfers: l.AccountAmounts[:5]})
	require.Equal(t, response.TokenTransferListSizeLimitExceeded, v.TokenTransfersLengthCheck(tl))
	tl = append(tl, transaction.TokenTransferList{Token: entity.NewID(0, 0, 3)})
	require.Equal(t, response.EmptyTokenTransferAccountAmounts, v.TokenTransfersLengthCheck(tl))

	require.Equal(t, 1024*1024, v.MaxFileSize())
}
