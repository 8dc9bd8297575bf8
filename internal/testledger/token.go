package testledger

import (
	"testing"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/stretchr/testify/require"
)

// TokenCreate returns a token creation request with all keys set and
// Payer as treasury.
func TokenCreate(symbol string, supply uint64) *transaction.TokenCreate {
	return &transaction.TokenCreate{
		Name:          symbol + " token",
		Symbol:        symbol,
		Decimals:      2,
		InitialSupply: supply,
		Treasury:      Payer,
		AdminKey:      Key(10),
		KycKey:        Key(11),
		FreezeKey:     Key(12),
		WipeKey:       Key(13),
		SupplyKey:     Key(14),
		Expiry:        Now.Unix() + 1000,
	}
}

// CreateToken creates the token the way its creation transaction does and
// commits it.
func CreateToken(t testing.TB, s *state.State, op *transaction.TokenCreate) entity.ID {
	id, code := s.Tokens.CreateProvisionally(op, op.Treasury, Now.Unix())
	require.Equal(t, response.OK, code)
	require.Equal(t, response.OK, s.Tokens.Associate(op.Treasury, []entity.ID{id}))
	if op.FreezeKey != nil {
		require.Equal(t, response.OK, s.Tokens.Unfreeze(op.Treasury, id))
	}
	if op.KycKey != nil {
		require.Equal(t, response.OK, s.Tokens.GrantKyc(op.Treasury, id))
	}
	require.Equal(t, response.OK, s.Ledger.AdjustTokenBalance(op.Treasury, id, int64(op.InitialSupply)))
	require.NoError(t, s.Tokens.CommitCreation())
	Next(t, s)
	return id
}

// Associate associates the account with the token granting KYC to it and
// commits the change.
func Associate(t testing.TB, s *state.State, account, token entity.ID) {
	require.Equal(t, response.OK, s.Tokens.Associate(account, []entity.ID{token}))
	tok, err := s.Tokens.Get(token)
	require.NoError(t, err)
	if tok.KycKey != nil {
		require.Equal(t, response.OK, s.Tokens.GrantKyc(account, token))
	}
	Next(t, s)
}
