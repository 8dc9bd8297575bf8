/*
Package testledger provides a ledger state with well-known accounts for
tests.
*/
package testledger

import (
	"testing"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/backing"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// InitialBalance is the balance of every well-known account except system
// ones.
const InitialBalance = 1_000_000_000

// Well-known accounts.
var (
	Node    = entity.NewID(0, 0, 3)
	Funding = entity.NewID(0, 0, 98)
	Payer   = entity.NewID(0, 0, 1001)
	Alice   = entity.NewID(0, 0, 1002)
	Bob     = entity.NewID(0, 0, 1003)
	Deleted = entity.NewID(0, 0, 1004)
	Missing = entity.NewID(0, 0, 9999)
)

// Now is the consensus time used by tests.
var Now = time.Unix(1_600_000_000, 0)

// FirstEntity is the number the first entity created in tests gets.
const FirstEntity = 2001

// Key returns a deterministic ed25519 key.
func Key(b byte) *keys.Key {
	pub := make([]byte, keys.Ed25519Size)
	pub[0] = b
	pub[keys.Ed25519Size-1] = b
	return keys.NewEd25519(pub)
}

// Config returns the protocol configuration used by tests.
func Config() config.ProtocolConfiguration {
	return config.Default().ProtocolConfiguration
}

// New creates the state with well-known accounts, cfg can be nil to use
// Config().
func New(t testing.TB, cfg *config.ProtocolConfiguration) *state.State {
	var (
		log = zaptest.NewLogger(t)
		st  = storage.NewMemCachedStore(storage.NewMemoryStore())
		am  = backing.NewAccountsMap(st, log)
	)
	if cfg == nil {
		c := Config()
		cfg = &c
	}
	seed := []struct {
		id      entity.ID
		account entity.Account
	}{
		{Node, entity.Account{Key: Key(3)}},
		{Funding, entity.Account{Key: Key(98)}},
		{Payer, entity.Account{Key: Key(1), Balance: InitialBalance}},
		{Alice, entity.Account{Key: Key(2), Balance: InitialBalance}},
		{Bob, entity.Account{Key: Key(4), Balance: InitialBalance, ReceiverSigRequired: true}},
		{Deleted, entity.Account{Key: Key(5), Deleted: true}},
	}
	for _, s := range seed {
		a := s.account
		a.Expiry = Now.Unix() + 90*24*3600
		a.AutoRenewPeriod = 90 * 24 * 3600
		require.NoError(t, am.Put(s.id, &a))
	}
	ids := entity.NewSeqSource(FirstEntity)
	require.NoError(t, ids.Flush(st))
	_, err := st.Persist()
	require.NoError(t, err)

	s, err := state.New(st, *cfg, log)
	require.NoError(t, err)
	return s
}

// Accessor wraps the data into a transaction paid by Payer and valid at
// Now.
func Accessor(data transaction.Data) *transaction.Accessor {
	return AccessorFrom(Payer, data)
}

// AccessorFrom wraps the data into a transaction paid by the given account.
func AccessorFrom(payer entity.ID, data transaction.Data) *transaction.Accessor {
	return transaction.NewAccessor(&transaction.Body{
		TransactionID: transaction.TransactionID{
			Payer:      payer,
			ValidStart: Now.Add(-time.Second),
		},
		NodeAccount:    Node,
		TransactionFee: 100_000_000,
		ValidDuration:  120,
		Data:           data,
	}, transaction.SigMap{})
}

// Next commits the current ledger transaction, persists the state and
// begins a new transaction.
func Next(t testing.TB, s *state.State) {
	require.NoError(t, s.Ledger.Commit())
	_, err := s.Persist()
	require.NoError(t, err)
	s.IDs.ResetProvisionalIDs()
	require.NoError(t, s.Ledger.Begin())
}
