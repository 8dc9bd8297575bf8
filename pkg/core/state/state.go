package state

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/files"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/backing"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/core/store/schedules"
	"github.com/nspcc-dev/ledger-services/pkg/core/store/tokens"
	"github.com/nspcc-dev/ledger-services/pkg/core/validation"
	"go.uber.org/zap"
)

// FirstUserEntity is the first number allocated for user entities, lower
// numbers are reserved for system accounts and files.
const FirstUserEntity = 1001

// Version is the version of the stored data layout.
const Version = "0.1.0"

// ErrIncompatibleVersion is returned for stores written with another data
// layout version.
var ErrIncompatibleVersion = errors.New("incompatible storage version")

// State holds all the ledger state components sharing one cached store.
type State struct {
	Store *storage.MemCachedStore
	IDs   *entity.SeqSource

	AccountsMap  *backing.AccountsMap
	TokenRelsMap *backing.TokenRelsMap
	TokensMap    *backing.TokensMap
	SchedulesMap *backing.SchedulesMap

	Validator *validation.Validator
	Ledger    *ledger.Ledger
	Tokens    *tokens.Store
	Schedules *schedules.Store
	Files     *files.FS

	accounts  *backing.Accounts
	tokenRels *backing.TokenRels
	view      *View
}

// New creates the state over the given store.
func New(st *storage.MemCachedStore, cfg config.ProtocolConfiguration, log *zap.Logger) (*State, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := checkVersion(st); err != nil {
		return nil, err
	}
	ids, err := entity.LoadSeqSource(st, FirstUserEntity)
	if err != nil {
		return nil, fmt.Errorf("can't load entity sequence: %w", err)
	}
	s := &State{
		Store:        st,
		IDs:          ids,
		AccountsMap:  backing.NewAccountsMap(st, log),
		TokenRelsMap: backing.NewTokenRelsMap(st, log),
		TokensMap:    backing.NewTokensMap(st, log),
		SchedulesMap: backing.NewSchedulesMap(st, log),
		Validator:    validation.New(cfg.Ledger),
	}
	s.accounts = backing.NewAccounts(s.AccountsMap, log)
	s.tokenRels = backing.NewTokenRels(s.TokenRelsMap, log)
	s.Ledger = ledger.New(ids,
		ledger.NewAccountsLedger(s.accounts, log),
		ledger.NewTokenRelsLedger(s.tokenRels, log), log)
	s.Tokens = tokens.New(ids, s.Validator, s.TokensMap, s.Ledger, log)
	s.Schedules = schedules.New(ids, s.SchedulesMap, s.Ledger.Accounts(), cfg.Ledger.ScheduleTxExpiryTime, log)
	s.Files = files.New(st, ids, s.Validator.MaxFileSize(), log)
	s.view = NewView(s.AccountsMap, s.TokenRelsMap, s.TokensMap, s.SchedulesMap, s.Files)
	return s, nil
}

// checkVersion stages the current version for empty stores and compares it
// with the stored one otherwise.
func checkVersion(st *storage.MemCachedStore) error {
	key := storage.SYSVersion.Bytes()
	v, err := st.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return st.Put(key, []byte(Version))
	}
	if err != nil {
		return fmt.Errorf("can't read storage version: %w", err)
	}
	if string(v) != Version {
		return fmt.Errorf("%w: %q, expected %q", ErrIncompatibleVersion, v, Version)
	}
	return nil
}

// View returns the read-only view of the state.
func (s *State) View() *View {
	return s.view
}

// Reload drops everything cached over the store, it must be called after
// the store changes are reset.
func (s *State) Reload() {
	s.AccountsMap.Purge()
	s.TokenRelsMap.Purge()
	s.TokensMap.Purge()
	s.SchedulesMap.Purge()
	s.Files.Purge()
	s.accounts.RebuildFromSources()
	s.tokenRels.RebuildFromSources()
	s.Tokens.Reset()
	s.Schedules.Reset()
}

// Persist saves the entity sequence and flushes the cached changes to the
// underlying store.
func (s *State) Persist() (int, error) {
	if err := s.IDs.Flush(s.Store); err != nil {
		return 0, err
	}
	return s.Store.Persist()
}
