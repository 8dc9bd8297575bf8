package core

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"gopkg.in/yaml.v3"
)

// genesisLifetime is the lifetime of genesis accounts and system files.
const genesisLifetime = 90 * 24 * time.Hour

// ErrInitialized is returned by Bootstrap for already initialized stores.
var ErrInitialized = errors.New("ledger is already initialized")

type (
	// Genesis is the initial state of the ledger.
	Genesis struct {
		// SystemKey is the hex-encoded Ed25519 key allowed to update system
		// files.
		SystemKey     string                             `yaml:"SystemKey"`
		Accounts      []GenesisAccount                   `yaml:"Accounts"`
		FeeSchedules  schedule.CurrentAndNextFeeSchedule `yaml:"FeeSchedules"`
		ExchangeRates schedule.ExchangeRateSet           `yaml:"ExchangeRates"`
	}

	// GenesisAccount is an account created at bootstrap.
	GenesisAccount struct {
		Number  int64  `yaml:"Number"`
		Key     string `yaml:"Key"`
		Balance int64  `yaml:"Balance"`
	}
)

// LoadGenesis reads genesis from the YAML file.
func LoadGenesis(path string) (Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("unable to read genesis file: %w", err)
	}
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Genesis{}, fmt.Errorf("failed to unmarshal genesis YAML: %w", err)
	}
	return g, nil
}

// Bootstrap creates genesis accounts and system files in an empty store.
func (n *Node) Bootstrap(g Genesis, now time.Time) error {
	n.lock.Lock()
	defer n.lock.Unlock()

	s := n.state
	if s.Files.Exists(n.feeSchedulesFile) {
		return ErrInitialized
	}
	sysKey, err := keys.NewEd25519FromString(g.SystemKey)
	if err != nil {
		return fmt.Errorf("bad system key: %w", err)
	}
	expiry := now.Add(genesisLifetime).Unix()
	accounts := make(map[entity.ID]*entity.Account, len(g.Accounts))
	for _, ga := range g.Accounts {
		if ga.Number <= 0 || ga.Number >= state.FirstUserEntity {
			return fmt.Errorf("account number %d is out of system range", ga.Number)
		}
		if ga.Balance < 0 {
			return fmt.Errorf("negative balance of account %d", ga.Number)
		}
		key, err := keys.NewEd25519FromString(ga.Key)
		if err != nil {
			return fmt.Errorf("bad key of account %d: %w", ga.Number, err)
		}
		id := n.id(ga.Number)
		if _, ok := accounts[id]; ok {
			return fmt.Errorf("duplicate account %s", id)
		}
		accounts[id] = &entity.Account{
			Key:             key,
			Balance:         ga.Balance,
			Expiry:          expiry,
			AutoRenewPeriod: int64(genesisLifetime / time.Second),
		}
	}
	for id, acc := range accounts {
		if err := s.AccountsMap.Put(id, acc); err != nil {
			return err
		}
	}
	meta := func() *entity.FileMeta {
		return &entity.FileMeta{WACL: keys.NewList(sysKey), Expiry: expiry}
	}
	if err := s.Files.CreateAt(n.feeSchedulesFile, g.FeeSchedules.Bytes(), meta()); err != nil {
		return fmt.Errorf("can't create fee schedules file: %w", err)
	}
	if err := s.Files.CreateAt(n.exchangeRatesFile, g.ExchangeRates.Bytes(), meta()); err != nil {
		return fmt.Errorf("can't create exchange rates file: %w", err)
	}
	s.Reload()
	if _, err := s.Persist(); err != nil {
		return fmt.Errorf("can't persist genesis: %w", err)
	}
	n.log.Info("ledger bootstrapped")
	return nil
}
