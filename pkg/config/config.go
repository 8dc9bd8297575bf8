package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/ledger-services/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the file name looked up by Load in the given
	// directory.
	DefaultConfigFile = "ledger.yml"
)

// Version is the version of the node, set at build time.
var Version = "dev"

// Config top level struct representing the config
// for the node.
type Config struct {
	ProtocolConfiguration    ProtocolConfiguration    `yaml:"ProtocolConfiguration"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load attempts to load the config from the given directory, the file
// name is DefaultConfigFile.
func Load(path string) (Config, error) {
	return LoadFile(filepath.Join(path, DefaultConfigFile))
}

// LoadFile loads config from the provided path. Default values are applied
// to the fields that are not present in the file, the result is validated.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Unmarshal(configData)
}

// Unmarshal decodes YAML config data over the defaults and validates the
// result. Unknown fields are rejected.
func Unmarshal(data []byte) (Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.ProtocolConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ProtocolConfiguration: ProtocolConfiguration{
			ShardNum:          0,
			RealmNum:          0,
			FeeSchedulesFile:  111,
			ExchangeRatesFile: 112,
			FundingAccount:    98,
			Fees: FeesConfiguration{
				CongestionMultipliers: []CongestionThreshold{
					{Percent: 90, Multiplier: 10},
					{Percent: 95, Multiplier: 25},
					{Percent: 99, Multiplier: 100},
				},
				MinCongestionPeriod: 60,
			},
			Ledger: LedgerConfiguration{
				MaxTokensPerAccount:  1000,
				TokenNameMaxLength:   100,
				TokenSymbolMaxLength: 100,
				MinAutoRenewPeriod:   1,
				MaxAutoRenewPeriod:   1_000_000_000,
				MaxMemoUtf8Bytes:     100,
				TransfersMaxLen:      10,
				TokenTransfersMaxLen: 10,
				ScheduleTxExpiryTime: 1800,
				MaxFileSizeKB:        1024,
			},
		},
		ApplicationConfiguration: ApplicationConfiguration{
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
		},
	}
}
