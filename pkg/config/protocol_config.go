package config

import (
	"errors"
	"fmt"
)

// ProtocolConfiguration represents the ledger-wide settings every node of
// the network must agree upon.
type ProtocolConfiguration struct {
	ShardNum int64 `yaml:"ShardNum"`
	RealmNum int64 `yaml:"RealmNum"`
	// FeeSchedulesFile is the number of the system file holding the current
	// and next fee schedules.
	FeeSchedulesFile int64 `yaml:"FeeSchedulesFile"`
	// ExchangeRatesFile is the number of the system file holding the current
	// and next hbar to cent exchange rates.
	ExchangeRatesFile int64 `yaml:"ExchangeRatesFile"`
	// FundingAccount is the number of the account receiving network and
	// service fees.
	FundingAccount int64               `yaml:"FundingAccount"`
	Fees           FeesConfiguration   `yaml:"Fees"`
	Ledger         LedgerConfiguration `yaml:"Ledger"`
}

// FeesConfiguration contains fee multiplier settings.
type FeesConfiguration struct {
	// CongestionMultipliers must be sorted by ascending Percent.
	CongestionMultipliers []CongestionThreshold `yaml:"CongestionMultipliers"`
	// MinCongestionPeriod is the number of seconds usage must stay above a
	// threshold before its multiplier is applied.
	MinCongestionPeriod int64 `yaml:"MinCongestionPeriod"`
}

// CongestionThreshold maps throttle usage percentage to a fee multiplier.
type CongestionThreshold struct {
	Percent    int   `yaml:"Percent"`
	Multiplier int64 `yaml:"Multiplier"`
}

// LedgerConfiguration contains the limits checked by transition logic.
type LedgerConfiguration struct {
	MaxTokensPerAccount  int   `yaml:"MaxTokensPerAccount"`
	TokenNameMaxLength   int   `yaml:"TokenNameMaxLength"`
	TokenSymbolMaxLength int   `yaml:"TokenSymbolMaxLength"`
	MinAutoRenewPeriod   int64 `yaml:"MinAutoRenewPeriod"`
	MaxAutoRenewPeriod   int64 `yaml:"MaxAutoRenewPeriod"`
	MaxMemoUtf8Bytes     int   `yaml:"MaxMemoUtf8Bytes"`
	TransfersMaxLen      int   `yaml:"TransfersMaxLen"`
	TokenTransfersMaxLen int   `yaml:"TokenTransfersMaxLen"`
	// ScheduleTxExpiryTime is the lifetime of a scheduled transaction in
	// seconds.
	ScheduleTxExpiryTime int64 `yaml:"ScheduleTxExpiryTime"`
	MaxFileSizeKB        int   `yaml:"MaxFileSizeKB"`
}

// Validate checks ProtocolConfiguration for internal consistency and returns
// an error if anything inappropriate found.
func (p *ProtocolConfiguration) Validate() error {
	if p.ShardNum < 0 || p.RealmNum < 0 {
		return errors.New("negative shard or realm number")
	}
	if p.FeeSchedulesFile <= 0 || p.ExchangeRatesFile <= 0 {
		return errors.New("system file numbers must be positive")
	}
	if p.FundingAccount <= 0 {
		return errors.New("funding account number must be positive")
	}
	if p.FeeSchedulesFile == p.ExchangeRatesFile {
		return errors.New("fee schedules and exchange rates can't share a file")
	}
	var prev = -1
	for i, t := range p.Fees.CongestionMultipliers {
		if t.Percent <= prev || t.Percent > 100 {
			return fmt.Errorf("congestion threshold #%d: percent %d is out of order or range", i, t.Percent)
		}
		if t.Multiplier < 1 {
			return fmt.Errorf("congestion threshold #%d: multiplier must be at least 1", i)
		}
		prev = t.Percent
	}
	if p.Fees.MinCongestionPeriod < 0 {
		return errors.New("negative MinCongestionPeriod")
	}
	l := p.Ledger
	if l.MinAutoRenewPeriod > l.MaxAutoRenewPeriod {
		return fmt.Errorf("MinAutoRenewPeriod (%d) is greater than MaxAutoRenewPeriod (%d)", l.MinAutoRenewPeriod, l.MaxAutoRenewPeriod)
	}
	if l.TransfersMaxLen <= 0 || l.TokenTransfersMaxLen <= 0 {
		return errors.New("transfer list limits must be positive")
	}
	if l.MaxFileSizeKB <= 0 {
		return errors.New("MaxFileSizeKB must be positive")
	}
	return nil
}
