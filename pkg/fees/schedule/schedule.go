/*
Package schedule contains fee schedule and exchange rate structures along
with their protobuf wire format codecs. Both are stored as system files and
loaded by the fee calculator.
*/
package schedule

import "github.com/nspcc-dev/ledger-services/pkg/core/transaction"

type (
	// FeeComponents are the prices of resources in thousandths of tinycents
	// per unit, bounded by Min and Max.
	FeeComponents struct {
		Min      int64 `yaml:"Min"`
		Max      int64 `yaml:"Max"`
		Constant int64 `yaml:"Constant"`
		Bpt      int64 `yaml:"Bpt"`
		Vpt      int64 `yaml:"Vpt"`
		Rbh      int64 `yaml:"Rbh"`
		Sbh      int64 `yaml:"Sbh"`
		Gas      int64 `yaml:"Gas"`
		Tv       int64 `yaml:"Tv"`
		Bpr      int64 `yaml:"Bpr"`
		Sbpr     int64 `yaml:"Sbpr"`
	}

	// FeeData is a set of prices for node, network and service fees.
	FeeData struct {
		Node    FeeComponents `yaml:"Node"`
		Network FeeComponents `yaml:"Network"`
		Service FeeComponents `yaml:"Service"`
	}

	// TransactionFeeSchedule binds prices to a functionality.
	TransactionFeeSchedule struct {
		Function transaction.Functionality `yaml:"Function"`
		Fees     FeeData                   `yaml:",inline"`
	}

	// FeeSchedule is a price table valid until Expiry (in seconds).
	FeeSchedule struct {
		Expiry  int64                    `yaml:"ExpiryTime"`
		Entries []TransactionFeeSchedule `yaml:"Entries"`
	}

	// CurrentAndNextFeeSchedule is the content of the fee schedules file.
	CurrentAndNextFeeSchedule struct {
		Current FeeSchedule `yaml:"Current"`
		Next    FeeSchedule `yaml:"Next"`
	}

	// ExchangeRate is the value of HbarEquiv hbars in cents (CentEquiv).
	ExchangeRate struct {
		HbarEquiv int32 `yaml:"HbarEquiv"`
		CentEquiv int32 `yaml:"CentEquiv"`
		Expiry    int64 `yaml:"ExpiryTime"`
	}

	// ExchangeRateSet is the content of the exchange rates file.
	ExchangeRateSet struct {
		Current ExchangeRate `yaml:"Current"`
		Next    ExchangeRate `yaml:"Next"`
	}
)

// Lookup returns the prices of the given functionality.
func (s *FeeSchedule) Lookup(fn transaction.Functionality) (FeeData, bool) {
	for i := range s.Entries {
		if s.Entries[i].Function == fn {
			return s.Entries[i].Fees, true
		}
	}
	return FeeData{}, false
}

// IsZero checks whether the rate is unset.
func (r ExchangeRate) IsZero() bool {
	return r.HbarEquiv == 0 && r.CentEquiv == 0
}
