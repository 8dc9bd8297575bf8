/*
Package transaction contains decoded ledger transaction bodies and the
accessor used to pass them through fee calculation and transition logic.
*/
package transaction

import (
	"fmt"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
)

// TransactionID identifies a transaction by its payer and valid start time.
type TransactionID struct {
	Payer      entity.ID
	ValidStart time.Time
	Scheduled  bool
}

// String implements the fmt.Stringer interface.
func (id TransactionID) String() string {
	s := fmt.Sprintf("%s@%d.%09d", id.Payer, id.ValidStart.Unix(), id.ValidStart.Nanosecond())
	if id.Scheduled {
		s += "?scheduled"
	}
	return s
}

// Body is a decoded transaction body.
type Body struct {
	TransactionID  TransactionID
	NodeAccount    entity.ID
	TransactionFee uint64
	// ValidDuration is the number of seconds the transaction is valid for
	// after ValidStart.
	ValidDuration int64
	Memo          string
	Data          Data
}

// Data is the operation-specific part of the transaction body.
type Data interface {
	Functionality() Functionality
}

// Functionality returns the kind of the transaction or None if there is
// no data.
func (b *Body) Functionality() Functionality {
	if b == nil || b.Data == nil {
		return None
	}
	return b.Data.Functionality()
}
