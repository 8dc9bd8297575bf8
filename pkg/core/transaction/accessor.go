package transaction

import "github.com/nspcc-dev/ledger-services/pkg/core/entity"

// Accessor gives access to the decoded transaction and its signatures.
type Accessor struct {
	body   *Body
	sigMap SigMap
}

// NewAccessor creates an accessor for the given body and signatures.
func NewAccessor(body *Body, sigMap SigMap) *Accessor {
	return &Accessor{body: body, sigMap: sigMap}
}

// Body returns the transaction body.
func (a *Accessor) Body() *Body { return a.body }

// Function returns the transaction kind.
func (a *Accessor) Function() Functionality { return a.body.Functionality() }

// Payer returns the account paying for the transaction.
func (a *Accessor) Payer() entity.ID { return a.body.TransactionID.Payer }

// TxID returns the transaction identifier.
func (a *Accessor) TxID() TransactionID { return a.body.TransactionID }

// SigMap returns the transaction signatures.
func (a *Accessor) SigMap() *SigMap { return &a.sigMap }
