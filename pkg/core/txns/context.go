/*
Package txns contains the transaction handling pipeline: transaction context,
transition logic interface and the processor running them against the
ledger.
*/
package txns

import (
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
)

// TransactionContext gives transition logic access to the transaction being
// handled and receives its outcome.
type TransactionContext interface {
	Accessor() *transaction.Accessor
	ConsensusTime() time.Time
	ActivePayer() entity.ID
	SetStatus(code response.Code)
	SetCreated(id entity.ID)
}

// BasicContext is a reusable TransactionContext.
type BasicContext struct {
	accessor      *transaction.Accessor
	consensusTime time.Time
	status        response.Code
	created       entity.ID
}

var _ TransactionContext = (*BasicContext)(nil)

// NewBasicContext creates an empty context.
func NewBasicContext() *BasicContext {
	return &BasicContext{status: response.Unknown}
}

// Reset prepares the context for the next transaction.
func (c *BasicContext) Reset(accessor *transaction.Accessor, consensusTime time.Time) {
	c.accessor = accessor
	c.consensusTime = consensusTime
	c.status = response.Unknown
	c.created = entity.ID{}
}

// Accessor implements the TransactionContext interface.
func (c *BasicContext) Accessor() *transaction.Accessor { return c.accessor }

// ConsensusTime implements the TransactionContext interface.
func (c *BasicContext) ConsensusTime() time.Time { return c.consensusTime }

// ActivePayer implements the TransactionContext interface.
func (c *BasicContext) ActivePayer() entity.ID {
	if c.accessor == nil {
		return entity.ID{}
	}
	return c.accessor.Payer()
}

// SetStatus implements the TransactionContext interface.
func (c *BasicContext) SetStatus(code response.Code) { c.status = code }

// SetCreated implements the TransactionContext interface.
func (c *BasicContext) SetCreated(id entity.ID) { c.created = id }

// Status returns the status set by transition logic.
func (c *BasicContext) Status() response.Code { return c.status }

// Created returns the id of the entity created by the transaction.
func (c *BasicContext) Created() entity.ID { return c.created }
