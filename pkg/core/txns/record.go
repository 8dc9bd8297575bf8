package txns

import (
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
)

// Record is the outcome of a handled transaction.
type Record struct {
	TxID          transaction.TransactionID
	ConsensusTime time.Time
	Status        response.Code
	// Created is the id of the entity created by the transaction, zero if
	// nothing was created.
	Created entity.ID
	// Fee is the total fee charged from the payer in tinybars.
	Fee            int64
	Transfers      transaction.TransferList
	TokenTransfers []transaction.TokenTransferList
}
