/*
Package query defines state queries that are answered without consensus
and priced with query fee estimators.
*/
package query

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
)

// ResponseType is the kind of answer requested.
type ResponseType byte

// Response types.
const (
	AnswerOnly ResponseType = iota
	AnswerStateProof
	CostAnswer
	CostAnswerStateProof
)

// HasStateProof checks whether the response includes a state proof.
func (t ResponseType) HasStateProof() bool {
	return t == AnswerStateProof || t == CostAnswerStateProof
}

// IsCostOnly checks whether only the cost of the query is requested.
func (t ResponseType) IsCostOnly() bool {
	return t == CostAnswer || t == CostAnswerStateProof
}

// Query is a state query.
type Query struct {
	ResponseType ResponseType
	Data         Data
}

// Data is the query-specific part.
type Data interface {
	Functionality() transaction.Functionality
}

// Functionality returns the kind of the query or None if there is no data.
func (q *Query) Functionality() transaction.Functionality {
	if q == nil || q.Data == nil {
		return transaction.None
	}
	return q.Data.Functionality()
}

type (
	// CryptoGetAccountBalance requests account balance.
	CryptoGetAccountBalance struct {
		Account entity.ID
	}

	// CryptoGetInfo requests account information.
	CryptoGetInfo struct {
		Account entity.ID
	}

	// FileGetContents requests file contents.
	FileGetContents struct {
		File entity.ID
	}

	// FileGetInfo requests file metadata.
	FileGetInfo struct {
		File entity.ID
	}

	// TokenGetInfo requests token information.
	TokenGetInfo struct {
		Token entity.ID
	}

	// ScheduleGetInfo requests schedule information.
	ScheduleGetInfo struct {
		Schedule entity.ID
	}

	// TransactionGetReceipt requests a transaction receipt.
	TransactionGetReceipt struct {
		TxID transaction.TransactionID
	}
)

// Functionality implements the Data interface.
func (*CryptoGetAccountBalance) Functionality() transaction.Functionality {
	return transaction.CryptoGetAccountBalance
}

// Functionality implements the Data interface.
func (*CryptoGetInfo) Functionality() transaction.Functionality { return transaction.CryptoGetInfo }

// Functionality implements the Data interface.
func (*FileGetContents) Functionality() transaction.Functionality {
	return transaction.FileGetContents
}

// Functionality implements the Data interface.
func (*FileGetInfo) Functionality() transaction.Functionality { return transaction.FileGetInfo }

// Functionality implements the Data interface.
func (*TokenGetInfo) Functionality() transaction.Functionality { return transaction.TokenGetInfo }

// Functionality implements the Data interface.
func (*ScheduleGetInfo) Functionality() transaction.Functionality {
	return transaction.ScheduleGetInfo
}

// Functionality implements the Data interface.
func (*TransactionGetReceipt) Functionality() transaction.Functionality {
	return transaction.TransactionGetReceipt
}
