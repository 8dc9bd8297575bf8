/*
Package usage contains resource usage estimators for transactions and
queries. Estimators only count resources (bytes, signatures, storage
hours, gas), prices are applied by the fee calculator.
*/
package usage

import (
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

// Basic sizes of serialized values in bytes.
const (
	LongSize               = 8
	IntSize                = 4
	BoolSize               = 4
	KeySize                = 32
	TxHashSize             = 48
	BasicEntityIDSize      = 3 * LongSize
	ReceiptStorageTimeSec  = 180
	HrsDivisor             = 3600
	BasicQueryHeader       = 212
	StateProofSize         = 2000
	BasicTxIDSize          = BasicEntityIDSize + LongSize
	BasicAccountAmountSize = BasicEntityIDSize + LongSize
	BasicTxBodySize        = BasicEntityIDSize + BasicTxIDSize + LongSize + LongSize
	BasicQueryResHeader    = 2*IntSize + LongSize
	BasicAccountSize       = 8*LongSize + BoolSize
	BaseFileInfoSize       = BasicEntityIDSize + LongSize
	BasicContractCreate    = BasicEntityIDSize + 6*LongSize
	ExchangeRateSize       = 2*IntSize + LongSize
	BasicReceiptSize       = IntSize + 2*ExchangeRateSize
	BasicTxRecordSize      = BasicReceiptSize + TxHashSize + LongSize + BasicTxIDSize + LongSize
	TokenRelSize           = BasicEntityIDSize + LongSize + 2*BoolSize
	BasicTokenSize         = 2*BasicEntityIDSize + 3*LongSize + IntSize + 2*BoolSize
	BasicScheduleSize      = 2*BasicEntityIDSize + LongSize + 2*BoolSize
)

// KeyStorageSize returns the number of bytes the key takes in state.
func KeyStorageSize(k *keys.Key) int64 {
	simple, thresholds := k.CountMetadata()
	return int64(simple*KeySize + thresholds*IntSize)
}

// NonDegenerateDiv divides a by b rounding non-zero results up to at least 1.
func NonDegenerateDiv(a, b int64) int64 {
	if a == 0 {
		return 0
	}
	return max(1, a/b)
}

// Estimate accumulates transaction resource usage.
type Estimate struct {
	bpt          int64
	vpt          int64
	rbs          int64
	sbs          int64
	gas          int64
	tv           int64
	networkRbs   int64
	numPayerKeys int64
}

// NewEstimate creates an estimate with the resources every transaction
// consumes: the common body part with memo, signatures and the receipt.
func NewEstimate(memo string, sigs SigUsage) *Estimate {
	return &Estimate{
		bpt:          int64(BasicTxBodySize + len(memo) + sigs.SigsSize),
		vpt:          int64(sigs.NumSigs),
		networkRbs:   BasicReceiptSize * ReceiptStorageTimeSec,
		numPayerKeys: int64(sigs.NumPayerKeys),
	}
}

// AddBpt adds transaction bytes.
func (e *Estimate) AddBpt(n int64) *Estimate { e.bpt += n; return e }

// AddVpt adds signature verifications.
func (e *Estimate) AddVpt(n int64) *Estimate { e.vpt += n; return e }

// AddRbs adds RAM byte-seconds.
func (e *Estimate) AddRbs(n int64) *Estimate { e.rbs += n; return e }

// AddSbs adds storage byte-seconds.
func (e *Estimate) AddSbs(n int64) *Estimate { e.sbs += n; return e }

// AddGas adds gas used.
func (e *Estimate) AddGas(n int64) *Estimate { e.gas += n; return e }

// AddTv adds transferred value.
func (e *Estimate) AddTv(n int64) *Estimate { e.tv += n; return e }

// AddNetworkRbs adds RAM byte-seconds kept by the network (receipts).
func (e *Estimate) AddNetworkRbs(n int64) *Estimate { e.networkRbs += n; return e }

// Get splits the usage into node, network and service components.
func (e *Estimate) Get() schedule.FeeData {
	return schedule.FeeData{
		Node: schedule.FeeComponents{
			Constant: 1,
			Bpt:      e.bpt,
			Vpt:      e.numPayerKeys,
			Bpr:      IntSize,
		},
		Network: schedule.FeeComponents{
			Constant: 1,
			Bpt:      e.bpt,
			Vpt:      e.vpt,
			Rbh:      NonDegenerateDiv(e.networkRbs, HrsDivisor),
		},
		Service: schedule.FeeComponents{
			Constant: 1,
			Rbh:      NonDegenerateDiv(e.rbs, HrsDivisor),
			Sbh:      NonDegenerateDiv(e.sbs, HrsDivisor),
			Gas:      e.gas,
			Tv:       e.tv,
		},
	}
}

// QueryEstimate accumulates query resource usage, queries are only paid to
// the node answering them.
type QueryEstimate struct {
	bpt  int64
	bpr  int64
	sbpr int64
}

// NewQueryEstimate creates an estimate with the query and response headers
// and the state proof if it's requested.
func NewQueryEstimate(stateProof bool) *QueryEstimate {
	e := &QueryEstimate{bpt: BasicQueryHeader, bpr: BasicQueryResHeader}
	if stateProof {
		e.bpr += StateProofSize
	}
	return e
}

// AddBpt adds query bytes.
func (e *QueryEstimate) AddBpt(n int64) *QueryEstimate { e.bpt += n; return e }

// AddBpr adds response bytes.
func (e *QueryEstimate) AddBpr(n int64) *QueryEstimate { e.bpr += n; return e }

// AddSbpr adds storage bytes returned.
func (e *QueryEstimate) AddSbpr(n int64) *QueryEstimate { e.sbpr += n; return e }

// Get returns the usage.
func (e *QueryEstimate) Get() schedule.FeeData {
	return schedule.FeeData{
		Node: schedule.FeeComponents{
			Constant: 1,
			Bpt:      e.bpt,
			Bpr:      e.bpr,
			Sbpr:     e.sbpr,
		},
	}
}
