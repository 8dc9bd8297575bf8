package usage

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
)

// SigUsage describes transaction signatures.
type SigUsage struct {
	NumSigs      int
	SigsSize     int
	NumPayerKeys int
}

// NewSigUsage computes signature usage from the signature map and the key
// of the payer.
func NewSigUsage(sigMap *transaction.SigMap, payerKey *keys.Key) SigUsage {
	return SigUsage{
		NumSigs:      len(sigMap.Pairs),
		SigsSize:     sigMap.SerializedSize(),
		NumPayerKeys: payerKey.NumSimpleKeys(),
	}
}
