package usage

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

func cryptoCreateUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.CryptoCreate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	var size = KeyStorageSize(d.Key) + int64(len(d.Memo))
	if !d.Proxy.IsZero() {
		size += BasicEntityIDSize
	}
	return NewEstimate(b.Memo, sigs).
		AddBpt(size + 2*LongSize + BoolSize).
		AddRbs((BasicAccountSize + size) * d.AutoRenewPeriod).
		AddNetworkRbs(BasicEntityIDSize * ReceiptStorageTimeSec).
		Get(), nil
}

func cryptoUpdateUsage(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.CryptoUpdate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	var size int64 = BasicEntityIDSize
	if d.Key != nil {
		size += KeyStorageSize(d.Key)
	}
	if d.Proxy != nil {
		size += BasicEntityIDSize
	}
	if d.Memo != nil {
		size += int64(len(*d.Memo))
	}
	if d.Expiry != nil {
		size += LongSize
	}
	if d.AutoRenewPeriod != nil {
		size += LongSize
	}
	if d.ReceiverSigRequired != nil {
		size += BoolSize
	}
	e := NewEstimate(b.Memo, sigs).AddBpt(size)
	if view != nil {
		if acc, ok := view.Account(d.Account); ok {
			expiry := acc.Expiry
			if d.Expiry != nil {
				expiry = max(expiry, *d.Expiry)
			}
			var grown int64
			if d.Key != nil {
				grown += KeyStorageSize(d.Key) - KeyStorageSize(acc.Key)
			}
			if d.Memo != nil {
				grown += int64(len(*d.Memo) - len(acc.Memo))
			}
			e.AddRbs(max(0, grown) * lifetime(b, expiry))
		}
	}
	return e.Get(), nil
}

func cryptoDeleteUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	if _, err := dataOf[*transaction.CryptoDelete](b); err != nil {
		return schedule.FeeData{}, err
	}
	return NewEstimate(b.Memo, sigs).AddBpt(2 * BasicEntityIDSize).Get(), nil
}

func cryptoTransferUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.CryptoTransfer](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	var (
		transfers = int64(len(d.Transfers.AccountAmounts))
		tokens    = int64(len(d.TokenTransfers))
	)
	for _, tl := range d.TokenTransfers {
		transfers += int64(len(tl.Transfers))
	}
	size := tokens*BasicEntityIDSize + transfers*BasicAccountAmountSize
	return NewEstimate(b.Memo, sigs).
		AddBpt(size).
		AddRbs((BasicTxRecordSize + size) * ReceiptStorageTimeSec).
		Get(), nil
}
