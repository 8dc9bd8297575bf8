package usage

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

func fileCreateUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.FileCreate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	size := int64(len(d.Contents)) + KeyStorageSize(d.Keys) + int64(len(d.Memo))
	return NewEstimate(b.Memo, sigs).
		AddBpt(size + LongSize).
		AddSbs((BaseFileInfoSize + size) * lifetime(b, d.Expiry)).
		AddNetworkRbs(BasicEntityIDSize * ReceiptStorageTimeSec).
		Get(), nil
}

func fileUpdateUsage(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.FileUpdate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	size := int64(len(d.Contents)) + KeyStorageSize(d.Keys)
	if d.Memo != nil {
		size += int64(len(*d.Memo))
	}
	e := NewEstimate(b.Memo, sigs).AddBpt(BasicEntityIDSize + size)
	if d.Expiry != nil {
		e.AddBpt(LongSize)
	}
	var expiry int64
	if d.Expiry != nil {
		expiry = *d.Expiry
	}
	if view != nil {
		if meta, err := view.FileAttr(d.File); err == nil {
			expiry = max(expiry, meta.Expiry)
		}
	}
	return e.AddSbs(size * lifetime(b, expiry)).Get(), nil
}

func fileAppendUsage(b *transaction.Body, sigs SigUsage, view *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.FileAppend](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	size := int64(len(d.Contents))
	e := NewEstimate(b.Memo, sigs).AddBpt(BasicEntityIDSize + size)
	if view != nil {
		if meta, err := view.FileAttr(d.File); err == nil {
			e.AddSbs(size * lifetime(b, meta.Expiry))
		}
	}
	return e.Get(), nil
}

func fileDeleteUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	if _, err := dataOf[*transaction.FileDelete](b); err != nil {
		return schedule.FeeData{}, err
	}
	return NewEstimate(b.Memo, sigs).AddBpt(BasicEntityIDSize).Get(), nil
}
