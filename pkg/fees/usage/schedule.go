package usage

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

func scheduleCreateUsage(b *transaction.Body, sigs SigUsage, scheduleLifetime int64) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.ScheduleCreate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	size := int64(len(d.TransactionBody)+len(d.Memo)) + KeyStorageSize(d.AdminKey)
	if !d.Payer.IsZero() {
		size += BasicEntityIDSize
	}
	return NewEstimate(b.Memo, sigs).
		AddBpt(size).
		AddRbs((BasicScheduleSize + size) * scheduleLifetime).
		AddNetworkRbs(BasicEntityIDSize * ReceiptStorageTimeSec).
		Get(), nil
}

func scheduleDeleteUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	if _, err := dataOf[*transaction.ScheduleDelete](b); err != nil {
		return schedule.FeeData{}, err
	}
	return NewEstimate(b.Memo, sigs).AddBpt(BasicEntityIDSize).Get(), nil
}
