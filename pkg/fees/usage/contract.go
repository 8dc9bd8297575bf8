package usage

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

func contractCreateUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.ContractCreate](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	size := KeyStorageSize(d.AdminKey) + int64(len(d.Memo))
	return NewEstimate(b.Memo, sigs).
		AddBpt(BasicContractCreate + int64(len(d.ConstructorParameters)) + size).
		AddRbs((BasicAccountSize + size) * d.AutoRenewPeriod).
		AddGas(d.Gas).
		AddTv(d.InitialBalance).
		AddNetworkRbs(BasicEntityIDSize * ReceiptStorageTimeSec).
		Get(), nil
}

func contractCallUsage(b *transaction.Body, sigs SigUsage, _ *state.View) (schedule.FeeData, error) {
	d, err := dataOf[*transaction.ContractCall](b)
	if err != nil {
		return schedule.FeeData{}, err
	}
	return NewEstimate(b.Memo, sigs).
		AddBpt(BasicEntityIDSize + 2*LongSize + int64(len(d.FunctionParameters))).
		AddGas(d.Gas).
		AddTv(d.Amount).
		Get(), nil
}
