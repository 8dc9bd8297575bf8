package usage

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/query"
	"github.com/nspcc-dev/ledger-services/pkg/core/state"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
)

func accountBalanceUsage(q *query.Query, _ *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	if _, err := queryOf[*query.CryptoGetAccountBalance](q); err != nil {
		return schedule.FeeData{}, err
	}
	return NewQueryEstimate(rt.HasStateProof()).
		AddBpt(BasicEntityIDSize).
		AddBpr(BasicEntityIDSize + LongSize).
		Get(), nil
}

func cryptoGetInfoUsage(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	d, err := queryOf[*query.CryptoGetInfo](q)
	if err != nil {
		return schedule.FeeData{}, err
	}
	e := NewQueryEstimate(rt.HasStateProof()).AddBpt(BasicEntityIDSize)
	if view != nil {
		if acc, ok := view.Account(d.Account); ok {
			size := BasicAccountSize + KeyStorageSize(acc.Key) + int64(len(acc.Memo)) +
				int64(len(acc.Tokens))*TokenRelSize
			e.AddBpr(size).AddSbpr(size)
		}
	}
	return e.Get(), nil
}

func fileGetContentsUsage(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	d, err := queryOf[*query.FileGetContents](q)
	if err != nil {
		return schedule.FeeData{}, err
	}
	e := NewQueryEstimate(rt.HasStateProof()).AddBpt(BasicEntityIDSize)
	if view != nil {
		if data, err := view.FileContents(d.File); err == nil {
			e.AddBpr(BasicEntityIDSize + int64(len(data))).AddSbpr(int64(len(data)))
		}
	}
	return e.Get(), nil
}

func fileGetInfoUsage(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	d, err := queryOf[*query.FileGetInfo](q)
	if err != nil {
		return schedule.FeeData{}, err
	}
	e := NewQueryEstimate(rt.HasStateProof()).AddBpt(BasicEntityIDSize)
	if view != nil {
		if meta, err := view.FileAttr(d.File); err == nil {
			size := BaseFileInfoSize + KeyStorageSize(meta.WACL) + int64(len(meta.Memo))
			e.AddBpr(size).AddSbpr(size)
		}
	}
	return e.Get(), nil
}

func tokenGetInfoUsage(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	d, err := queryOf[*query.TokenGetInfo](q)
	if err != nil {
		return schedule.FeeData{}, err
	}
	e := NewQueryEstimate(rt.HasStateProof()).AddBpt(BasicEntityIDSize)
	if view != nil {
		if tok, ok := view.Token(d.Token); ok {
			size := BasicTokenSize + int64(len(tok.Name)+len(tok.Symbol)) +
				tokenKeysSize(tok.AdminKey, tok.KycKey, tok.FreezeKey, tok.WipeKey, tok.SupplyKey)
			e.AddBpr(size).AddSbpr(size)
		}
	}
	return e.Get(), nil
}

func scheduleGetInfoUsage(q *query.Query, view *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	d, err := queryOf[*query.ScheduleGetInfo](q)
	if err != nil {
		return schedule.FeeData{}, err
	}
	e := NewQueryEstimate(rt.HasStateProof()).AddBpt(BasicEntityIDSize)
	if view != nil {
		if s, ok := view.Schedule(d.Schedule); ok {
			size := BasicScheduleSize + int64(len(s.TransactionBody)+len(s.Memo)) + KeyStorageSize(s.AdminKey)
			e.AddBpr(size).AddSbpr(size)
		}
	}
	return e.Get(), nil
}

func receiptUsage(q *query.Query, _ *state.View, rt query.ResponseType) (schedule.FeeData, error) {
	if _, err := queryOf[*query.TransactionGetReceipt](q); err != nil {
		return schedule.FeeData{}, err
	}
	return NewQueryEstimate(rt.HasStateProof()).
		AddBpt(BasicTxIDSize).
		AddBpr(BasicReceiptSize).
		Get(), nil
}
