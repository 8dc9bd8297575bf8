package schedule

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWrongWireType is returned when a known field has unexpected wire type.
var ErrWrongWireType = errors.New("wrong wire type")

// Field numbers.
const (
	currentField protowire.Number = 1
	nextField    protowire.Number = 2

	scheduleEntryField  protowire.Number = 1
	scheduleExpiryField protowire.Number = 2

	entryFunctionField protowire.Number = 1
	entryFeeDataField  protowire.Number = 2

	nodeDataField    protowire.Number = 1
	networkDataField protowire.Number = 2
	serviceDataField protowire.Number = 3

	secondsField protowire.Number = 1

	hbarEquivField  protowire.Number = 1
	centEquivField  protowire.Number = 2
	rateExpiryField protowire.Number = 3
)

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendSeconds(b []byte, num protowire.Number, sec int64) []byte {
	return appendMessage(b, num, appendVarint(nil, secondsField, sec))
}

// walk calls f for every varint and length-delimited field of the message
// skipping fields of other types.
func walk(b []byte, f func(num protowire.Number, typ protowire.Type, v uint64, data []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		var (
			v    uint64
			data []byte
		)
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			data, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if typ != protowire.VarintType && typ != protowire.BytesType {
			continue
		}
		if err := f(num, typ, v, data); err != nil {
			return err
		}
	}
	return nil
}

func expect(num protowire.Number, typ, want protowire.Type) error {
	if typ != want {
		return fmt.Errorf("%w: field %d", ErrWrongWireType, num)
	}
	return nil
}

func decodeSeconds(b []byte) (int64, error) {
	var sec int64
	err := walk(b, func(num protowire.Number, typ protowire.Type, v uint64, _ []byte) error {
		if num != secondsField {
			return nil
		}
		if err := expect(num, typ, protowire.VarintType); err != nil {
			return err
		}
		sec = int64(v)
		return nil
	})
	return sec, err
}

// Bytes returns components in the protobuf wire format.
func (c *FeeComponents) Bytes() []byte {
	var b []byte
	for i, v := range []int64{c.Min, c.Max, c.Constant, c.Bpt, c.Vpt, c.Rbh, c.Sbh, c.Gas, c.Tv, c.Bpr, c.Sbpr} {
		b = appendVarint(b, protowire.Number(i+1), v)
	}
	return b
}

// Decode restores components from the protobuf wire format.
func (c *FeeComponents) Decode(b []byte) error {
	fields := []*int64{&c.Min, &c.Max, &c.Constant, &c.Bpt, &c.Vpt, &c.Rbh, &c.Sbh, &c.Gas, &c.Tv, &c.Bpr, &c.Sbpr}
	*c = FeeComponents{}
	return walk(b, func(num protowire.Number, typ protowire.Type, v uint64, _ []byte) error {
		if num < 1 || int(num) > len(fields) {
			return nil
		}
		if err := expect(num, typ, protowire.VarintType); err != nil {
			return err
		}
		*fields[num-1] = int64(v)
		return nil
	})
}

// Bytes returns prices in the protobuf wire format.
func (d *FeeData) Bytes() []byte {
	var b []byte
	b = appendMessage(b, nodeDataField, d.Node.Bytes())
	b = appendMessage(b, networkDataField, d.Network.Bytes())
	return appendMessage(b, serviceDataField, d.Service.Bytes())
}

// Decode restores prices from the protobuf wire format.
func (d *FeeData) Decode(b []byte) error {
	*d = FeeData{}
	return walk(b, func(num protowire.Number, typ protowire.Type, _ uint64, data []byte) error {
		var c *FeeComponents
		switch num {
		case nodeDataField:
			c = &d.Node
		case networkDataField:
			c = &d.Network
		case serviceDataField:
			c = &d.Service
		default:
			return nil
		}
		if err := expect(num, typ, protowire.BytesType); err != nil {
			return err
		}
		return c.Decode(data)
	})
}

// Bytes returns the entry in the protobuf wire format.
func (e *TransactionFeeSchedule) Bytes() []byte {
	b := appendVarint(nil, entryFunctionField, int64(e.Function))
	return appendMessage(b, entryFeeDataField, e.Fees.Bytes())
}

// Decode restores the entry from the protobuf wire format.
func (e *TransactionFeeSchedule) Decode(b []byte) error {
	*e = TransactionFeeSchedule{}
	return walk(b, func(num protowire.Number, typ protowire.Type, v uint64, data []byte) error {
		switch num {
		case entryFunctionField:
			if err := expect(num, typ, protowire.VarintType); err != nil {
				return err
			}
			e.Function = transaction.Functionality(v)
		case entryFeeDataField:
			if err := expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			return e.Fees.Decode(data)
		}
		return nil
	})
}

// Bytes returns the schedule in the protobuf wire format.
func (s *FeeSchedule) Bytes() []byte {
	var b []byte
	for i := range s.Entries {
		b = appendMessage(b, scheduleEntryField, s.Entries[i].Bytes())
	}
	return appendSeconds(b, scheduleExpiryField, s.Expiry)
}

// Decode restores the schedule from the protobuf wire format.
func (s *FeeSchedule) Decode(b []byte) error {
	*s = FeeSchedule{}
	return walk(b, func(num protowire.Number, typ protowire.Type, _ uint64, data []byte) error {
		var err error
		switch num {
		case scheduleEntryField:
			if err = expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			var e TransactionFeeSchedule
			if err = e.Decode(data); err != nil {
				return err
			}
			s.Entries = append(s.Entries, e)
		case scheduleExpiryField:
			if err = expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			s.Expiry, err = decodeSeconds(data)
		}
		return err
	})
}

// Bytes returns both schedules in the protobuf wire format.
func (s *CurrentAndNextFeeSchedule) Bytes() []byte {
	b := appendMessage(nil, currentField, s.Current.Bytes())
	return appendMessage(b, nextField, s.Next.Bytes())
}

// Decode restores both schedules from the protobuf wire format.
func (s *CurrentAndNextFeeSchedule) Decode(b []byte) error {
	*s = CurrentAndNextFeeSchedule{}
	return walk(b, func(num protowire.Number, typ protowire.Type, _ uint64, data []byte) error {
		switch num {
		case currentField:
			if err := expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			return s.Current.Decode(data)
		case nextField:
			if err := expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			return s.Next.Decode(data)
		}
		return nil
	})
}

// Bytes returns the rate in the protobuf wire format.
func (r *ExchangeRate) Bytes() []byte {
	b := appendVarint(nil, hbarEquivField, int64(r.HbarEquiv))
	b = appendVarint(b, centEquivField, int64(r.CentEquiv))
	return appendSeconds(b, rateExpiryField, r.Expiry)
}

// Decode restores the rate from the protobuf wire format.
func (r *ExchangeRate) Decode(b []byte) error {
	*r = ExchangeRate{}
	return walk(b, func(num protowire.Number, typ protowire.Type, v uint64, data []byte) error {
		var err error
		switch num {
		case hbarEquivField, centEquivField:
			if err = expect(num, typ, protowire.VarintType); err != nil {
				return err
			}
			if num == hbarEquivField {
				r.HbarEquiv = int32(v)
			} else {
				r.CentEquiv = int32(v)
			}
		case rateExpiryField:
			if err = expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			r.Expiry, err = decodeSeconds(data)
		}
		return err
	})
}

// Bytes returns both rates in the protobuf wire format.
func (s *ExchangeRateSet) Bytes() []byte {
	b := appendMessage(nil, currentField, s.Current.Bytes())
	return appendMessage(b, nextField, s.Next.Bytes())
}

// Decode restores both rates from the protobuf wire format.
func (s *ExchangeRateSet) Decode(b []byte) error {
	*s = ExchangeRateSet{}
	return walk(b, func(num protowire.Number, typ protowire.Type, _ uint64, data []byte) error {
		switch num {
		case currentField:
			if err := expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			return s.Current.Decode(data)
		case nextField:
			if err := expect(num, typ, protowire.BytesType); err != nil {
				return err
			}
			return s.Next.Decode(data)
		}
		return nil
	})
}
