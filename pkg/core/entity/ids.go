package entity

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"go.uber.org/atomic"
)

// IDSource allocates numbers for new entities. Accounts, tokens, files and
// schedules share the same sequence. Numbers allocated within a transaction
// are provisional until ResetProvisionalIDs is called and can be returned
// with ReclaimProvisionalIDs.
type IDSource interface {
	NewAccountID(sponsor ID) ID
	NewTokenID(sponsor ID) ID
	NewFileID(sponsor ID) ID
	NewScheduleID(sponsor ID) ID
	ReclaimLastID()
	ResetProvisionalIDs()
	ReclaimProvisionalIDs()
}

// SeqSource is an IDSource based on a single sequence number.
type SeqSource struct {
	seq         atomic.Int64
	provisional atomic.Int64
}

var seqKey = storage.SYSEntitySeq.Bytes()

// NewSeqSource creates a source starting from the given number.
func NewSeqSource(first int64) *SeqSource {
	s := new(SeqSource)
	s.seq.Store(first)
	return s
}

// LoadSeqSource restores the sequence from the store, first is used when
// nothing was stored yet.
func LoadSeqSource(store storage.Store, first int64) (*SeqSource, error) {
	val, err := store.Get(seqKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return NewSeqSource(first), nil
	}
	if err != nil {
		return nil, err
	}
	if len(val) != 8 {
		return nil, fmt.Errorf("bad entity sequence value length %d", len(val))
	}
	return NewSeqSource(int64(binary.LittleEndian.Uint64(val))), nil
}

// Flush saves the current sequence number to the store.
func (s *SeqSource) Flush(store storage.Store) error {
	var val = make([]byte, 8)
	binary.LittleEndian.PutUint64(val, uint64(s.seq.Load()))
	return store.PutChangeSet(map[string][]byte{string(seqKey): val})
}

// Peek returns the number that will be allocated next.
func (s *SeqSource) Peek() int64 {
	return s.seq.Load()
}

func (s *SeqSource) next(sponsor ID) ID {
	s.provisional.Inc()
	return ID{Shard: sponsor.Shard, Realm: sponsor.Realm, Num: s.seq.Inc() - 1}
}

// NewAccountID implements the IDSource interface.
func (s *SeqSource) NewAccountID(sponsor ID) ID { return s.next(sponsor) }

// NewTokenID implements the IDSource interface.
func (s *SeqSource) NewTokenID(sponsor ID) ID { return s.next(sponsor) }

// NewFileID implements the IDSource interface.
func (s *SeqSource) NewFileID(sponsor ID) ID { return s.next(sponsor) }

// NewScheduleID implements the IDSource interface.
func (s *SeqSource) NewScheduleID(sponsor ID) ID { return s.next(sponsor) }

// ReclaimLastID implements the IDSource interface.
func (s *SeqSource) ReclaimLastID() {
	s.seq.Dec()
	s.provisional.Dec()
}

// ResetProvisionalIDs implements the IDSource interface.
func (s *SeqSource) ResetProvisionalIDs() {
	s.provisional.Store(0)
}

// ReclaimProvisionalIDs implements the IDSource interface.
func (s *SeqSource) ReclaimProvisionalIDs() {
	s.seq.Sub(s.provisional.Swap(0))
}
