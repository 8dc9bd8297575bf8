/*
Package schedules implements the store of scheduled transactions. Schedules
are deduplicated by the hash of their transaction body.
*/
package schedules

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/fcmap"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/properties"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/txledger"
	"github.com/nspcc-dev/ledger-services/pkg/core/response"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/hash"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
	"go.uber.org/zap"
)

// ErrMissingSchedule is returned for unknown schedule ids.
var ErrMissingSchedule = errors.New("no such schedule")

// Store manages scheduled transactions.
type Store struct {
	ids       entity.IDSource
	schedules fcmap.Map[entity.ID, *entity.Schedule]
	accounts  *ledger.AccountsLedger
	lifetime  int64
	log       *zap.Logger

	// live (neither deleted nor executed) schedules by body hash
	extant map[hash.Hash]entity.ID

	pendingID entity.ID
	pending   *entity.Schedule
}

// New creates a schedule store, lifetime is the number of seconds a
// schedule lives before it expires.
func New(ids entity.IDSource, schedules fcmap.Map[entity.ID, *entity.Schedule],
	accounts *ledger.AccountsLedger, lifetime int64, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		ids:       ids,
		schedules: schedules,
		accounts:  accounts,
		lifetime:  lifetime,
		log:       log,
	}
	s.RebuildViews()
	return s
}

// RebuildViews recalculates the deduplication index from the schedule map.
func (s *Store) RebuildViews() {
	s.extant = make(map[hash.Hash]entity.ID)
	for _, id := range s.schedules.KeySet() {
		sch, ok := s.schedules.Get(id)
		if !ok || sch.Deleted || sch.Executed {
			continue
		}
		s.extant[hash.Sha256(sch.TransactionBody)] = id
	}
}

// IsCreationPending checks for a provisionally created schedule.
func (s *Store) IsCreationPending() bool {
	return s.pending != nil
}

// Exists checks whether the schedule exists.
func (s *Store) Exists(id entity.ID) bool {
	return (s.pending != nil && s.pendingID == id) || s.schedules.ContainsKey(id)
}

// Get returns a copy of the schedule.
func (s *Store) Get(id entity.ID) (*entity.Schedule, error) {
	if s.pending != nil && s.pendingID == id {
		return s.pending.Copy(), nil
	}
	sch, ok := s.schedules.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSchedule, id)
	}
	return sch, nil
}

// LookupSchedule returns the live schedule with the same transaction body.
func (s *Store) LookupSchedule(body []byte) (entity.ID, *entity.Schedule, bool) {
	h := hash.Sha256(body)
	if s.pending != nil && hash.Sha256(s.pending.TransactionBody) == h {
		return s.pendingID, s.pending.Copy(), true
	}
	id, ok := s.extant[h]
	if !ok {
		return entity.ID{}, nil, false
	}
	sch, err := s.Get(id)
	if err != nil {
		return entity.ID{}, nil, false
	}
	return id, sch, true
}

func (s *Store) usable(account entity.ID) bool {
	if !s.accounts.Exists(account) {
		return false
	}
	deleted, _ := txledger.GetAs[bool](s.accounts, account, properties.IsDeleted)
	return !deleted
}

// CreateProvisionally validates the schedule and allocates an id for it.
// Expiry is set from the consensus time. The schedule exists until
// CommitCreation or RollbackCreation is called.
func (s *Store) CreateProvisionally(sch *entity.Schedule, now int64) (entity.ID, response.Code) {
	if !sch.Payer.IsZero() && !s.usable(sch.Payer) {
		return entity.ID{}, response.InvalidSchedulePayerID
	}
	if !s.usable(sch.SchedulingPayer) {
		return entity.ID{}, response.InvalidScheduleAccountID
	}
	if sch.AdminKey != nil && sch.AdminKey.Validate() != nil {
		return entity.ID{}, response.InvalidAdminKey
	}
	if len(sch.TransactionBody) > entity.MaxScheduledBodySize {
		return entity.ID{}, response.TransactionOversize
	}
	s.pendingID = s.ids.NewScheduleID(sch.SchedulingPayer)
	s.pending = sch.Copy()
	s.pending.Expiry = now + s.lifetime
	return s.pendingID, response.OK
}

// CommitCreation saves the provisionally created schedule.
func (s *Store) CommitCreation() error {
	if s.pending == nil {
		return errors.New("no pending schedule creation")
	}
	if err := s.schedules.Put(s.pendingID, s.pending); err != nil {
		return err
	}
	s.extant[hash.Sha256(s.pending.TransactionBody)] = s.pendingID
	s.resetPending()
	return nil
}

// RollbackCreation forgets the provisionally created schedule and returns
// its id to the source.
func (s *Store) RollbackCreation() {
	if s.pending == nil {
		return
	}
	s.ids.ReclaimLastID()
	s.resetPending()
}

// Reset drops the pending creation without reclaiming its id and rebuilds
// the views, it's used after the underlying maps were reset.
func (s *Store) Reset() {
	s.resetPending()
	s.RebuildViews()
}

func (s *Store) resetPending() {
	s.pending = nil
	s.pendingID = entity.ID{}
}

// live returns the schedule if it can still be deleted or executed.
func (s *Store) live(id entity.ID) (*entity.Schedule, response.Code) {
	if s.pending != nil && s.pendingID == id {
		return nil, response.InvalidScheduleID
	}
	sch, ok := s.schedules.GetForModify(id)
	if !ok {
		return nil, response.InvalidScheduleID
	}
	if sch.Deleted {
		return nil, response.ScheduleAlreadyDeleted
	}
	if sch.Executed {
		return nil, response.ScheduleAlreadyExecuted
	}
	return sch, response.OK
}

func (s *Store) finish(id entity.ID, sch *entity.Schedule) response.Code {
	if err := s.schedules.Replace(id, sch); err != nil {
		s.log.Error("failed to update schedule", zap.Stringer("id", id), zap.Error(err))
		return response.FailInvalid
	}
	delete(s.extant, hash.Sha256(sch.TransactionBody))
	return response.OK
}

// Delete marks the schedule as deleted, schedules without admin key can't be
// deleted.
func (s *Store) Delete(id entity.ID) response.Code {
	sch, code := s.live(id)
	if code != response.OK {
		return code
	}
	if sch.AdminKey == nil {
		return response.ScheduleIsImmutable
	}
	sch.Deleted = true
	return s.finish(id, sch)
}

// MarkAsExecuted marks the schedule as executed.
func (s *Store) MarkAsExecuted(id entity.ID) response.Code {
	sch, code := s.live(id)
	if code != response.OK {
		return code
	}
	sch.Executed = true
	return s.finish(id, sch)
}

// Expire removes the schedule from the store.
func (s *Store) Expire(id entity.ID) error {
	if s.pending != nil && s.pendingID == id {
		return errors.New("can't expire pending schedule")
	}
	sch, ok := s.schedules.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingSchedule, id)
	}
	h := hash.Sha256(sch.TransactionBody)
	if s.extant[h] == id {
		delete(s.extant, h)
	}
	return s.schedules.Remove(id)
}

// AdminKey returns the schedule admin key, nil for immutable or unknown
// schedules.
func (s *Store) AdminKey(id entity.ID) *keys.Key {
	sch, err := s.Get(id)
	if err != nil {
		return nil
	}
	return sch.AdminKey
}
