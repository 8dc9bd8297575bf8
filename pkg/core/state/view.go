/*
Package state assembles the ledger state: persistent maps, the transactional
ledger, domain stores and the file system. It also provides a read-only view
of the state used to answer queries and to estimate fees. The view never
opens ledger transactions, but it reads the same cached store the ledger
writes to, so changes of a transaction being handled are visible through it
until they are persisted or reset. Callers that need committed state only
must not read it while a transaction is in progress.
*/
package state

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/fcmap"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/backing"
)

// FileReader gives read access to files.
type FileReader interface {
	Cat(id entity.ID) ([]byte, error)
	GetAttr(id entity.ID) (*entity.FileMeta, error)
}

// View is a read-only state view.
type View struct {
	accounts  *backing.Pure[entity.ID, *entity.Account]
	tokenRels *backing.Pure[entity.RelKey, *entity.TokenRel]
	tokens    *backing.Pure[entity.ID, *entity.Token]
	schedules *backing.Pure[entity.ID, *entity.Schedule]
	files     FileReader
}

// NewView creates a view over the given maps and files.
func NewView(accounts fcmap.Map[entity.ID, *entity.Account],
	tokenRels fcmap.Map[entity.RelKey, *entity.TokenRel],
	tokens fcmap.Map[entity.ID, *entity.Token],
	schedules fcmap.Map[entity.ID, *entity.Schedule],
	files FileReader) *View {
	return &View{
		accounts:  backing.NewPure(accounts),
		tokenRels: backing.NewPure(tokenRels),
		tokens:    backing.NewPure(tokens),
		schedules: backing.NewPure(schedules),
		files:     files,
	}
}

// Accounts returns the read-only accounts store.
func (v *View) Accounts() *backing.Pure[entity.ID, *entity.Account] {
	return v.accounts
}

// Account returns the account with the given id.
func (v *View) Account(id entity.ID) (*entity.Account, bool) {
	return v.accounts.Get(id)
}

// TokenRel returns the account-token relationship.
func (v *View) TokenRel(account, token entity.ID) (*entity.TokenRel, bool) {
	return v.tokenRels.Get(entity.RelKey{Account: account, Token: token})
}

// Token returns the token with the given id.
func (v *View) Token(id entity.ID) (*entity.Token, bool) {
	return v.tokens.Get(id)
}

// Schedule returns the schedule with the given id.
func (v *View) Schedule(id entity.ID) (*entity.Schedule, bool) {
	return v.schedules.Get(id)
}

// FileContents returns file contents.
func (v *View) FileContents(id entity.ID) ([]byte, error) {
	return v.files.Cat(id)
}

// FileAttr returns file attributes.
func (v *View) FileAttr(id entity.ID) (*entity.FileMeta, error) {
	return v.files.GetAttr(id)
}
