package ledger

import (
	"slices"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/ledger/properties"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
)

// AccountCustomizer collects account property changes to be applied at
// once.
type AccountCustomizer struct {
	changes map[properties.AccountProperty]any
}

// NewAccountCustomizer creates an empty customizer.
func NewAccountCustomizer() *AccountCustomizer {
	return &AccountCustomizer{changes: make(map[properties.AccountProperty]any)}
}

func (c *AccountCustomizer) set(p properties.AccountProperty, v any) *AccountCustomizer {
	c.changes[p] = v
	return c
}

// Key sets the account key.
func (c *AccountCustomizer) Key(k *keys.Key) *AccountCustomizer {
	return c.set(properties.Key, k)
}

// Memo sets the account memo.
func (c *AccountCustomizer) Memo(s string) *AccountCustomizer {
	return c.set(properties.Memo, s)
}

// Proxy sets the proxy account.
func (c *AccountCustomizer) Proxy(id entity.ID) *AccountCustomizer {
	return c.set(properties.Proxy, id)
}

// Expiry sets the account expiration time.
func (c *AccountCustomizer) Expiry(e int64) *AccountCustomizer {
	return c.set(properties.Expiry, e)
}

// AutoRenewPeriod sets the auto-renew period.
func (c *AccountCustomizer) AutoRenewPeriod(p int64) *AccountCustomizer {
	return c.set(properties.AutoRenewPeriod, p)
}

// IsDeleted sets the deleted flag.
func (c *AccountCustomizer) IsDeleted(b bool) *AccountCustomizer {
	return c.set(properties.IsDeleted, b)
}

// IsReceiverSigRequired sets the receiver signature requirement.
func (c *AccountCustomizer) IsReceiverSigRequired(b bool) *AccountCustomizer {
	return c.set(properties.IsReceiverSigRequired, b)
}

// IsSmartContract marks the account as a contract.
func (c *AccountCustomizer) IsSmartContract(b bool) *AccountCustomizer {
	return c.set(properties.IsSmartContract, b)
}

// IsEmpty checks whether there are no changes.
func (c *AccountCustomizer) IsEmpty() bool {
	return len(c.changes) == 0
}

func (c *AccountCustomizer) props() []properties.AccountProperty {
	props := make([]properties.AccountProperty, 0, len(c.changes))
	for p := range c.changes {
		props = append(props, p)
	}
	slices.Sort(props)
	return props
}

// Customize stages changes to the account in the ledger.
func (c *AccountCustomizer) Customize(id entity.ID, l *AccountsLedger) error {
	for _, p := range c.props() {
		if err := l.Set(id, p, c.changes[p]); err != nil {
			return err
		}
	}
	return nil
}

// CustomizeSynthetic applies changes directly to the account, it's used for
// accounts that are not in any ledger.
func (c *AccountCustomizer) CustomizeSynthetic(a *entity.Account) error {
	for _, p := range c.props() {
		if err := p.Set(a, c.changes[p]); err != nil {
			return err
		}
	}
	return nil
}
