/*
Package properties defines the account and token relationship properties
that can be changed through the transactional ledger.
*/
package properties

import (
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
)

// AccountProperty is a property of entity.Account.
type AccountProperty int

// Account properties.
const (
	Key AccountProperty = iota
	Memo
	Proxy
	Expiry
	AutoRenewPeriod
	IsDeleted
	IsReceiverSigRequired
	IsSmartContract
	Balance
	Tokens
)

var accountPropertyNames = [...]string{
	Key:                   "KEY",
	Memo:                  "MEMO",
	Proxy:                 "PROXY",
	Expiry:                "EXPIRY",
	AutoRenewPeriod:       "AUTO_RENEW_PERIOD",
	IsDeleted:             "IS_DELETED",
	IsReceiverSigRequired: "IS_RECEIVER_SIG_REQUIRED",
	IsSmartContract:       "IS_SMART_CONTRACT",
	Balance:               "BALANCE",
	Tokens:                "TOKENS",
}

// String implements the fmt.Stringer interface.
func (p AccountProperty) String() string {
	if p < 0 || int(p) >= len(accountPropertyNames) {
		return fmt.Sprintf("AccountProperty(%d)", int(p))
	}
	return accountPropertyNames[p]
}

// Get returns the property value of the account.
func (p AccountProperty) Get(a *entity.Account) any {
	switch p {
	case Key:
		return a.Key
	case Memo:
		return a.Memo
	case Proxy:
		return a.Proxy
	case Expiry:
		return a.Expiry
	case AutoRenewPeriod:
		return a.AutoRenewPeriod
	case IsDeleted:
		return a.Deleted
	case IsReceiverSigRequired:
		return a.ReceiverSigRequired
	case IsSmartContract:
		return a.SmartContract
	case Balance:
		return a.Balance
	case Tokens:
		return a.Tokens
	}
	return nil
}

// Set changes the property of the account.
func (p AccountProperty) Set(a *entity.Account, v any) error {
	var ok bool
	switch p {
	case Key:
		a.Key, ok = v.(*keys.Key)
		if ok {
			a.Key = a.Key.Copy()
		}
	case Memo:
		a.Memo, ok = v.(string)
	case Proxy:
		a.Proxy, ok = v.(entity.ID)
	case Expiry:
		a.Expiry, ok = v.(int64)
	case AutoRenewPeriod:
		a.AutoRenewPeriod, ok = v.(int64)
	case IsDeleted:
		a.Deleted, ok = v.(bool)
	case IsReceiverSigRequired:
		a.ReceiverSigRequired, ok = v.(bool)
	case IsSmartContract:
		a.SmartContract, ok = v.(bool)
	case Balance:
		a.Balance, ok = v.(int64)
	case Tokens:
		var t []entity.ID
		t, ok = v.([]entity.ID)
		if ok {
			a.Tokens = append([]entity.ID(nil), t...)
		}
	default:
		return fmt.Errorf("unknown account property %d", int(p))
	}
	if !ok {
		return fmt.Errorf("invalid %s value type %T", p, v)
	}
	return nil
}

// TokenRelProperty is a property of entity.TokenRel.
type TokenRelProperty int

// Token relationship properties.
const (
	TokenBalance TokenRelProperty = iota
	IsFrozen
	IsKycGranted
)

// String implements the fmt.Stringer interface.
func (p TokenRelProperty) String() string {
	switch p {
	case TokenBalance:
		return "TOKEN_BALANCE"
	case IsFrozen:
		return "IS_FROZEN"
	case IsKycGranted:
		return "IS_KYC_GRANTED"
	}
	return fmt.Sprintf("TokenRelProperty(%d)", int(p))
}

// Get returns the property value of the relationship.
func (p TokenRelProperty) Get(r *entity.TokenRel) any {
	switch p {
	case TokenBalance:
		return r.Balance
	case IsFrozen:
		return r.Frozen
	case IsKycGranted:
		return r.KycGranted
	}
	return nil
}

// Set changes the property of the relationship.
func (p TokenRelProperty) Set(r *entity.TokenRel, v any) error {
	var ok bool
	switch p {
	case TokenBalance:
		r.Balance, ok = v.(int64)
	case IsFrozen:
		r.Frozen, ok = v.(bool)
	case IsKycGranted:
		r.KycGranted, ok = v.(bool)
	default:
		return fmt.Errorf("unknown token relationship property %d", int(p))
	}
	if !ok {
		return fmt.Errorf("invalid %s value type %T", p, v)
	}
	return nil
}
