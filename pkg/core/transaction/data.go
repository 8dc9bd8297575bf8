package transaction

import (
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/crypto/keys"
)

type (
	// CryptoCreate creates a new account.
	CryptoCreate struct {
		Key                 *keys.Key
		InitialBalance      int64
		Proxy               entity.ID
		ReceiverSigRequired bool
		AutoRenewPeriod     int64
		Memo                string
	}

	// CryptoUpdate changes account properties, nil fields are not
	// changed.
	CryptoUpdate struct {
		Account             entity.ID
		Key                 *keys.Key
		Proxy               *entity.ID
		Expiry              *int64
		AutoRenewPeriod     *int64
		ReceiverSigRequired *bool
		Memo                *string
	}

	// CryptoDelete deletes the account transferring its balance.
	CryptoDelete struct {
		Account  entity.ID
		Transfer entity.ID
	}

	// CryptoTransfer moves hbars and tokens between accounts.
	CryptoTransfer struct {
		Transfers      TransferList
		TokenTransfers []TokenTransferList
	}

	// ContractCreate instantiates a contract.
	ContractCreate struct {
		File                  entity.ID
		AdminKey              *keys.Key
		Gas                   int64
		InitialBalance        int64
		Proxy                 entity.ID
		AutoRenewPeriod       int64
		ConstructorParameters []byte
		Memo                  string
	}

	// ContractCall calls a contract method.
	ContractCall struct {
		Contract           entity.ID
		Gas                int64
		Amount             int64
		FunctionParameters []byte
	}

	// FileCreate creates a file.
	FileCreate struct {
		Keys     *keys.Key
		Contents []byte
		Expiry   int64
		Memo     string
	}

	// FileUpdate changes the file, nil fields are not changed.
	FileUpdate struct {
		File     entity.ID
		Keys     *keys.Key
		Contents []byte
		Expiry   *int64
		Memo     *string
	}

	// FileAppend appends data to the file.
	FileAppend struct {
		File     entity.ID
		Contents []byte
	}

	// FileDelete deletes the file.
	FileDelete struct {
		File entity.ID
	}

	// TokenCreate creates a token.
	TokenCreate struct {
		Name             string
		Symbol           string
		Decimals         uint32
		InitialSupply    uint64
		Treasury         entity.ID
		AdminKey         *keys.Key
		KycKey           *keys.Key
		FreezeKey        *keys.Key
		WipeKey          *keys.Key
		SupplyKey        *keys.Key
		FreezeDefault    bool
		Expiry           int64
		AutoRenewAccount entity.ID
		AutoRenewPeriod  int64
	}

	// TokenUpdate changes the token, zero fields are not changed.
	TokenUpdate struct {
		Token            entity.ID
		Name             string
		Symbol           string
		Treasury         *entity.ID
		AdminKey         *keys.Key
		KycKey           *keys.Key
		FreezeKey        *keys.Key
		WipeKey          *keys.Key
		SupplyKey        *keys.Key
		Expiry           int64
		AutoRenewAccount *entity.ID
		AutoRenewPeriod  int64
	}

	// TokenDelete marks the token as deleted.
	TokenDelete struct {
		Token entity.ID
	}

	// TokenMint increases the token supply, minted tokens go to the
	// treasury.
	TokenMint struct {
		Token  entity.ID
		Amount uint64
	}

	// TokenBurn decreases the token supply taking tokens from the treasury.
	TokenBurn struct {
		Token  entity.ID
		Amount uint64
	}

	// TokenWipe burns tokens owned by the given account.
	TokenWipe struct {
		Token   entity.ID
		Account entity.ID
		Amount  uint64
	}

	// TokenFreeze freezes the account's token relationship.
	TokenFreeze struct {
		Token   entity.ID
		Account entity.ID
	}

	// TokenUnfreeze unfreezes the account's token relationship.
	TokenUnfreeze struct {
		Token   entity.ID
		Account entity.ID
	}

	// TokenGrantKyc grants KYC to the account for the token.
	TokenGrantKyc struct {
		Token   entity.ID
		Account entity.ID
	}

	// TokenRevokeKyc revokes KYC from the account for the token.
	TokenRevokeKyc struct {
		Token   entity.ID
		Account entity.ID
	}

	// TokenAssociate associates the account with the tokens.
	TokenAssociate struct {
		Account entity.ID
		Tokens  []entity.ID
	}

	// TokenDissociate dissociates the account from the tokens.
	TokenDissociate struct {
		Account entity.ID
		Tokens  []entity.ID
	}

	// ScheduleCreate creates a scheduled transaction.
	ScheduleCreate struct {
		// TransactionBody is the serialized body to be executed once
		// all required signatures are collected.
		TransactionBody []byte
		AdminKey        *keys.Key
		Payer           entity.ID
		Memo            string
	}

	// ScheduleDelete deletes a scheduled transaction.
	ScheduleDelete struct {
		Schedule entity.ID
	}
)

// Functionality implements the Data interface.
func (*CryptoCreate) Functionality() Functionality { return CryptoCreateT }

// Functionality implements the Data interface.
func (*CryptoUpdate) Functionality() Functionality { return CryptoUpdateT }

// Functionality implements the Data interface.
func (*CryptoDelete) Functionality() Functionality { return CryptoDeleteT }

// Functionality implements the Data interface.
func (*CryptoTransfer) Functionality() Functionality { return CryptoTransferT }

// Functionality implements the Data interface.
func (*ContractCreate) Functionality() Functionality { return ContractCreateT }

// Functionality implements the Data interface.
func (*ContractCall) Functionality() Functionality { return ContractCallT }

// Functionality implements the Data interface.
func (*FileCreate) Functionality() Functionality { return FileCreateT }

// Functionality implements the Data interface.
func (*FileUpdate) Functionality() Functionality { return FileUpdateT }

// Functionality implements the Data interface.
func (*FileAppend) Functionality() Functionality { return FileAppendT }

// Functionality implements the Data interface.
func (*FileDelete) Functionality() Functionality { return FileDeleteT }

// Functionality implements the Data interface.
func (*TokenCreate) Functionality() Functionality { return TokenCreateT }

// Functionality implements the Data interface.
func (*TokenUpdate) Functionality() Functionality { return TokenUpdateT }

// Functionality implements the Data interface.
func (*TokenDelete) Functionality() Functionality { return TokenDeleteT }

// Functionality implements the Data interface.
func (*TokenMint) Functionality() Functionality { return TokenMintT }

// Functionality implements the Data interface.
func (*TokenBurn) Functionality() Functionality { return TokenBurnT }

// Functionality implements the Data interface.
func (*TokenWipe) Functionality() Functionality { return TokenAccountWipe }

// Functionality implements the Data interface.
func (*TokenFreeze) Functionality() Functionality { return TokenFreezeAccount }

// Functionality implements the Data interface.
func (*TokenUnfreeze) Functionality() Functionality { return TokenUnfreezeAccount }

// Functionality implements the Data interface.
func (*TokenGrantKyc) Functionality() Functionality { return TokenGrantKycToAccount }

// Functionality implements the Data interface.
func (*TokenRevokeKyc) Functionality() Functionality { return TokenRevokeKycFromAccount }

// Functionality implements the Data interface.
func (*TokenAssociate) Functionality() Functionality { return TokenAssociateToAccount }

// Functionality implements the Data interface.
func (*TokenDissociate) Functionality() Functionality { return TokenDissociateFromAccount }

// Functionality implements the Data interface.
func (*ScheduleCreate) Functionality() Functionality { return ScheduleCreateT }

// Functionality implements the Data interface.
func (*ScheduleDelete) Functionality() Functionality { return ScheduleDeleteT }
