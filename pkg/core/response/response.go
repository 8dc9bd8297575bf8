/*
Package response contains ledger response codes set as transaction status
by transition logic and returned to query clients.
*/
package response

import "strconv"

// Code is a ledger response code.
type Code int32

// Response codes.
const (
	OK                                   Code = 0
	InvalidTransaction                   Code = 1
	PayerAccountNotFound                 Code = 2
	InvalidNodeAccount                   Code = 3
	TransactionExpired                   Code = 4
	InvalidTransactionStart              Code = 5
	InvalidTransactionDuration           Code = 6
	InvalidSignature                     Code = 7
	MemoTooLong                          Code = 8
	InsufficientTxFee                    Code = 9
	InsufficientPayerBalance             Code = 10
	DuplicateTransaction                 Code = 11
	Busy                                 Code = 12
	NotSupported                         Code = 13
	InvalidFileID                        Code = 14
	InvalidAccountID                     Code = 15
	InvalidContractID                    Code = 16
	InvalidTransactionID                 Code = 17
	Unknown                              Code = 21
	Success                              Code = 22
	FailInvalid                          Code = 23
	FailFee                              Code = 24
	FailBalance                          Code = 25
	KeyRequired                          Code = 26
	BadEncoding                          Code = 27
	InsufficientAccountBalance           Code = 28
	InvalidKeyEncoding                   Code = 38
	KeyNotProvided                       Code = 44
	InvalidExpirationTime                Code = 45
	NoWACLKey                            Code = 46
	FileContentEmpty                     Code = 47
	InvalidAccountAmounts                Code = 48
	EmptyTransactionBody                 Code = 49
	InvalidTransactionBody               Code = 50
	InvalidFileWACL                      Code = 62
	TransactionOversize                  Code = 64
	InvalidRenewalPeriod                 Code = 70
	AccountDeleted                       Code = 72
	FileDeleted                          Code = 73
	AccountRepeatedInAccountAmounts      Code = 74
	SettingNegativeAccountBalance        Code = 75
	AutorenewDurationNotInRange          Code = 81
	InvalidInitialBalance                Code = 85
	TransferListSizeLimitExceeded        Code = 92
	EntityNotAllowedToDelete             Code = 100
	AuthorizationFailed                  Code = 101
	TransferAccountSameAsDeleteAccount   Code = 107
	ExpirationReductionNotAllowed        Code = 110
	MaxFileSizeExceeded                  Code = 112
	InvalidAdminKey                      Code = 155
	InvalidAutorenewAccount              Code = 159
	AccountFrozenForToken                Code = 165
	TokensPerAccountLimitExceeded        Code = 166
	InvalidTokenID                       Code = 167
	InvalidTokenDecimals                 Code = 168
	InvalidTokenInitialSupply            Code = 169
	InvalidTreasuryAccountForToken       Code = 170
	InvalidTokenSymbol                   Code = 171
	TokenHasNoFreezeKey                  Code = 172
	TransfersNotZeroSumForToken          Code = 173
	MissingTokenSymbol                   Code = 174
	TokenSymbolTooLong                   Code = 175
	AccountKycNotGrantedForToken         Code = 176
	TokenHasNoKycKey                     Code = 177
	InsufficientTokenBalance             Code = 178
	TokenWasDeleted                      Code = 179
	TokenHasNoSupplyKey                  Code = 180
	TokenHasNoWipeKey                    Code = 181
	InvalidTokenMintAmount               Code = 182
	InvalidTokenBurnAmount               Code = 183
	TokenNotAssociatedToAccount          Code = 184
	CannotWipeTokenTreasuryAccount       Code = 185
	InvalidKycKey                        Code = 186
	InvalidWipeKey                       Code = 187
	InvalidFreezeKey                     Code = 188
	InvalidSupplyKey                     Code = 189
	MissingTokenName                     Code = 190
	TokenNameTooLong                     Code = 191
	InvalidWipingAmount                  Code = 192
	TokenIsImmutable                     Code = 193
	TokenAlreadyAssociatedToAccount      Code = 194
	TransactionRequiresZeroTokenBalances Code = 195
	AccountIsTreasury                    Code = 196
	TokenIDRepeatedInTokenList           Code = 197
	TokenTransferListSizeLimitExceeded   Code = 198
	EmptyTokenTransferBody               Code = 199
	EmptyTokenTransferAccountAmounts     Code = 200
	InvalidScheduleID                    Code = 201
	ScheduleIsImmutable                  Code = 202
	InvalidSchedulePayerID               Code = 203
	InvalidScheduleAccountID             Code = 204
	IdenticalScheduleAlreadyCreated      Code = 210
	InvalidZeroByteInString              Code = 211
	ScheduleAlreadyDeleted               Code = 212
	ScheduleAlreadyExecuted              Code = 213
)

var codeNames = map[Code]string{
	OK:                                   "OK",
	InvalidTransaction:                   "INVALID_TRANSACTION",
	PayerAccountNotFound:                 "PAYER_ACCOUNT_NOT_FOUND",
	InvalidNodeAccount:                   "INVALID_NODE_ACCOUNT",
	TransactionExpired:                   "TRANSACTION_EXPIRED",
	InvalidTransactionStart:              "INVALID_TRANSACTION_START",
	InvalidTransactionDuration:           "INVALID_TRANSACTION_DURATION",
	InvalidSignature:                     "INVALID_SIGNATURE",
	MemoTooLong:                          "MEMO_TOO_LONG",
	InsufficientTxFee:                    "INSUFFICIENT_TX_FEE",
	InsufficientPayerBalance:             "INSUFFICIENT_PAYER_BALANCE",
	DuplicateTransaction:                 "DUPLICATE_TRANSACTION",
	Busy:                                 "BUSY",
	NotSupported:                         "NOT_SUPPORTED",
	InvalidFileID:                        "INVALID_FILE_ID",
	InvalidAccountID:                     "INVALID_ACCOUNT_ID",
	InvalidContractID:                    "INVALID_CONTRACT_ID",
	InvalidTransactionID:                 "INVALID_TRANSACTION_ID",
	Unknown:                              "UNKNOWN",
	Success:                              "SUCCESS",
	FailInvalid:                          "FAIL_INVALID",
	FailFee:                              "FAIL_FEE",
	FailBalance:                          "FAIL_BALANCE",
	KeyRequired:                          "KEY_REQUIRED",
	BadEncoding:                          "BAD_ENCODING",
	InsufficientAccountBalance:           "INSUFFICIENT_ACCOUNT_BALANCE",
	InvalidKeyEncoding:                   "INVALID_KEY_ENCODING",
	KeyNotProvided:                       "KEY_NOT_PROVIDED",
	InvalidExpirationTime:                "INVALID_EXPIRATION_TIME",
	NoWACLKey:                            "NO_WACL_KEY",
	FileContentEmpty:                     "FILE_CONTENT_EMPTY",
	InvalidAccountAmounts:                "INVALID_ACCOUNT_AMOUNTS",
	EmptyTransactionBody:                 "EMPTY_TRANSACTION_BODY",
	InvalidTransactionBody:               "INVALID_TRANSACTION_BODY",
	InvalidFileWACL:                      "INVALID_FILE_WACL",
	TransactionOversize:                  "TRANSACTION_OVERSIZE",
	InvalidRenewalPeriod:                 "INVALID_RENEWAL_PERIOD",
	AccountDeleted:                       "ACCOUNT_DELETED",
	FileDeleted:                          "FILE_DELETED",
	AccountRepeatedInAccountAmounts:      "ACCOUNT_REPEATED_IN_ACCOUNT_AMOUNTS",
	SettingNegativeAccountBalance:        "SETTING_NEGATIVE_ACCOUNT_BALANCE",
	AutorenewDurationNotInRange:          "AUTORENEW_DURATION_NOT_IN_RANGE",
	InvalidInitialBalance:                "INVALID_INITIAL_BALANCE",
	TransferListSizeLimitExceeded:        "TRANSFER_LIST_SIZE_LIMIT_EXCEEDED",
	EntityNotAllowedToDelete:             "ENTITY_NOT_ALLOWED_TO_DELETE",
	AuthorizationFailed:                  "AUTHORIZATION_FAILED",
	TransferAccountSameAsDeleteAccount:   "TRANSFER_ACCOUNT_SAME_AS_DELETE_ACCOUNT",
	ExpirationReductionNotAllowed:        "EXPIRATION_REDUCTION_NOT_ALLOWED",
	MaxFileSizeExceeded:                  "MAX_FILE_SIZE_EXCEEDED",
	InvalidAdminKey:                      "INVALID_ADMIN_KEY",
	InvalidAutorenewAccount:              "INVALID_AUTORENEW_ACCOUNT",
	AccountFrozenForToken:                "ACCOUNT_FROZEN_FOR_TOKEN",
	TokensPerAccountLimitExceeded:        "TOKENS_PER_ACCOUNT_LIMIT_EXCEEDED",
	InvalidTokenID:                       "INVALID_TOKEN_ID",
	InvalidTokenDecimals:                 "INVALID_TOKEN_DECIMALS",
	InvalidTokenInitialSupply:            "INVALID_TOKEN_INITIAL_SUPPLY",
	InvalidTreasuryAccountForToken:       "INVALID_TREASURY_ACCOUNT_FOR_TOKEN",
	InvalidTokenSymbol:                   "INVALID_TOKEN_SYMBOL",
	TokenHasNoFreezeKey:                  "TOKEN_HAS_NO_FREEZE_KEY",
	TransfersNotZeroSumForToken:          "TRANSFERS_NOT_ZERO_SUM_FOR_TOKEN",
	MissingTokenSymbol:                   "MISSING_TOKEN_SYMBOL",
	TokenSymbolTooLong:                   "TOKEN_SYMBOL_TOO_LONG",
	AccountKycNotGrantedForToken:         "ACCOUNT_KYC_NOT_GRANTED_FOR_TOKEN",
	TokenHasNoKycKey:                     "TOKEN_HAS_NO_KYC_KEY",
	InsufficientTokenBalance:             "INSUFFICIENT_TOKEN_BALANCE",
	TokenWasDeleted:                      "TOKEN_WAS_DELETED",
	TokenHasNoSupplyKey:                  "TOKEN_HAS_NO_SUPPLY_KEY",
	TokenHasNoWipeKey:                    "TOKEN_HAS_NO_WIPE_KEY",
	InvalidTokenMintAmount:               "INVALID_TOKEN_MINT_AMOUNT",
	InvalidTokenBurnAmount:               "INVALID_TOKEN_BURN_AMOUNT",
	TokenNotAssociatedToAccount:          "TOKEN_NOT_ASSOCIATED_TO_ACCOUNT",
	CannotWipeTokenTreasuryAccount:       "CANNOT_WIPE_TOKEN_TREASURY_ACCOUNT",
	InvalidKycKey:                        "INVALID_KYC_KEY",
	InvalidWipeKey:                       "INVALID_WIPE_KEY",
	InvalidFreezeKey:                     "INVALID_FREEZE_KEY",
	InvalidSupplyKey:                     "INVALID_SUPPLY_KEY",
	MissingTokenName:                     "MISSING_TOKEN_NAME",
	TokenNameTooLong:                     "TOKEN_NAME_TOO_LONG",
	InvalidWipingAmount:                  "INVALID_WIPING_AMOUNT",
	TokenIsImmutable:                     "TOKEN_IS_IMMUTABLE",
	TokenAlreadyAssociatedToAccount:      "TOKEN_ALREADY_ASSOCIATED_TO_ACCOUNT",
	TransactionRequiresZeroTokenBalances: "TRANSACTION_REQUIRES_ZERO_TOKEN_BALANCES",
	AccountIsTreasury:                    "ACCOUNT_IS_TREASURY",
	TokenIDRepeatedInTokenList:           "TOKEN_ID_REPEATED_IN_TOKEN_LIST",
	TokenTransferListSizeLimitExceeded:   "TOKEN_TRANSFER_LIST_SIZE_LIMIT_EXCEEDED",
	EmptyTokenTransferBody:               "EMPTY_TOKEN_TRANSFER_BODY",
	EmptyTokenTransferAccountAmounts:     "EMPTY_TOKEN_TRANSFER_ACCOUNT_AMOUNTS",
	InvalidScheduleID:                    "INVALID_SCHEDULE_ID",
	ScheduleIsImmutable:                  "SCHEDULE_IS_IMMUTABLE",
	InvalidSchedulePayerID:               "INVALID_SCHEDULE_PAYER_ID",
	InvalidScheduleAccountID:             "INVALID_SCHEDULE_ACCOUNT_ID",
	IdenticalScheduleAlreadyCreated:      "IDENTICAL_SCHEDULE_ALREADY_CREATED",
	InvalidZeroByteInString:              "INVALID_ZERO_BYTE_IN_STRING",
	ScheduleAlreadyDeleted:               "SCHEDULE_ALREADY_DELETED",
	ScheduleAlreadyExecuted:              "SCHEDULE_ALREADY_EXECUTED",
}

// String implements the fmt.Stringer interface.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "Code(" + strconv.FormatInt(int64(c), 10) + ")"
}

// IsSuccess returns true for codes denoting successful transaction
// execution.
func (c Code) IsSuccess() bool {
	return c == Success || c == OK
}
