package transaction

import (
	"fmt"
	"strconv"
)

// Functionality is the kind of transaction or query, fee schedules are
// keyed by it.
type Functionality int32

// Supported functionalities. Those named after a Data type carry the T
// suffix.
const (
	None                       Functionality = 0
	CryptoTransferT            Functionality = 1
	CryptoUpdateT              Functionality = 2
	CryptoDeleteT              Functionality = 3
	ContractCallT              Functionality = 6
	ContractCreateT            Functionality = 7
	ContractUpdate             Functionality = 8
	FileCreateT                Functionality = 9
	FileAppendT                Functionality = 10
	FileUpdateT                Functionality = 11
	FileDeleteT                Functionality = 12
	CryptoGetAccountBalance    Functionality = 13
	CryptoGetAccountRecords    Functionality = 14
	CryptoGetInfo              Functionality = 15
	ContractCallLocal          Functionality = 16
	ContractGetInfo            Functionality = 17
	FileGetContents            Functionality = 23
	FileGetInfo                Functionality = 24
	TransactionGetRecord       Functionality = 25
	CryptoCreateT              Functionality = 27
	ContractDelete             Functionality = 30
	GetVersionInfo             Functionality = 35
	TransactionGetReceipt      Functionality = 36
	TokenCreateT               Functionality = 56
	TokenGetInfo               Functionality = 58
	TokenFreezeAccount         Functionality = 59
	TokenUnfreezeAccount       Functionality = 60
	TokenGrantKycToAccount     Functionality = 61
	TokenRevokeKycFromAccount  Functionality = 62
	TokenDeleteT               Functionality = 63
	TokenUpdateT               Functionality = 64
	TokenMintT                 Functionality = 65
	TokenBurnT                 Functionality = 66
	TokenAccountWipe           Functionality = 67
	TokenAssociateToAccount    Functionality = 68
	TokenDissociateFromAccount Functionality = 69
	ScheduleCreateT            Functionality = 70
	ScheduleDeleteT            Functionality = 71
	ScheduleSign               Functionality = 72
	ScheduleGetInfo            Functionality = 73
)

var functionalityNames = map[Functionality]string{
	None:                       "None",
	CryptoTransferT:            "CryptoTransfer",
	CryptoUpdateT:              "CryptoUpdate",
	CryptoDeleteT:              "CryptoDelete",
	ContractCallT:              "ContractCall",
	ContractCreateT:            "ContractCreate",
	ContractUpdate:             "ContractUpdate",
	FileCreateT:                "FileCreate",
	FileAppendT:                "FileAppend",
	FileUpdateT:                "FileUpdate",
	FileDeleteT:                "FileDelete",
	CryptoGetAccountBalance:    "CryptoGetAccountBalance",
	CryptoGetAccountRecords:    "CryptoGetAccountRecords",
	CryptoGetInfo:              "CryptoGetInfo",
	ContractCallLocal:          "ContractCallLocal",
	ContractGetInfo:            "ContractGetInfo",
	FileGetContents:            "FileGetContents",
	FileGetInfo:                "FileGetInfo",
	TransactionGetRecord:       "TransactionGetRecord",
	CryptoCreateT:              "CryptoCreate",
	ContractDelete:             "ContractDelete",
	GetVersionInfo:             "GetVersionInfo",
	TransactionGetReceipt:      "TransactionGetReceipt",
	TokenCreateT:               "TokenCreate",
	TokenGetInfo:               "TokenGetInfo",
	TokenFreezeAccount:         "TokenFreezeAccount",
	TokenUnfreezeAccount:       "TokenUnfreezeAccount",
	TokenGrantKycToAccount:     "TokenGrantKycToAccount",
	TokenRevokeKycFromAccount:  "TokenRevokeKycFromAccount",
	TokenDeleteT:               "TokenDelete",
	TokenUpdateT:               "TokenUpdate",
	TokenMintT:                 "TokenMint",
	TokenBurnT:                 "TokenBurn",
	TokenAccountWipe:           "TokenAccountWipe",
	TokenAssociateToAccount:    "TokenAssociateToAccount",
	TokenDissociateFromAccount: "TokenDissociateFromAccount",
	ScheduleCreateT:            "ScheduleCreate",
	ScheduleDeleteT:            "ScheduleDelete",
	ScheduleSign:               "ScheduleSign",
	ScheduleGetInfo:            "ScheduleGetInfo",
}

// String implements the fmt.Stringer interface.
func (f Functionality) String() string {
	if s, ok := functionalityNames[f]; ok {
		return s
	}
	return "Functionality(" + strconv.FormatInt(int64(f), 10) + ")"
}

// ParseFunctionality returns functionality by its name.
func ParseFunctionality(s string) (Functionality, error) {
	for f, name := range functionalityNames {
		if name == s {
			return f, nil
		}
	}
	return None, fmt.Errorf("unknown functionality %q", s)
}

// MarshalYAML implements the yaml.Marshaler interface.
func (f Functionality) MarshalYAML() (any, error) {
	return f.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (f *Functionality) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseFunctionality(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
