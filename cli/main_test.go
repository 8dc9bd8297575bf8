package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	genesisFile  = "../config/genesis.yml"
	scheduleFile = "../config/feeschedule.yml"
)

func TestCLIVersion(t *testing.T) {
	e := newExecutor(t)
	e.Run(t, "ledger-services", "--version")
	e.checkNextLine(t, "^ledger-services")
	e.checkNextLine(t, "^Version:")
	e.checkNextLine(t, "^GoVersion:")
	e.checkEOF(t)
}

func TestLedgerInit(t *testing.T) {
	e := newExecutor(t)
	cfg := writeConfig(t)

	t.Run("no genesis", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "ledger", "init", "--config-file", cfg)
	})
	t.Run("missing genesis", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "ledger", "init", "--config-file", cfg,
			"-g", filepath.Join(t.TempDir(), "nope.yml"))
	})
	t.Run("extra args", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "ledger", "init", "--config-file", cfg, "-g", genesisFile, "extra")
	})

	e.Run(t, "ledger-services", "ledger", "init", "--config-file", cfg, "-g", genesisFile)
	e.checkNextLine(t, "^Ledger initialized with 3 accounts$")
	e.checkEOF(t)

	t.Run("twice", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "ledger", "init", "--config-file", cfg, "-g", genesisFile)
	})

	t.Run("account", func(t *testing.T) {
		e.Run(t, "ledger-services", "ledger", "account", "--config-file", cfg, "0.0.2")
		e.checkNextLine(t, `^Account:\s+0\.0\.2$`)
		e.checkNextLine(t, `^Key:`)
		e.checkNextLine(t, `^Balance:\s+5000000000000000000$`)
		e.checkNextLine(t, `^Expiry:`)
		e.checkNextLine(t, `^Deleted:\s+false$`)
		e.checkNextLine(t, `^Tokens:\s+0$`)
		e.checkEOF(t)
	})

	t.Run("missing account", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "ledger", "account", "--config-file", cfg, "0.0.5000")
	})
	t.Run("bad account id", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "ledger", "account", "--config-file", cfg, "5000")
	})
}

func TestFeesEncodeDecode(t *testing.T) {
	e := newExecutor(t)
	out := filepath.Join(t.TempDir(), "schedule.bin")

	t.Run("no input", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "fees", "encode", "-o", out)
	})
	t.Run("no output", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "fees", "encode", "-i", scheduleFile)
	})

	e.Run(t, "ledger-services", "fees", "encode", "-i", scheduleFile, "-o", out)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var expected schedule.CurrentAndNextFeeSchedule
	data, err := os.ReadFile(scheduleFile)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &expected))

	var actual schedule.CurrentAndNextFeeSchedule
	require.NoError(t, actual.Decode(raw))
	require.Equal(t, expected, actual)

	e.Run(t, "ledger-services", "fees", "decode", "-i", out)
	var printed schedule.CurrentAndNextFeeSchedule
	require.NoError(t, yaml.Unmarshal(e.Out.Bytes(), &printed))
	require.Equal(t, expected, printed)

	t.Run("garbage", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.bin")
		require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xff, 0xff}, 0644))
		e.RunWithError(t, "ledger-services", "fees", "decode", "-i", bad)
	})
}

func TestFeesEncodeRates(t *testing.T) {
	e := newExecutor(t)
	d := t.TempDir()
	in := filepath.Join(d, "rates.yml")
	out := filepath.Join(d, "rates.bin")
	require.NoError(t, os.WriteFile(in, []byte(
		"Current: {HbarEquiv: 1, CentEquiv: 12, ExpiryTime: 100}\n"+
			"Next: {HbarEquiv: 1, CentEquiv: 15, ExpiryTime: 200}\n"), 0644))

	e.Run(t, "ledger-services", "fees", "encode", "--rates", "-i", in, "-o", out)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var rates schedule.ExchangeRateSet
	require.NoError(t, rates.Decode(raw))
	require.Equal(t, schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 12, Expiry: 100}, rates.Current)
	require.Equal(t, schedule.ExchangeRate{HbarEquiv: 1, CentEquiv: 15, Expiry: 200}, rates.Next)
}

func TestFeesPrices(t *testing.T) {
	e := newExecutor(t)

	e.Run(t, "ledger-services", "fees", "prices", "-i", scheduleFile, "--at", "1600000000", "CryptoCreate")
	var fd schedule.FeeData
	require.NoError(t, yaml.Unmarshal(e.Out.Bytes(), &fd))
	require.EqualValues(t, 7574478, fd.Node.Constant)
	require.EqualValues(t, 151489557, fd.Service.Constant)

	t.Run("no such function", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "fees", "prices", "-i", scheduleFile, "Teleport")
	})
	t.Run("no function", func(t *testing.T) {
		e.RunWithError(t, "ledger-services", "fees", "prices", "-i", scheduleFile)
	})
}
