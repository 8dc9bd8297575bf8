/*
Package fees contains commands converting fee schedule and exchange rate
files between YAML and their binary form stored in system files.
*/
package fees

import (
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/ledger-services/cli/cmdargs"
	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/fees"
	"github.com/nspcc-dev/ledger-services/pkg/fees/schedule"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

type codec interface {
	Bytes() []byte
	Decode([]byte) error
}

var (
	inFlag = cli.StringFlag{
		Name:  "in, i",
		Usage: "input file",
	}
	ratesFlag = cli.BoolFlag{
		Name:  "rates, r",
		Usage: "handle exchange rates instead of fee schedules",
	}
)

// NewCommands returns 'fees' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "fees",
		Usage: "fee schedules and exchange rates",
		Subcommands: []cli.Command{
			{
				Name:      "encode",
				Usage:     "convert YAML to the system file format",
				UsageText: "ledger-services fees encode -i schedule.yml -o schedule.bin [--rates]",
				Action:    encode,
				Flags: []cli.Flag{
					inFlag,
					cli.StringFlag{
						Name:  "out, o",
						Usage: "output file",
					},
					ratesFlag,
				},
			},
			{
				Name:      "decode",
				Usage:     "print the system file contents as YAML",
				UsageText: "ledger-services fees decode -i schedule.bin [--rates]",
				Action:    decode,
				Flags:     []cli.Flag{inFlag, ratesFlag},
			},
			{
				Name:      "prices",
				Usage:     "print prices of the functionality",
				UsageText: "ledger-services fees prices -i schedule.yml [--at unixtime] <functionality>",
				Action:    prices,
				Flags: []cli.Flag{
					inFlag,
					cli.Int64Flag{
						Name:  "at",
						Usage: "time to get prices for in seconds since epoch, current time by default",
					},
				},
			},
		},
	}}
}

func newCodec(ctx *cli.Context) codec {
	if ctx.Bool("rates") {
		return new(schedule.ExchangeRateSet)
	}
	return new(schedule.CurrentAndNextFeeSchedule)
}

func readInput(ctx *cli.Context) ([]byte, error) {
	in := ctx.String("in")
	if in == "" {
		return nil, cli.NewExitError("no input file specified", 1)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return data, nil
}

func encode(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	out := ctx.String("out")
	if out == "" {
		return cli.NewExitError("no output file specified", 1)
	}
	data, err := readInput(ctx)
	if err != nil {
		return err
	}
	c := newCodec(ctx)
	if err := yaml.Unmarshal(data, c); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to unmarshal YAML: %w", err), 1)
	}
	if err := os.WriteFile(out, c.Bytes(), 0644); err != nil {
		return cli.NewExitError(fmt.Errorf("can't write output: %w", err), 1)
	}
	return nil
}

func decode(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	data, err := readInput(ctx)
	if err != nil {
		return err
	}
	c := newCodec(ctx)
	if err := c.Decode(data); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to decode: %w", err), 1)
	}
	return printYAML(ctx, c)
}

func prices(ctx *cli.Context) error {
	fn, exitErr := cmdargs.GetFunctionalityFromContext(ctx)
	if exitErr != nil {
		return exitErr
	}
	data, err := readInput(ctx)
	if err != nil {
		return err
	}
	var s schedule.CurrentAndNextFeeSchedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to unmarshal YAML: %w", err), 1)
	}
	at := time.Now()
	if ctx.IsSet("at") {
		at = time.Unix(ctx.Int64("at"), 0)
	}
	p := fees.NewBasicUsagePrices(nil, entity.ID{}, nil, nil)
	p.SetFeeSchedules(s)
	return printYAML(ctx, p.PricesGiven(fn, at))
}

func printYAML(ctx *cli.Context, v any) error {
	enc := yaml.NewEncoder(ctx.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return cli.NewExitError(err, 1)
	}
	return enc.Close()
}
