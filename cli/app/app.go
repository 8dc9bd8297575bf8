package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/ledger-services/cli/fees"
	"github.com/nspcc-dev/ledger-services/cli/server"
	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "ledger-services\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates an instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "ledger-services"
	ctl.Version = config.Version
	ctl.Usage = "Ledger node with fees, accounts, files, tokens and schedules"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	ctl.Commands = append(ctl.Commands, fees.NewCommands()...)
	return ctl
}
