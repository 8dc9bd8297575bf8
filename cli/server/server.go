/*
Package server contains commands running the ledger node and managing its
database.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nspcc-dev/ledger-services/cli/cmdargs"
	"github.com/nspcc-dev/ledger-services/cli/options"
	"github.com/nspcc-dev/ledger-services/pkg/config"
	"github.com/nspcc-dev/ledger-services/pkg/core"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"github.com/nspcc-dev/ledger-services/pkg/fees"
	"github.com/nspcc-dev/ledger-services/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns 'node' and 'ledger' commands.
func NewCommands() []cli.Command {
	cfgFlags := []cli.Flag{options.Config, options.ConfigFile, options.Debug}
	initFlags := append([]cli.Flag{
		cli.StringFlag{
			Name:  "genesis, g",
			Usage: "path to the genesis YAML file",
		},
	}, cfgFlags...)
	return []cli.Command{
		{
			Name:      "node",
			Usage:     "start the ledger node",
			UsageText: "ledger-services node [--config-path path] [-d]",
			Action:    startServer,
			Flags:     cfgFlags,
		},
		{
			Name:  "ledger",
			Usage: "ledger database operations",
			Subcommands: []cli.Command{
				{
					Name:      "init",
					Usage:     "create genesis accounts and system files",
					UsageText: "ledger-services ledger init -g genesis.yml [--config-path path]",
					Action:    initLedger,
					Flags:     initFlags,
				},
				{
					Name:      "account",
					Usage:     "show the account state",
					UsageText: "ledger-services ledger account shard.realm.num [--config-path path]",
					Action:    showAccount,
					Flags:     cfgFlags,
				},
			},
		},
	}
}

func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

// initNode opens the configured database and creates a node over it, the
// result is to be closed by the caller.
func initNode(ctx *cli.Context) (*core.Node, config.Config, *zap.Logger, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, cfg, nil, cli.NewExitError(err, 1)
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, cfg, nil, cli.NewExitError(err, 1)
	}
	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return nil, cfg, nil, cli.NewExitError(fmt.Errorf("could not initialize storage: %w", err), 1)
	}
	node, err := core.NewNode(store, cfg.ProtocolConfiguration, nil, log)
	if err != nil {
		_ = store.Close()
		return nil, cfg, nil, cli.NewExitError(fmt.Errorf("could not initialize node: %w", err), 1)
	}
	return node, cfg, log, nil
}

func initLedger(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	genesisPath := ctx.String("genesis")
	if genesisPath == "" {
		return cli.NewExitError("no genesis file specified", 1)
	}
	g, err := core.LoadGenesis(genesisPath)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	node, _, log, err := initNode(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = node.Close()
		_ = log.Sync()
	}()

	if err := node.Bootstrap(g, time.Now()); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to bootstrap ledger: %w", err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Ledger initialized with %d accounts\n", len(g.Accounts))
	return nil
}

func showAccount(ctx *cli.Context) error {
	id, exitErr := cmdargs.GetIDFromContext(ctx)
	if exitErr != nil {
		return exitErr
	}
	node, _, log, err := initNode(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = node.Close()
		_ = log.Sync()
	}()

	acc, err := node.Account(id)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "Account:\t%s\n", id)
	fmt.Fprintf(w, "Key:\t\t%s\n", acc.Key)
	fmt.Fprintf(w, "Balance:\t%d\n", acc.Balance)
	fmt.Fprintf(w, "Expiry:\t\t%s\n", time.Unix(acc.Expiry, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Deleted:\t%t\n", acc.Deleted)
	fmt.Fprintf(w, "Tokens:\t\t%d\n", len(acc.Tokens))
	return nil
}

func startServer(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	grace := newGraceContext()
	node, cfg, log, err := initNode(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = node.Close()
		_ = log.Sync()
	}()

	if err := node.Init(); err != nil {
		if errors.Is(err, fees.ErrPriceSchedulesUnavailable) {
			err = fmt.Errorf("%w, run 'ledger init' first", err)
		}
		return cli.NewExitError(err, 1)
	}

	prometheus := metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log)
	pprof := metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log)
	for _, s := range []*metrics.Service{prometheus, pprof} {
		if err := s.Start(); err != nil {
			prometheus.ShutDown()
			pprof.ShutDown()
			return cli.NewExitError(fmt.Errorf("failed to start service: %w", err), 1)
		}
	}
	log.Info("node started")
	<-grace.Done()
	log.Info("shutting down")
	pprof.ShutDown()
	prometheus.ShutDown()
	return nil
}

