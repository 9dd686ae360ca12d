// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/ChainSafe/subclient/client"
	"github.com/ChainSafe/subclient/config"
	"github.com/ChainSafe/subclient/internal/log"
	"github.com/ChainSafe/subclient/internal/metrics"
)

const configKey = "config"

var logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))

func newApp(w io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "subclient"
	app.Usage = "Substrate chain client"
	app.Writer = w
	app.Flags = globalFlags
	app.Before = setup
	app.Commands = []cli.Command{
		{
			Name:   "constants",
			Usage:  "List the runtime constants",
			Action: constantsAction,
		},
		{
			Name:      "constant",
			Usage:     "Print a runtime constant",
			ArgsUsage: "<pallet> <name>",
			Action:    constantAction,
		},
		{
			Name:   "storage-functions",
			Usage:  "List the storage entries",
			Action: storageFunctionsAction,
		},
		{
			Name:      "query",
			Usage:     "Query a storage entry",
			ArgsUsage: "<pallet> <item> [params...]",
			Flags:     []cli.Flag{AtFlag},
			Action:    queryAction,
		},
		{
			Name:      "block",
			Usage:     "Print a block with its extrinsics",
			ArgsUsage: "[hash]",
			Action:    blockAction,
		},
		{
			Name:      "header",
			Usage:     "Print a block header",
			ArgsUsage: "[hash]",
			Flags:     []cli.Flag{FinalizedFlag},
			Action:    headerAction,
		},
		{
			Name:      "transfer",
			Usage:     "Sign and submit Balances.transfer_allow_death",
			ArgsUsage: "<dest> <value>",
			Flags:     []cli.Flag{KeyFlag, SchemeFlag, NonceFlag, TipFlag, WaitFlag, WaitFinalizedFlag},
			Action:    transferAction,
		},
		{
			Name:      "payload",
			Usage:     "Print the signature payload of a transfer, for offline signing",
			ArgsUsage: "<dest> <value>",
			Flags:     []cli.Flag{SignerFlag, NonceFlag, TipFlag},
			Action:    payloadAction,
		},
		{
			Name:      "submit",
			Usage:     "Submit a hex encoded extrinsic",
			ArgsUsage: "<hex>",
			Flags:     []cli.Flag{WaitFlag, WaitFinalizedFlag},
			Action:    submitAction,
		},
		{
			Name:  "config",
			Usage: "Configuration commands",
			Subcommands: []cli.Command{
				{
					Name:      "export",
					Usage:     "Write the effective configuration as TOML",
					ArgsUsage: "<path>",
					Action:    exportConfigAction,
				},
			},
		},
		{
			Name:   "metrics",
			Usage:  "Serve Prometheus metrics while following new blocks",
			Flags:  []cli.Flag{MetricsAddressFlag},
			Action: metricsAction,
		},
	}
	return app
}

// setup loads the configuration and sets up the global logger.
func setup(ctx *cli.Context) error {
	overrides := make(map[string]any)
	if ctx.GlobalIsSet(URLFlag.Name) {
		overrides["rpc.url"] = ctx.GlobalString(URLFlag.Name)
	}
	if ctx.GlobalIsSet(LogFlag.Name) {
		overrides["log.level"] = ctx.GlobalString(LogFlag.Name)
	}

	cfg, err := config.Load(ctx.GlobalString(ConfigFlag.Name), overrides)
	if err != nil {
		return err
	}

	log.Patch(
		log.SetWriter(os.Stderr),
		log.SetFormat(cfg.LogFormat()),
		log.SetLevel(cfg.LogLevel()),
	)
	if ctx.App.Metadata == nil {
		ctx.App.Metadata = make(map[string]any)
	}
	ctx.App.Metadata[configKey] = cfg
	return nil
}

func configOf(ctx *cli.Context) config.Config {
	cfg, ok := ctx.App.Metadata[configKey].(config.Config)
	if !ok {
		return config.Default()
	}
	return cfg
}

type clientFunc func(ctx context.Context, c *client.Client) error

// withClient connects a client for the duration of fn, serving its
// metrics when enabled in the configuration.
func withClient(ctx *cli.Context, fn clientFunc) error {
	var address string
	if cfg := configOf(ctx).Metrics; cfg.Enabled {
		address = cfg.Address
	}
	return runClient(ctx, address, fn)
}

// runClient connects a client for the duration of fn. A non empty
// metricsAddress serves the client metrics meanwhile.
func runClient(ctx *cli.Context, metricsAddress string, fn clientFunc) error {
	runCtx, stop := signalContext()
	defer stop()

	var options []client.Option
	if metricsAddress != "" {
		registry := metrics.NewRegistry()
		server := metrics.NewServer(metricsAddress, registry)
		if err := server.Start(); err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
		defer func() {
			if err := server.Stop(); err != nil {
				logger.Errorf("stopping metrics server: %s", err)
			}
		}()
		options = append(options, client.Registerer(registry))
	}

	c, err := client.New(runCtx, configOf(ctx), options...)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(runCtx, c)
}

func argument(ctx *cli.Context, index int, name string) (string, error) {
	if ctx.NArg() <= index {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return ctx.Args().Get(index), nil
}
