// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"github.com/urfave/cli"
)

// Global flags
var (
	// ConfigFlag TOML configuration file
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	// URLFlag node endpoint
	URLFlag = cli.StringFlag{
		Name:  "url",
		Usage: "Node endpoint, eg. ws://127.0.0.1:9944",
	}
	// LogFlag global log level
	LogFlag = cli.StringFlag{
		Name:  "log",
		Usage: "Global log level. Supports levels critical (silent), error, warn, info, debug and trace",
	}
)

// Command flags
var (
	// AtFlag block hash to read state at
	AtFlag = cli.StringFlag{
		Name:  "at",
		Usage: "Block hash to read the state at, defaults to the best block",
	}
	// FinalizedFlag selects finalized blocks only
	FinalizedFlag = cli.BoolFlag{
		Name:  "finalized",
		Usage: "Only return a finalized header",
	}
	// KeyFlag signing key
	KeyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "Development account name (eg. --key=alith) or hex private key. Prompted for when not set",
	}
	// SchemeFlag signing scheme
	SchemeFlag = cli.StringFlag{
		Name:  "scheme",
		Value: "ethereum",
		Usage: "Signing scheme: sr25519, ed25519, ecdsa or ethereum",
	}
	// SignerFlag signer address for offline payloads
	SignerFlag = cli.StringFlag{
		Name:  "signer",
		Usage: "Signer address, 0x hex for 20-byte accounts or SS58",
	}
	// NonceFlag explicit nonce
	NonceFlag = cli.Int64Flag{
		Name:  "nonce",
		Value: -1,
		Usage: "Nonce to sign with, read from the node when negative",
	}
	// TipFlag tip override
	TipFlag = cli.StringFlag{
		Name:  "tip",
		Usage: "Tip in the smallest unit, defaults to the configured tip",
	}
	// WaitFlag waits for inclusion
	WaitFlag = cli.BoolFlag{
		Name:  "wait",
		Usage: "Wait until the extrinsic is included in a block",
	}
	// WaitFinalizedFlag waits for finalization
	WaitFinalizedFlag = cli.BoolFlag{
		Name:  "wait-finalized",
		Usage: "Wait until the extrinsic block is finalized",
	}
	// MetricsAddressFlag metrics listening address
	MetricsAddressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "Metrics listening address, defaults to the configured address",
	}
)

var globalFlags = []cli.Flag{ConfigFlag, URLFlag, LogFlag}
