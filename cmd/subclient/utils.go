// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	terminal "golang.org/x/term"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/lib/crypto/ss58"
	"github.com/ChainSafe/subclient/lib/keyring"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// getPassword prompts user to enter a secret
func getPassword(msg string) ([]byte, error) {
	fmt.Fprintln(os.Stderr, msg)
	fmt.Fprint(os.Stderr, "> ")
	secret, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}
	return secret, nil
}

// readKeypair returns the keypair of the --key flag: a development
// account name or a hex private key, prompted for when the flag is empty.
func readKeypair(ctx *cli.Context) (crypto.Keypair, error) {
	scheme, err := keyring.ParseScheme(ctx.String(SchemeFlag.Name))
	if err != nil {
		return nil, err
	}

	key := ctx.String(KeyFlag.Name)
	if key == "" {
		secret, err := getPassword("Enter the hex private key:")
		if err != nil {
			return nil, err
		}
		key = strings.TrimSpace(string(secret))
	}

	if !strings.HasPrefix(key, "0x") {
		kr, err := keyring.New(scheme)
		if err != nil {
			return nil, err
		}
		return kr.Get(strings.ToLower(key))
	}

	priv, err := common.HexToBytes(key)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}
	return keyring.NewKeypairFromPrivateKey(priv, scheme)
}

// parseAccount decodes a 0x hex or SS58 address into an account id.
func parseAccount(address string) ([]byte, error) {
	if strings.HasPrefix(address, "0x") {
		return common.HexToBytes(address)
	}
	id, _, err := ss58.Decode(address)
	return id, err
}

// destination returns the address value of the account: the account
// itself for 20-byte accounts, the Id variant of a MultiAddress otherwise.
func destination(id []byte) any {
	if len(id) == 20 {
		return id
	}
	return codec.Variant{Name: "Id", Value: id}
}

// queryParam converts a command line storage key parameter: SS58
// addresses become account ids, other strings are passed as is since
// hex and decimal strings are accepted by the codec.
func queryParam(arg string) any {
	if !strings.HasPrefix(arg, "0x") {
		if id, _, err := ss58.Decode(arg); err == nil {
			return id
		}
	}
	return arg
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func optionalHash(s string) (*common.Hash, error) {
	if s == "" {
		return nil, nil //nolint:nilnil
	}
	hash, err := common.HexToHash(s)
	if err != nil {
		return nil, fmt.Errorf("decoding block hash: %w", err)
	}
	return &hash, nil
}
