// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/ChainSafe/subclient/client"
	"github.com/ChainSafe/subclient/config"
	"github.com/ChainSafe/subclient/lib/author"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/extrinsic"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/rpc"
)

func constantsAction(ctx *cli.Context) error {
	return withClient(ctx, func(_ context.Context, c *client.Client) error {
		w := tabwriter.NewWriter(ctx.App.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PALLET\tNAME\tTYPE")
		for _, info := range c.GetMetadataConstants() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", info.Pallet, info.Constant.Name, info.TypeName)
		}
		return w.Flush()
	})
}

func constantAction(ctx *cli.Context) error {
	pallet, err := argument(ctx, 0, "pallet")
	if err != nil {
		return err
	}
	name, err := argument(ctx, 1, "name")
	if err != nil {
		return err
	}

	return withClient(ctx, func(_ context.Context, c *client.Client) error {
		value, err := c.GetConstant(pallet, name)
		if err != nil {
			return err
		}
		return printJSON(ctx.App.Writer, value)
	})
}

func storageFunctionsAction(ctx *cli.Context) error {
	return withClient(ctx, func(_ context.Context, c *client.Client) error {
		w := tabwriter.NewWriter(ctx.App.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PALLET\tNAME\tKEYS\tMODIFIER")
		for _, fn := range c.GetMetadataStorageFunctions() {
			modifier := "optional"
			if fn.Entry.Modifier == metadata.Default {
				modifier = "default"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", fn.Pallet, fn.Entry.Name, len(fn.Entry.Type.Hashers), modifier)
		}
		return w.Flush()
	})
}

func queryAction(ctx *cli.Context) error {
	pallet, err := argument(ctx, 0, "pallet")
	if err != nil {
		return err
	}
	item, err := argument(ctx, 1, "item")
	if err != nil {
		return err
	}
	at, err := optionalHash(ctx.String(AtFlag.Name))
	if err != nil {
		return err
	}

	params := make([]any, 0, ctx.NArg()-2)
	for _, arg := range ctx.Args()[2:] {
		params = append(params, queryParam(arg))
	}

	return withClient(ctx, func(runCtx context.Context, c *client.Client) error {
		result, err := c.QueryAt(runCtx, at, pallet, item, params...)
		if err != nil {
			return err
		}
		return printJSON(ctx.App.Writer, map[string]any{
			"key":    []byte(result.Key),
			"exists": result.Exists,
			"value":  result.Value,
		})
	})
}

func blockAction(ctx *cli.Context) error {
	hash, err := optionalHash(ctx.Args().First())
	if err != nil {
		return err
	}

	return withClient(ctx, func(runCtx context.Context, c *client.Client) error {
		block, err := c.GetBlock(runCtx, hash)
		if err != nil {
			return err
		}

		extrinsics := make([]any, len(block.Extrinsics))
		for i, e := range block.Extrinsics {
			extrinsics[i] = extrinsicJSON(c, e)
		}
		return printJSON(ctx.App.Writer, map[string]any{
			"number":     uint64(block.Number),
			"hash":       block.Hash.String(),
			"parentHash": block.ParentHash.String(),
			"extrinsics": extrinsics,
		})
	})
}

func extrinsicJSON(c *client.Client, e *extrinsic.Extrinsic) map[string]any {
	value := map[string]any{
		"hash":   e.Hash().String(),
		"signed": e.Signed(),
		"call":   e.Call.String(),
		"params": e.Call.Params,
	}
	if e.Signed() {
		signer, err := c.Address(e.Signature.Signer)
		if err != nil {
			signer = common.BytesToHex(e.Signature.Signer)
		}
		value["signer"] = signer
		value["nonce"] = e.Signature.Nonce
		value["era"] = e.Signature.Era.String()
	}
	return value
}

func headerAction(ctx *cli.Context) error {
	hash, err := optionalHash(ctx.Args().First())
	if err != nil {
		return err
	}

	return withClient(ctx, func(runCtx context.Context, c *client.Client) error {
		header, err := c.GetBlockHeader(runCtx, hash, ctx.Bool(FinalizedFlag.Name))
		if err != nil {
			return err
		}
		return printJSON(ctx.App.Writer, map[string]any{
			"number":         uint64(header.Number),
			"hash":           header.Hash.String(),
			"parentHash":     header.ParentHash.String(),
			"stateRoot":      header.StateRoot.String(),
			"extrinsicsRoot": header.ExtrinsicsRoot.String(),
		})
	})
}

// signOptions reads the --nonce and --tip flags.
func signOptions(ctx *cli.Context) (o client.SignOptions, err error) {
	if nonce := ctx.Int64(NonceFlag.Name); nonce >= 0 {
		n := uint64(nonce)
		o.Nonce = &n
	}
	if tip := ctx.String(TipFlag.Name); tip != "" {
		o.Tip, err = parseAmount(tip)
	}
	return o, err
}

// transferArgs reads the <dest> <value> arguments.
func transferArgs(ctx *cli.Context) (dest []byte, value *big.Int, err error) {
	address, err := argument(ctx, 0, "dest")
	if err != nil {
		return nil, nil, err
	}
	amount, err := argument(ctx, 1, "value")
	if err != nil {
		return nil, nil, err
	}
	dest, err = parseAccount(address)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding destination: %w", err)
	}
	value, err = parseAmount(amount)
	return dest, value, err
}

func transferCall(c *client.Client, dest []byte, value *big.Int) (extrinsic.Call, error) {
	return c.ComposeCall("Balances", "transfer_allow_death", map[string]any{
		"dest":  destination(dest),
		"value": value,
	})
}

func transferAction(ctx *cli.Context) error {
	dest, value, err := transferArgs(ctx)
	if err != nil {
		return err
	}
	o, err := signOptions(ctx)
	if err != nil {
		return err
	}
	kp, err := readKeypair(ctx)
	if err != nil {
		return err
	}

	return withClient(ctx, func(runCtx context.Context, c *client.Client) error {
		call, err := transferCall(c, dest, value)
		if err != nil {
			return err
		}
		e, err := c.SignCall(runCtx, call, kp, o)
		if err != nil {
			return err
		}
		return submit(runCtx, ctx, c, e)
	})
}

func payloadAction(ctx *cli.Context) error {
	dest, value, err := transferArgs(ctx)
	if err != nil {
		return err
	}
	o, err := signOptions(ctx)
	if err != nil {
		return err
	}
	signer, err := parseAccount(ctx.String(SignerFlag.Name))
	if err != nil {
		return fmt.Errorf("decoding signer: %w", err)
	}

	return withClient(ctx, func(runCtx context.Context, c *client.Client) error {
		call, err := transferCall(c, dest, value)
		if err != nil {
			return err
		}
		options, err := c.SigningOptions(runCtx, signer, o)
		if err != nil {
			return err
		}
		payload, err := c.GenerateSignaturePayload(call, options)
		if err != nil {
			return err
		}
		return printJSON(ctx.App.Writer, map[string]any{
			"call":      call.Encode(),
			"payload":   payload,
			"nonce":     options.Nonce,
			"tip":       options.Tip,
			"era":       options.Era.String(),
			"blockHash": options.BlockHash.String(),
		})
	})
}

func submitAction(ctx *cli.Context) error {
	encoded, err := argument(ctx, 0, "hex")
	if err != nil {
		return err
	}
	raw, err := common.HexToBytes(encoded)
	if err != nil {
		return fmt.Errorf("decoding extrinsic: %w", err)
	}

	return withClient(ctx, func(runCtx context.Context, c *client.Client) error {
		e, err := extrinsic.Decode(c.Metadata(), raw)
		if err != nil {
			return err
		}
		return submit(runCtx, ctx, c, e)
	})
}

// submit submits the extrinsic and prints the receipt with the events
// of the extrinsic once included.
func submit(runCtx context.Context, ctx *cli.Context, c *client.Client, e *extrinsic.Extrinsic) error {
	cfg := configOf(ctx).Author
	waitFinalized := ctx.Bool(WaitFinalizedFlag.Name) || cfg.WaitForFinalization
	waitIncluded := ctx.Bool(WaitFlag.Name) || cfg.WaitForInclusion || waitFinalized

	receipt, err := c.SubmitExtrinsic(runCtx, e, waitIncluded, waitFinalized)
	if errors.Is(err, author.ErrFinalizationTimeout) {
		logger.Warnf("%s", err)
	} else if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, receipt)
	if !receipt.Included() {
		return nil
	}

	events, err := receipt.Events(runCtx)
	if err != nil {
		return err
	}
	for _, event := range events {
		fmt.Fprintf(ctx.App.Writer, "  %s.%s\n", event.Pallet, event.Name)
	}

	success, err := receipt.IsSuccess(runCtx)
	if err != nil {
		return err
	}
	if !success {
		failure, _ := receipt.Failure(runCtx)
		return fmt.Errorf("extrinsic failed: %v", jsonValue(failure))
	}
	return nil
}

func exportConfigAction(ctx *cli.Context) error {
	path, err := argument(ctx, 0, "path")
	if err != nil {
		return err
	}
	if err := config.Export(configOf(ctx), path); err != nil {
		return err
	}
	logger.Infof("configuration written to %s", path)
	return nil
}

func metricsAction(ctx *cli.Context) error {
	address := ctx.String(MetricsAddressFlag.Name)
	if address == "" {
		address = configOf(ctx).Metrics.Address
	}
	if address == "" {
		return errors.New("no metrics address configured")
	}

	return runClient(ctx, address, func(runCtx context.Context, c *client.Client) error {
		sub, err := c.RPC().SubscribeNewHeads(runCtx)
		if err != nil {
			return err
		}
		defer func() { _ = sub.Unsubscribe(context.Background()) }()

		for {
			var header rpc.Header
			err := sub.Next(runCtx, &header)
			if errors.Is(err, context.Canceled) {
				return nil
			} else if err != nil {
				return err
			}
			logger.Infof("new head #%d %s", header.Number, header.Hash())
		}
	})
}
