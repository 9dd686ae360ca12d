// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"fmt"
	"math/big"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/extrinsic"
	"github.com/gorilla/rpc/v2/json2"
)

// Transaction pool error codes and messages, as returned by Substrate nodes.
const (
	codeInvalidTransaction = 1010
	codeUnknownTransaction = 1011
	codeVerification       = 1002

	msgInvalidTransaction = "Invalid Transaction"
	msgUnknownTransaction = "Unknown Transaction"
	msgVerification       = "Verification Error"
)

func invalidTransaction(reason string) *json2.Error {
	return &json2.Error{Code: codeInvalidTransaction, Message: msgInvalidTransaction, Data: reason}
}

// Module error indices of the runtime.
const (
	systemIndex   uint8 = 0
	balancesIndex uint8 = 10

	errCallFiltered        uint8 = 5
	errInsufficientBalance uint8 = 2
	errExistentialDeposit  uint8 = 3
	errExpendability       uint8 = 4
)

func moduleError(pallet, index uint8) codec.Variant {
	return codec.Variant{Name: "Module", Value: map[string]any{
		"index": pallet,
		"error": []byte{index, 0, 0, 0},
	}}
}

func dispatchInfo(class, pays string) map[string]any {
	return map[string]any{
		"weight":   map[string]any{"ref_time": uint64(250_000_000), "proof_size": uint64(3593)},
		"class":    class,
		"pays_fee": pays,
	}
}

func eventRecord(index uint32, pallet, name string, fields any) map[string]any {
	return map[string]any{
		"phase":  codec.Variant{Name: "ApplyExtrinsic", Value: index},
		"event":  codec.Variant{Name: pallet, Value: codec.Variant{Name: name, Value: fields}},
		"topics": []any{},
	}
}

// accountOf returns the account id of an address value: the account
// itself for Ethereum style runtimes, the Id variant of a MultiAddress.
func accountOf(address any) ([]byte, bool) {
	switch v := address.(type) {
	case []byte:
		return v, true
	case codec.Variant:
		if v.Name != "Id" {
			return nil, false
		}
		id, ok := v.Value.([]byte)
		return id, ok
	}
	return nil, false
}

// validate checks a submitted extrinsic against the best block state,
// the way the transaction pool does before accepting it.
func (n *Node) validate(ext *extrinsic.Extrinsic) error {
	if !ext.Signed() {
		return &json2.Error{
			Code:    codeUnknownTransaction,
			Message: msgUnknownTransaction,
			Data:    "Could not find an unsigned validator for the unsigned transaction",
		}
	}

	best := n.best()
	signature := ext.Signature
	options := n.signingOptions(signature.Era, best.number())
	valid, err := extrinsic.Verify(n.metadata, ext, options)
	if err != nil || !valid {
		logger.Debugf("rejecting %s signed by 0x%x: bad signature (%v)", ext.Call, signature.Signer, err)
		return invalidTransaction("Transaction has a bad signature")
	}

	st := store{metadata: n.metadata, state: best.state}
	acc, err := st.account(signature.Signer)
	if err != nil {
		return fmt.Errorf("reading signer account: %w", err)
	}
	switch {
	case signature.Nonce < uint64(acc.nonce):
		return invalidTransaction("Transaction is outdated")
	case signature.Nonce > uint64(acc.nonce):
		return invalidTransaction("Transaction will be valid in the future")
	}

	charge := new(big.Int).Add(n.settings.fee, tipOf(signature))
	if acc.free.Cmp(charge) < 0 {
		return invalidTransaction("Inability to pay some fees (e.g. account balance too low)")
	}
	return nil
}

// signingOptions returns the chain values an extrinsic signed with the
// era must have signed when checked at the best block.
func (n *Node) signingOptions(era extrinsic.Era, best uint64) extrinsic.Options {
	options := extrinsic.Options{
		SpecVersion:        n.settings.specVersion,
		TransactionVersion: n.settings.transactionVersion,
		GenesisHash:        n.blocks[0].hash,
	}
	if !era.IsImmortal() {
		options.BlockHash = n.blocks[era.Birth(best)].hash
	}
	return options
}

func tipOf(signature *extrinsic.SignatureBlock) *big.Int {
	if signature.Tip == nil {
		return new(big.Int)
	}
	return signature.Tip
}

// apply executes the extrinsic at the given index of the block being
// sealed and returns its event records.
func (n *Node) apply(st store, index uint32, ext *extrinsic.Extrinsic) ([]any, error) {
	if !ext.Signed() {
		return n.applyInherent(st, index, ext.Call)
	}

	who := ext.Signature.Signer
	acc, err := st.account(who)
	if err != nil {
		return nil, err
	}
	tip := tipOf(ext.Signature)
	charge := new(big.Int).Add(n.settings.fee, tip)
	acc.free = new(big.Int).Sub(acc.free, charge)
	acc.nonce++
	err = st.putAccount(who, acc)
	if err != nil {
		return nil, err
	}

	records := []any{
		eventRecord(index, "Balances", "Withdraw", map[string]any{"who": who, "amount": charge}),
	}
	events, dispatchErr, err := n.dispatch(st, who, ext.Call)
	if err != nil {
		return nil, err
	}
	if dispatchErr == nil {
		for _, event := range events {
			records = append(records, eventRecord(index, event.pallet, event.name, event.fields))
		}
	}
	records = append(records, eventRecord(index, "TransactionPayment", "TransactionFeePaid", map[string]any{
		"who":        who,
		"actual_fee": n.settings.fee,
		"tip":        tip,
	}))

	info := dispatchInfo("Normal", "Yes")
	if dispatchErr != nil {
		logger.Debugf("%s of 0x%x failed: %v", ext.Call, who, dispatchErr)
		return append(records, eventRecord(index, "System", "ExtrinsicFailed", map[string]any{
			"dispatch_error": dispatchErr,
			"dispatch_info":  info,
		})), nil
	}
	return append(records, eventRecord(index, "System", "ExtrinsicSuccess", map[string]any{
		"dispatch_info": info,
	})), nil
}

func (n *Node) applyInherent(st store, index uint32, call extrinsic.Call) ([]any, error) {
	if call.Pallet != "Timestamp" || call.Function != "set" {
		return nil, fmt.Errorf("unexpected inherent %s", call)
	}
	err := st.write(call.Params["now"], "Timestamp", "Now")
	if err != nil {
		return nil, err
	}
	return []any{eventRecord(index, "System", "ExtrinsicSuccess", map[string]any{
		"dispatch_info": dispatchInfo("Mandatory", "No"),
	})}, nil
}

type event struct {
	pallet, name string
	fields any
}

// dispatch executes the call for the origin. A dispatch error reverts
// nothing but the call itself, the fee stays charged.
func (n *Node) dispatch(st store, who []byte, call extrinsic.Call) (
	events []event, dispatchErr any, err error) {
	switch call.String() {
	case "System.remark":
		return nil, nil, nil
	case "System.remark_with_event":
		remark, _ := call.Params["remark"].([]byte)
		return []event{{"System", "Remarked", map[string]any{
			"sender": who,
			"hash":   common.Blake2b256(remark),
		}}}, nil, nil
	case "Balances.transfer_allow_death", "Balances.transfer_keep_alive":
		dest, ok := accountOf(call.Params["dest"])
		if !ok {
			return nil, "CannotLookup", nil
		}
		value, ok := call.Params["value"].(*big.Int)
		if !ok {
			return nil, nil, fmt.Errorf("transfer value is %T", call.Params["value"])
		}
		return n.transfer(st, who, dest, value, call.Function == "transfer_keep_alive")
	case "Balances.transfer_all":
		dest, ok := accountOf(call.Params["dest"])
		if !ok {
			return nil, "CannotLookup", nil
		}
		acc, err := st.account(who)
		if err != nil {
			return nil, nil, err
		}
		value := new(big.Int).Set(acc.free)
		keepAlive, _ := call.Params["keep_alive"].(bool)
		if keepAlive {
			value.Sub(value, new(big.Int).SetUint64(n.settings.existentialDeposit))
		}
		return n.transfer(st, who, dest, value, keepAlive)
	case "Balances.force_transfer":
		return nil, "BadOrigin", nil
	default:
		return nil, moduleError(systemIndex, errCallFiltered), nil
	}
}

func (n *Node) transfer(st store, from, to []byte, value *big.Int, keepAlive bool) (
	events []event, dispatchErr any, err error) {
	sender, err := st.account(from)
	if err != nil {
		return nil, nil, err
	}
	existentialDeposit := new(big.Int).SetUint64(n.settings.existentialDeposit)
	remaining := new(big.Int).Sub(sender.free, value)
	switch {
	case value.Sign() < 0 || remaining.Sign() < 0:
		return nil, moduleError(balancesIndex, errInsufficientBalance), nil
	case keepAlive && remaining.Cmp(existentialDeposit) < 0:
		return nil, moduleError(balancesIndex, errExpendability), nil
	}

	exists, err := st.exists("System", "Account", to)
	if err != nil {
		return nil, nil, err
	}
	if !exists && value.Cmp(existentialDeposit) < 0 {
		return nil, moduleError(balancesIndex, errExistentialDeposit), nil
	}

	sender.free = remaining
	err = st.putAccount(from, sender)
	if err != nil {
		return nil, nil, err
	}

	receiver := newAccount(value)
	if exists {
		receiver, err = st.account(to)
		if err != nil {
			return nil, nil, err
		}
		receiver.free = new(big.Int).Add(receiver.free, value)
	} else {
		events = append(events,
			event{"System", "NewAccount", map[string]any{"account": to}},
			event{"Balances", "Endowed", map[string]any{"account": to, "free_balance": value}},
		)
	}
	err = st.putAccount(to, receiver)
	if err != nil {
		return nil, nil, err
	}

	events = append(events, event{"Balances", "Transfer", map[string]any{
		"from": from, "to": to, "amount": value,
	}})
	return events, nil, nil
}
