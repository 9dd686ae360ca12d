// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"math/big"
	"time"

	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/metadata/metadatatest"
)

// Option is a functional option for the development node.
type Option func(s *settings)

type settings struct {
	accounts           metadatatest.AccountKind
	metadataVersion    uint8
	specVersion        uint32
	transactionVersion uint32
	existentialDeposit uint64
	endowment          *big.Int
	fee                *big.Int
	finalityLag        uint64
	blockTime          time.Duration
	genesisTime        time.Time
}

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

func (s *settings) setDefaults() {
	if s.metadataVersion == 0 {
		s.metadataVersion = metadata.V14
	}

	if s.specVersion == 0 {
		const defaultSpecVersion = 2800
		s.specVersion = defaultSpecVersion
	}

	if s.transactionVersion == 0 {
		const defaultTransactionVersion = 2
		s.transactionVersion = defaultTransactionVersion
	}

	if s.endowment == nil {
		s.endowment = new(big.Int).Mul(big.NewInt(1_000_000), unit)
	}

	if s.fee == nil {
		s.fee = new(big.Int).Div(unit, big.NewInt(1000))
	}

	if s.blockTime == 0 {
		const defaultBlockTime = 12 * time.Second
		s.blockTime = defaultBlockTime
	}

	if s.genesisTime.IsZero() {
		s.genesisTime = time.Now()
	}
}

// Accounts selects Ethereum style or Substrate style accounts.
// The default is Ethereum style, as on Moonbeam.
func Accounts(kind metadatatest.AccountKind) Option {
	return func(s *settings) {
		s.accounts = kind
	}
}

// MetadataVersion sets the metadata version served, 14 by default.
func MetadataVersion(version uint8) Option {
	return func(s *settings) {
		s.metadataVersion = version
	}
}

// SpecVersion sets the runtime spec version, 2800 by default.
func SpecVersion(version uint32) Option {
	return func(s *settings) {
		s.specVersion = version
	}
}

// ExistentialDeposit sets the Balances.ExistentialDeposit constant.
func ExistentialDeposit(amount uint64) Option {
	return func(s *settings) {
		s.existentialDeposit = amount
	}
}

// Endowment sets the genesis free balance of each development account.
// The default is one million units of 18 decimals.
func Endowment(amount *big.Int) Option {
	return func(s *settings) {
		s.endowment = amount
	}
}

// Fee sets the fee charged for every signed extrinsic, tip excluded.
// The default is a thousandth of a unit.
func Fee(amount *big.Int) Option {
	return func(s *settings) {
		s.fee = amount
	}
}

// FinalityLag sets how many blocks finality trails the best block.
// The default of zero finalizes every block as soon as it is sealed.
func FinalityLag(blocks uint64) Option {
	return func(s *settings) {
		s.finalityLag = blocks
	}
}

// BlockTime sets the timestamp increment between blocks, 12 seconds by default.
func BlockTime(d time.Duration) Option {
	return func(s *settings) {
		s.blockTime = d
	}
}

// GenesisTime sets the timestamp of block zero, the construction time by default.
func GenesisTime(t time.Time) Option {
	return func(s *settings) {
		s.genesisTime = t
	}
}
