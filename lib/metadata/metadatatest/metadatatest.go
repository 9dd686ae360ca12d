// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package metadatatest builds runtime metadata blobs for tests. The
// runtime mimics a parachain with System, Timestamp, Balances,
// TransactionPayment and ParachainStaking pallets, either with Ethereum
// style accounts (AccountId20 and EthereumSignature) or Substrate style
// accounts (MultiAddress and MultiSignature).
package metadatatest

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/pkg/scale"
	"github.com/stretchr/testify/require"
)

// AccountKind selects the account, address and signature types.
type AccountKind uint8

const (
	// Ethereum uses AccountId20 accounts and addresses with EthereumSignature.
	Ethereum AccountKind = iota
	// Substrate uses AccountId32 accounts, MultiAddress and MultiSignature.
	Substrate
)

// Pallet indices of the test runtime.
const (
	SystemIndex             uint8 = 0
	TimestampIndex          uint8 = 3
	BalancesIndex           uint8 = 10
	TransactionPaymentIndex uint8 = 11
	ParachainStakingIndex   uint8 = 20
)

// DefaultSignedExtensions is the signed extension list of the test runtime.
var DefaultSignedExtensions = []string{
	"CheckNonZeroSender",
	"CheckSpecVersion",
	"CheckTxVersion",
	"CheckGenesis",
	"CheckMortality",
	"CheckNonce",
	"CheckWeight",
	"ChargeTransactionPayment",
}

// CustomExtension is a signed extension unknown to the extrinsic builder.
type CustomExtension struct {
	Name string
	// HasData gives the extension an u32 extra value.
	HasData bool
}

// Options configures the generated metadata.
type Options struct {
	// Version is 14 or 15, it defaults to 14.
	Version  uint8
	Accounts AccountKind
	// ExistentialDeposit is the Balances.ExistentialDeposit constant.
	ExistentialDeposit uint64
	// SignedExtensions overrides DefaultSignedExtensions when not nil.
	SignedExtensions []string
	CustomExtensions []CustomExtension
}

// Build returns the metadata blob, "meta" ‖ version ‖ body.
func Build(options Options) ([]byte, error) {
	if options.Version == 0 {
		options.Version = metadata.V14
	}
	if options.SignedExtensions == nil {
		options.SignedExtensions = DefaultSignedExtensions
	}

	r := newRuntime(options)

	var body []byte
	var err error
	switch options.Version {
	case metadata.V14:
		body, err = scale.Marshal(r.v14())
	case metadata.V15:
		body, err = scale.Marshal(r.v15())
	default:
		return nil, fmt.Errorf("unsupported version %d", options.Version)
	}
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, len(metadata.Magic)+1+len(body))
	blob = append(blob, metadata.Magic[:]...)
	blob = append(blob, options.Version)
	return append(blob, body...), nil
}

// MustBuild is Build panicking on error.
func MustBuild(options Options) []byte {
	blob, err := Build(options)
	if err != nil {
		panic(err)
	}
	return blob
}

// New returns the parsed metadata for the options.
func New(t testing.TB, options Options) *metadata.Metadata {
	t.Helper()

	blob, err := Build(options)
	require.NoError(t, err)
	m, err := metadata.Load(blob)
	require.NoError(t, err)
	return m
}

type runtime struct {
	options Options
	b       *typeBuilder

	u8, u16, u32, u64, u128, boolean, str codec.TypeID
	bytes, h256, account, address        codec.TypeID
	signature, compactU128, accountInfo  codec.TypeID
	accountData, eventRecords, bonds     codec.TypeID
	atStakeKey                           codec.TypeID
	call, event, runtimeError            codec.TypeID
	systemCall, balancesCall             codec.TypeID
	timestampCall, stakingCall           codec.TypeID
	systemEvent, balancesEvent, feeEvent codec.TypeID
	systemError, balancesError           codec.TypeID
	extensions                           []metadata.SignedExtension
	extra, unchecked, runtimeType        codec.TypeID
}

func newRuntime(options Options) *runtime {
	r := &runtime{options: options, b: newTypeBuilder()}
	b := r.b

	r.u8 = b.prim(codec.U8)
	r.u16 = b.prim(codec.U16)
	r.u32 = b.prim(codec.U32)
	r.u64 = b.prim(codec.U64)
	r.u128 = b.prim(codec.U128)
	r.boolean = b.prim(codec.Bool)
	r.str = b.prim(codec.Str)
	r.bytes = b.seq(r.u8)
	bytes32 := b.array(32, r.u8)
	r.h256 = b.composite("primitive_types::H256", unnamed(bytes32))
	r.compactU128 = b.compact(r.u128)
	compactU32 := b.compact(r.u32)
	compactU64 := b.compact(r.u64)

	r.accountTypes(bytes32, compactU32)

	r.accountData = b.composite("pallet_balances::types::AccountData",
		named("free", r.u128, "Balance"),
		named("reserved", r.u128, "Balance"),
		named("frozen", r.u128, "Balance"),
		named("flags", r.u128, "ExtraFlags"),
	)
	r.accountInfo = b.composite("frame_system::AccountInfo",
		named("nonce", r.u32, "Nonce"),
		named("consumers", r.u32, "RefCount"),
		named("providers", r.u32, "RefCount"),
		named("sufficients", r.u32, "RefCount"),
		named("data", r.accountData, "AccountData"),
	)
	bond := b.composite("pallet_parachain_staking::types::Bond",
		named("owner", r.account, "AccountId"),
		named("amount", r.u128, "Balance"),
	)
	r.bonds = b.seq(bond)
	r.atStakeKey = b.tuple(r.u32, r.account)

	r.calls(compactU64)
	r.events(compactU64)
	r.errors()
	r.signedExtensions(compactU32)

	r.unchecked = b.add(codec.Type{
		Path: splitPath("sp_runtime::generic::unchecked_extrinsic::UncheckedExtrinsic"),
		Params: []codec.TypeParam{
			{Name: "Address", Type: &r.address},
			{Name: "Call", Type: &r.call},
			{Name: "Signature", Type: &r.signature},
			{Name: "Extra", Type: &r.extra},
		},
		Def: codec.TypeDef{Kind: codec.KindComposite, Fields: []codec.Field{unnamed(r.bytes)}},
	})
	r.runtimeType = b.composite("moonbase_runtime::Runtime")
	return r
}

func (r *runtime) accountTypes(bytes32, compactU32 codec.TypeID) {
	b := r.b
	bytes65 := b.array(65, r.u8)

	if r.options.Accounts == Ethereum {
		bytes20 := b.array(20, r.u8)
		r.account = b.composite("account::AccountId20", unnamed(bytes20))
		r.address = r.account
		ecdsa := b.composite("sp_core::ecdsa::Signature", unnamed(bytes65))
		r.signature = b.composite("account::EthereumSignature", unnamed(ecdsa))
		return
	}

	bytes20 := b.array(20, r.u8)
	bytes64 := b.array(64, r.u8)
	unit := b.tuple()
	r.account = b.composite("sp_core::crypto::AccountId32", unnamed(bytes32))
	r.address = b.add(codec.Type{
		Path: splitPath("sp_runtime::multiaddress::MultiAddress"),
		Params: []codec.TypeParam{
			{Name: "AccountId", Type: &r.account},
			{Name: "AccountIndex", Type: &unit},
		},
		Def: codec.TypeDef{Kind: codec.KindVariant, Variants: []codec.VariantDef{
			variant("Id", 0, unnamed(r.account)),
			variant("Index", 1, unnamed(compactU32)),
			variant("Raw", 2, unnamed(r.bytes)),
			variant("Address32", 3, unnamed(bytes32)),
			variant("Address20", 4, unnamed(bytes20)),
		}},
	})
	ed25519 := b.composite("sp_core::ed25519::Signature", unnamed(bytes64))
	sr25519 := b.composite("sp_core::sr25519::Signature", unnamed(bytes64))
	ecdsa := b.composite("sp_core::ecdsa::Signature", unnamed(bytes65))
	r.signature = b.variant("sp_runtime::MultiSignature",
		variant("Ed25519", 0, unnamed(ed25519)),
		variant("Sr25519", 1, unnamed(sr25519)),
		variant("Ecdsa", 2, unnamed(ecdsa)),
	)
}

func (r *runtime) calls(compactU64 codec.TypeID) {
	b := r.b
	lookup := "AccountIdLookupOf<T>"
	if r.options.Accounts == Ethereum {
		lookup = "T::AccountId"
	}

	r.systemCall = b.variant("frame_system::pallet::Call",
		variant("remark", 0, named("remark", r.bytes, "Vec<u8>")),
		variant("remark_with_event", 7, named("remark", r.bytes, "Vec<u8>")),
	)
	r.timestampCall = b.variant("pallet_timestamp::pallet::Call",
		variant("set", 0, named("now", compactU64, "T::Moment")),
	)
	r.balancesCall = b.variant("pallet_balances::pallet::Call",
		variant("transfer_allow_death", 0,
			named("dest", r.address, lookup),
			named("value", r.compactU128, "T::Balance")),
		variant("force_transfer", 2,
			named("source", r.address, lookup),
			named("dest", r.address, lookup),
			named("value", r.compactU128, "T::Balance")),
		variant("transfer_keep_alive", 3,
			named("dest", r.address, lookup),
			named("value", r.compactU128, "T::Balance")),
		variant("transfer_all", 4,
			named("dest", r.address, lookup),
			named("keep_alive", r.boolean, "bool")),
	)
	r.stakingCall = b.variant("pallet_parachain_staking::pallet::Call",
		variant("join_candidates", 8,
			named("bond", r.u128, "BalanceOf<T>"),
			named("candidate_count", r.u32, "u32")),
		variant("go_offline", 11),
	)
	r.call = b.variant("moonbase_runtime::RuntimeCall",
		variant("System", SystemIndex, unnamed(r.systemCall)),
		variant("Timestamp", TimestampIndex, unnamed(r.timestampCall)),
		variant("Balances", BalancesIndex, unnamed(r.balancesCall)),
		variant("ParachainStaking", ParachainStakingIndex, unnamed(r.stakingCall)),
	)
}

func (r *runtime) events(compactU64 codec.TypeID) {
	b := r.b

	weight := b.composite("sp_weights::weight_v2::Weight",
		named("ref_time", compactU64, "u64"),
		named("proof_size", compactU64, "u64"),
	)
	class := b.variant("frame_support::dispatch::DispatchClass",
		variant("Normal", 0), variant("Operational", 1), variant("Mandatory", 2))
	pays := b.variant("frame_support::dispatch::Pays", variant("Yes", 0), variant("No", 1))
	info := b.composite("frame_support::dispatch::DispatchInfo",
		named("weight", weight, "Weight"),
		named("class", class, "DispatchClass"),
		named("pays_fee", pays, "Pays"),
	)
	bytes4 := b.array(4, r.u8)
	moduleError := b.composite("sp_runtime::ModuleError",
		named("index", r.u8, "u8"),
		named("error", bytes4, "[u8; MAX_MODULE_ERROR_ENCODED_SIZE]"),
	)
	dispatchError := b.variant("sp_runtime::DispatchError",
		variant("Other", 0),
		variant("CannotLookup", 1),
		variant("BadOrigin", 2),
		variant("Module", 3, unnamed(moduleError)),
		variant("ConsumerRemaining", 4),
		variant("NoProviders", 5),
		variant("TooManyConsumers", 6),
	)

	r.systemEvent = b.variant("frame_system::pallet::Event",
		variant("ExtrinsicSuccess", 0, named("dispatch_info", info, "DispatchInfo")),
		variant("ExtrinsicFailed", 1,
			named("dispatch_error", dispatchError, "DispatchError"),
			named("dispatch_info", info, "DispatchInfo")),
		variant("CodeUpdated", 2),
		variant("NewAccount", 3, named("account", r.account, "T::AccountId")),
		variant("KilledAccount", 4, named("account", r.account, "T::AccountId")),
		variant("Remarked", 5,
			named("sender", r.account, "T::AccountId"),
			named("hash", r.h256, "T::Hash")),
	)
	r.balancesEvent = b.variant("pallet_balances::pallet::Event",
		variant("Endowed", 0,
			named("account", r.account, "T::AccountId"),
			named("free_balance", r.u128, "T::Balance")),
		variant("Transfer", 2,
			named("from", r.account, "T::AccountId"),
			named("to", r.account, "T::AccountId"),
			named("amount", r.u128, "T::Balance")),
		variant("Deposit", 7,
			named("who", r.account, "T::AccountId"),
			named("amount", r.u128, "T::Balance")),
		variant("Withdraw", 8,
			named("who", r.account, "T::AccountId"),
			named("amount", r.u128, "T::Balance")),
	)
	r.feeEvent = b.variant("pallet_transaction_payment::pallet::Event",
		variant("TransactionFeePaid", 0,
			named("who", r.account, "T::AccountId"),
			named("actual_fee", r.u128, "BalanceOf<T>"),
			named("tip", r.u128, "BalanceOf<T>")),
	)
	r.event = b.variant("moonbase_runtime::RuntimeEvent",
		variant("System", SystemIndex, unnamed(r.systemEvent)),
		variant("Balances", BalancesIndex, unnamed(r.balancesEvent)),
		variant("TransactionPayment", TransactionPaymentIndex, unnamed(r.feeEvent)),
	)

	phase := b.variant("frame_system::Phase",
		variant("ApplyExtrinsic", 0, unnamed(r.u32)),
		variant("Finalization", 1),
		variant("Initialization", 2),
	)
	record := b.composite("frame_system::EventRecord",
		named("phase", phase, "Phase"),
		named("event", r.event, "E"),
		named("topics", b.seq(r.h256), "Vec<T>"),
	)
	r.eventRecords = b.seq(record)
}

func (r *runtime) errors() {
	b := r.b
	r.systemError = b.variant("frame_system::pallet::Error",
		variant("InvalidSpecName", 0),
		variant("SpecVersionNeedsToIncrease", 1),
		variant("FailedToExtractRuntimeVersion", 2),
		variant("NonDefaultComposite", 3),
		variant("NonZeroRefCount", 4),
		variant("CallFiltered", 5),
	)
	r.balancesError = b.variant("pallet_balances::pallet::Error",
		variant("VestingBalance", 0),
		variant("LiquidityRestrictions", 1),
		variant("InsufficientBalance", 2),
		variant("ExistentialDeposit", 3),
		variant("Expendability", 4),
		variant("ExistingVestingSchedule", 5),
		variant("DeadAccount", 6),
	)
	r.runtimeError = b.variant("moonbase_runtime::RuntimeError",
		variant("System", SystemIndex, unnamed(r.systemError)),
		variant("Balances", BalancesIndex, unnamed(r.balancesError)),
	)
}

// eraType builds the 256 variant mortality enum.
func (r *runtime) eraType() codec.TypeID {
	variants := make([]codec.VariantDef, 256)
	variants[0] = variant("Immortal", 0)
	for i := 1; i < 256; i++ {
		variants[i] = variant(fmt.Sprintf("Mortal%d", i), uint8(i), unnamed(r.u8))
	}
	return r.b.variant("sp_runtime::generic::era::Era", variants...)
}

func (r *runtime) signedExtensions(compactU32 codec.TypeID) {
	b := r.b
	unit := b.tuple()
	empty := func(name string) codec.TypeID {
		return b.composite("frame_system::extensions::" + name)
	}

	var era *codec.TypeID
	var extraTypes []codec.TypeID
	addExtension := func(name string, ty, additional codec.TypeID) {
		r.extensions = append(r.extensions, metadata.SignedExtension{
			Identifier: name, Type: ty, AdditionalSigned: additional,
		})
		extraTypes = append(extraTypes, ty)
	}

	for _, name := range r.options.SignedExtensions {
		switch name {
		case "CheckNonZeroSender", "CheckWeight":
			addExtension(name, empty(name), unit)
		case "CheckSpecVersion", "CheckTxVersion":
			addExtension(name, empty(name), r.u32)
		case "CheckGenesis":
			addExtension(name, empty(name), r.h256)
		case "CheckMortality", "CheckEra":
			if era == nil {
				id := r.eraType()
				era = &id
			}
			ty := b.composite("frame_system::extensions::"+name, unnamed(*era))
			addExtension(name, ty, r.h256)
		case "CheckNonce":
			addExtension(name, b.composite("frame_system::extensions::check_nonce::CheckNonce",
				unnamed(compactU32)), unit)
		case "ChargeTransactionPayment":
			addExtension(name, b.composite("pallet_transaction_payment::ChargeTransactionPayment",
				unnamed(r.compactU128)), unit)
		case "ChargeAssetTxPayment":
			addExtension(name, b.composite("pallet_asset_tx_payment::ChargeAssetTxPayment",
				named("tip", r.compactU128, "BalanceOf<T>"),
				named("asset_id", b.option(r.u32), "Option<T::AssetId>")), unit)
		case "CheckMetadataHash":
			mode := b.variant("frame_metadata_hash_extension::Mode",
				variant("Disabled", 0), variant("Enabled", 1))
			hash := b.option(b.array(32, r.u8))
			addExtension(name, b.composite("frame_metadata_hash_extension::CheckMetadataHash",
				named("mode", mode, "Mode")), hash)
		default:
			panic(fmt.Sprintf("unknown signed extension %s, use CustomExtensions", name))
		}
	}
	for _, custom := range r.options.CustomExtensions {
		ty := b.composite("custom::" + custom.Name)
		if custom.HasData {
			ty = b.composite("custom::"+custom.Name, unnamed(r.u32))
		}
		addExtension(custom.Name, ty, unit)
	}

	r.extra = b.tuple(extraTypes...)
}

func encodeConstant(value interface{}) []byte {
	encoded, err := scale.Marshal(value)
	if err != nil {
		panic(err)
	}
	return encoded
}

func u128Constant(value *big.Int) []byte {
	return scale.MustNewUint128(value).Bytes()
}

func zeros(n int) []byte { return make([]byte, n) }

type pallet struct {
	name      string
	index     uint8
	storage   *metadata.PalletStorage
	calls     *codec.TypeID
	event     *codec.TypeID
	errors    *codec.TypeID
	constants []metadata.Constant
	docs      []string
}

func plain(name string, modifier metadata.Modifier, value codec.TypeID, def []byte, docs ...string) metadata.StorageEntry {
	return metadata.StorageEntry{
		Name:     name,
		Modifier: modifier,
		Type:     metadata.StorageEntryType{Value: value},
		Default:  def,
		Docs:     docs,
	}
}

func mapEntry(name string, modifier metadata.Modifier, hashers []metadata.Hasher,
	key, value codec.TypeID, def []byte, docs ...string) metadata.StorageEntry {
	return metadata.StorageEntry{
		Name:     name,
		Modifier: modifier,
		Type:     metadata.StorageEntryType{IsMap: true, Hashers: hashers, Key: key, Value: value},
		Default:  def,
		Docs:     docs,
	}
}

func (r *runtime) pallets() []pallet {
	ss58 := uint16(1287)
	if r.options.Accounts == Substrate {
		ss58 = 42
	}
	minCandidateStake := new(big.Int).Mul(big.NewInt(1000), big.NewInt(1_000_000_000_000_000_000))
	feeMultiplier := big.NewInt(1_000_000_000_000_000_000)
	accountInfoDefault := zeros(4*4 + 4*16)

	return []pallet{
		{
			name:  "System",
			index: SystemIndex,
			storage: &metadata.PalletStorage{Prefix: "System", Entries: []metadata.StorageEntry{
				mapEntry("Account", metadata.Default, []metadata.Hasher{metadata.Blake2_128Concat},
					r.account, r.accountInfo, accountInfoDefault, " The full account information for a particular account ID."),
				plain("ExtrinsicCount", metadata.Optional, r.u32, []byte{0}, " Total extrinsics count for the current block."),
				mapEntry("BlockHash", metadata.Default, []metadata.Hasher{metadata.Twox64Concat},
					r.u32, r.h256, zeros(32), " Map of block numbers to block hashes."),
				plain("Number", metadata.Default, r.u32, zeros(4), " The current block number being processed."),
				plain("ParentHash", metadata.Default, r.h256, zeros(32), " Hash of the previous block."),
				plain("Events", metadata.Default, r.eventRecords, []byte{0}, " Events deposited for the current block."),
				plain("EventCount", metadata.Default, r.u32, zeros(4), " The number of events in the `Events<T>` list."),
			}},
			calls:  &r.systemCall,
			event:  &r.systemEvent,
			errors: &r.systemError,
			constants: []metadata.Constant{
				{Name: "BlockHashCount", Type: r.u32, Value: encodeConstant(uint32(256)),
					Docs: []string{" Maximum number of block number to block hash mappings to keep."}},
				{Name: "SS58Prefix", Type: r.u16, Value: encodeConstant(ss58),
					Docs: []string{" The designated SS58 prefix of this chain."}},
			},
			docs: []string{" The System pallet."},
		},
		{
			name:  "Timestamp",
			index: TimestampIndex,
			storage: &metadata.PalletStorage{Prefix: "Timestamp", Entries: []metadata.StorageEntry{
				plain("Now", metadata.Default, r.u64, zeros(8), " The current time for the current block."),
			}},
			calls: &r.timestampCall,
			constants: []metadata.Constant{
				{Name: "MinimumPeriod", Type: r.u64, Value: encodeConstant(uint64(6000))},
			},
		},
		{
			name:  "Balances",
			index: BalancesIndex,
			storage: &metadata.PalletStorage{Prefix: "Balances", Entries: []metadata.StorageEntry{
				plain("TotalIssuance", metadata.Default, r.u128, zeros(16), " The total units issued in the system."),
				plain("InactiveIssuance", metadata.Default, r.u128, zeros(16), " The total units of outstanding deactivated balance."),
				mapEntry("Account", metadata.Default, []metadata.Hasher{metadata.Blake2_128Concat},
					r.account, r.accountData, zeros(4*16), " The Balances pallet example of storing the balance of an account."),
			}},
			calls:  &r.balancesCall,
			event:  &r.balancesEvent,
			errors: &r.balancesError,
			constants: []metadata.Constant{
				{Name: "ExistentialDeposit", Type: r.u128,
					Value: u128Constant(new(big.Int).SetUint64(r.options.ExistentialDeposit)),
					Docs:  []string{" The minimum amount required to keep an account open."}},
				{Name: "MaxLocks", Type: r.u32, Value: encodeConstant(uint32(50))},
				{Name: "MaxReserves", Type: r.u32, Value: encodeConstant(uint32(50))},
				{Name: "MaxFreezes", Type: r.u32, Value: encodeConstant(uint32(0))},
			},
		},
		{
			name:  "TransactionPayment",
			index: TransactionPaymentIndex,
			storage: &metadata.PalletStorage{Prefix: "TransactionPayment", Entries: []metadata.StorageEntry{
				plain("NextFeeMultiplier", metadata.Default, r.u128, u128Constant(feeMultiplier)),
			}},
			event: &r.feeEvent,
			constants: []metadata.Constant{
				{Name: "OperationalFeeMultiplier", Type: r.u8, Value: encodeConstant(uint8(5))},
			},
		},
		{
			name:  "ParachainStaking",
			index: ParachainStakingIndex,
			storage: &metadata.PalletStorage{Prefix: "ParachainStaking", Entries: []metadata.StorageEntry{
				plain("TotalSelected", metadata.Default, r.u32, encodeConstant(uint32(8))),
				plain("CandidatePool", metadata.Default, r.bonds, []byte{0}, " The pool of collator candidates, each with their total backing stake."),
				mapEntry("AtStake", metadata.Optional,
					[]metadata.Hasher{metadata.Twox64Concat, metadata.Twox64Concat},
					r.atStakeKey, r.u128, []byte{0}),
			}},
			calls: &r.stakingCall,
			constants: []metadata.Constant{
				{Name: "MinCandidateStk", Type: r.u128, Value: u128Constant(minCandidateStake)},
				{Name: "MaxCandidates", Type: r.u32, Value: encodeConstant(uint32(200))},
				{Name: "RewardPaymentDelay", Type: r.u32, Value: encodeConstant(uint32(2))},
				{Name: "MinBlocksPerRound", Type: r.u32, Value: encodeConstant(uint32(10))},
				{Name: "MaxTopDelegationsPerCandidate", Type: r.u32, Value: encodeConstant(uint32(300))},
			},
		},
	}
}

func palletType(id *codec.TypeID) *metadata.PalletType {
	if id == nil {
		return nil
	}
	return &metadata.PalletType{Type: *id}
}

func (r *runtime) v14() metadata.RuntimeMetadataV14 {
	pallets := r.pallets()
	out := metadata.RuntimeMetadataV14{
		Types: r.b.types,
		Extrinsic: metadata.ExtrinsicV14{
			Type:             r.unchecked,
			Version:          4,
			SignedExtensions: r.extensions,
		},
		Type: r.runtimeType,
	}
	for _, p := range pallets {
		out.Pallets = append(out.Pallets, metadata.PalletV14{
			Name:      p.name,
			Storage:   p.storage,
			Calls:     palletType(p.calls),
			Event:     palletType(p.event),
			Constants: p.constants,
			Error:     palletType(p.errors),
			Index:     p.index,
		})
	}
	return out
}

func (r *runtime) v15() metadata.RuntimeMetadataV15 {
	pallets := r.pallets()
	out := metadata.RuntimeMetadataV15{
		Types: r.b.types,
		Extrinsic: metadata.ExtrinsicV15{
			Version:          4,
			AddressType:      r.address,
			CallType:         r.call,
			SignatureType:    r.signature,
			ExtraType:        r.extra,
			SignedExtensions: r.extensions,
		},
		Type: r.runtimeType,
		Apis: []metadata.RuntimeAPI{{
			Name: "AccountNonceApi",
			Methods: []metadata.RuntimeAPIMethod{{
				Name:   "account_nonce",
				Inputs: []metadata.RuntimeAPIParam{{Name: "account", Type: r.account}},
				Output: r.u32,
				Docs:   []string{" Get current account nonce of given `AccountId`."},
			}},
		}},
		OuterEnums: metadata.OuterEnums{
			CallType:  r.call,
			EventType: r.event,
			ErrorType: r.runtimeError,
		},
	}
	for _, p := range pallets {
		out.Pallets = append(out.Pallets, metadata.PalletV15{
			Name:      p.name,
			Storage:   p.storage,
			Calls:     palletType(p.calls),
			Event:     palletType(p.event),
			Constants: p.constants,
			Error:     palletType(p.errors),
			Index:     p.index,
			Docs:      p.docs,
		})
	}
	return out
}
