// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package devnode implements an in-process development chain served over
// JSON-RPC on HTTP and websocket. Every submitted extrinsic is validated
// the way a transaction pool does and sealed at once in a new block
// together with a timestamp inherent. The runtime follows the metadata
// of the metadatatest package and executes balance transfers and remarks.
package devnode

import (
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ChainSafe/subclient/internal/log"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/extrinsic"
	"github.com/ChainSafe/subclient/lib/keyring"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/metadata/metadatatest"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/ChainSafe/subclient/pkg/scale"
	"github.com/gorilla/mux"
	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "devnode"))

type block struct {
	header     rpc.Header
	hash       common.Hash
	extrinsics []common.Bytes
	hashes     []common.Hash
	state      state
}

func (b *block) number() uint64 { return uint64(b.header.Number) }

func (b *block) signed() *rpc.SignedBlock {
	return &rpc.SignedBlock{Block: rpc.Block{Header: b.header, Extrinsics: b.extrinsics}}
}

func (b *block) contains(hash common.Hash) bool {
	for _, h := range b.hashes {
		if h == hash {
			return true
		}
	}
	return false
}

// submission is a validated extrinsic waiting to be sealed.
type submission struct {
	extrinsic *extrinsic.Extrinsic
	raw       []byte
	hash      common.Hash
}

// Node is a development chain. It implements http.Handler, serving
// JSON-RPC POST requests and websocket upgrades on the root path.
type Node struct {
	settings  settings
	metadata  *metadata.Metadata
	keyrings  []*keyring.Keyring
	rpcServer *gorillarpc.Server
	router    *mux.Router

	mu            sync.Mutex
	blocks        []*block
	byHash        map[common.Hash]*block
	finalized     uint64
	subscriptions map[string]*subscription
	watches       map[string]*watch
	conns         map[*wsConn]struct{}
}

// New creates a node holding the genesis block, with every development
// account of the account kind endowed.
func New(options ...Option) (*Node, error) {
	var s settings
	for _, option := range options {
		option(&s)
	}
	s.setDefaults()

	raw, err := metadatatest.Build(metadatatest.Options{
		Version:            s.metadataVersion,
		Accounts:           s.accounts,
		ExistentialDeposit: s.existentialDeposit,
	})
	if err != nil {
		return nil, fmt.Errorf("building metadata: %w", err)
	}
	m, err := metadata.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	schemes := []keyring.Scheme{keyring.Ethereum}
	if s.accounts == metadatatest.Substrate {
		schemes = []keyring.Scheme{keyring.Sr25519, keyring.Ed25519}
	}
	keyrings := make([]*keyring.Keyring, len(schemes))
	for i, scheme := range schemes {
		keyrings[i], err = keyring.New(scheme)
		if err != nil {
			return nil, err
		}
	}

	n := &Node{
		settings:      s,
		metadata:      m,
		keyrings:      keyrings,
		byHash:        make(map[common.Hash]*block),
		subscriptions: make(map[string]*subscription),
		watches:       make(map[string]*watch),
		conns:         make(map[*wsConn]struct{}),
	}

	genesis, err := n.genesis()
	if err != nil {
		return nil, fmt.Errorf("building genesis: %w", err)
	}
	n.blocks = []*block{genesis}
	n.byHash[genesis.hash] = genesis

	err = n.newRouter()
	if err != nil {
		return nil, err
	}
	logger.Debugf("genesis block %s with %d keyrings", genesis.hash, len(keyrings))
	return n, nil
}

func (n *Node) genesis() (*block, error) {
	st := store{metadata: n.metadata, state: make(state)}

	candidateBond := new(big.Int).Mul(big.NewInt(1000), unit)
	issuance := new(big.Int)
	var candidates []any
	for i, kr := range n.keyrings {
		for j, kp := range kr.Keypairs() {
			err := st.putAccount(kp.AccountID(), newAccount(n.settings.endowment))
			if err != nil {
				return nil, err
			}
			issuance.Add(issuance, n.settings.endowment)
			if i == 0 && j < 2 {
				candidates = append(candidates, map[string]any{"owner": kp.AccountID(), "amount": candidateBond})
			}
		}
	}

	writes := []struct {
		value        any
		pallet, item string
	}{
		{issuance, "Balances", "TotalIssuance"},
		{candidates, "ParachainStaking", "CandidatePool"},
		{uint64(n.settings.genesisTime.UnixMilli()), "Timestamp", "Now"},
	}
	for _, w := range writes {
		err := st.write(w.value, w.pallet, w.item)
		if err != nil {
			return nil, err
		}
	}

	header := rpc.Header{
		StateRoot:      st.state.root(),
		ExtrinsicsRoot: extrinsicsRoot(nil),
		Digest:         rpc.Digest{Logs: []common.Bytes{}},
	}
	return &block{
		header:     header,
		hash:       header.Hash(),
		extrinsics: []common.Bytes{},
		state:      st.state,
	}, nil
}

// extrinsicsRoot is the blake2-256 hash of the encoded extrinsic list.
func extrinsicsRoot(extrinsics []common.Bytes) common.Hash {
	encoded := scale.CompactUint(uint64(len(extrinsics)))
	for _, ext := range extrinsics {
		encoded = append(encoded, ext...)
	}
	return common.Blake2b256(encoded)
}

// newRouter routes websocket upgrades and JSON-RPC POST requests of the
// root path.
func (n *Node) newRouter() error {
	n.rpcServer = gorillarpc.NewServer()
	n.rpcServer.RegisterCodec(newMethodCodec(), "application/json")
	services := []struct {
		name    string
		service any
	}{
		{"chain", &ChainService{node: n}},
		{"state", &StateService{node: n}},
		{"system", &SystemService{node: n}},
		{"author", &AuthorService{node: n}},
	}
	for _, s := range services {
		err := n.rpcServer.RegisterService(s.service, s.name)
		if err != nil {
			return fmt.Errorf("registering %s service: %w", s.name, err)
		}
	}

	n.router = mux.NewRouter()
	n.router.Path("/").HeadersRegexp("Upgrade", "(?i)^websocket$").HandlerFunc(n.serveWebsocket)
	n.router.Path("/").Methods(http.MethodPost).Handler(n.rpcServer)
	return nil
}

// ServeHTTP serves JSON-RPC over HTTP POST and websocket.
func (n *Node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.router.ServeHTTP(w, r)
}

// Metadata returns the runtime metadata of the chain.
func (n *Node) Metadata() *metadata.Metadata { return n.metadata }

// Keyring returns the keyring whose accounts are endowed at genesis.
// Substrate style chains also endow the ed25519 development accounts.
func (n *Node) Keyring() *keyring.Keyring { return n.keyrings[0] }

// SpecVersion returns the runtime spec version.
func (n *Node) SpecVersion() uint32 { return n.settings.specVersion }

// TransactionVersion returns the runtime transaction version.
func (n *Node) TransactionVersion() uint32 { return n.settings.transactionVersion }

// Fee returns the fee charged for each signed extrinsic.
func (n *Node) Fee() *big.Int { return new(big.Int).Set(n.settings.fee) }

// GenesisHash returns the hash of block zero.
func (n *Node) GenesisHash() common.Hash { return n.blocks[0].hash }

// BestNumber returns the number of the best block.
func (n *Node) BestNumber() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.best().number()
}

// FinalizedNumber returns the number of the last finalized block.
func (n *Node) FinalizedNumber() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.finalized
}

// Seal produces a block holding only the timestamp inherent.
func (n *Node) Seal() (common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, err := n.seal()
	if err != nil {
		return common.Hash{}, err
	}
	return b.hash, nil
}

// Close closes every websocket connection.
func (n *Node) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for c := range n.conns {
		err := c.conn.Close()
		if err != nil {
			logger.Debugf("closing websocket connection: %s", err)
		}
	}
}

func (n *Node) best() *block { return n.blocks[len(n.blocks)-1] }

// blockAt returns the block with the hash, or the best block when hash is nil.
func (n *Node) blockAt(hash *common.Hash) (*block, bool) {
	if hash == nil {
		return n.best(), true
	}
	b, ok := n.byHash[*hash]
	return b, ok
}

// check decodes and validates a submitted extrinsic.
func (n *Node) check(raw []byte) (submission, error) {
	ext, err := extrinsic.Decode(n.metadata, raw)
	if err != nil {
		return submission{}, &json2.Error{Code: codeVerification, Message: msgVerification, Data: err.Error()}
	}
	err = n.validate(ext)
	if err != nil {
		return submission{}, err
	}
	return submission{extrinsic: ext, raw: raw, hash: common.Blake2b256(raw)}, nil
}

// seal builds a block on the best block holding the timestamp inherent
// and the submissions, then notifies subscribers. n.mu must be held.
func (n *Node) seal(submissions ...submission) (*block, error) {
	parent := n.best()
	number := parent.number() + 1
	st := store{metadata: n.metadata, state: parent.state.clone()}

	now := n.settings.genesisTime.Add(time.Duration(number) * n.settings.blockTime)
	inherentCall, err := extrinsic.ComposeCall(n.metadata, "Timestamp", "set",
		map[string]any{"now": uint64(now.UnixMilli())})
	if err != nil {
		return nil, err
	}
	inherent := extrinsic.CreateUnsignedExtrinsic(inherentCall)
	all := append([]submission{{extrinsic: inherent, raw: inherent.Encode()}}, submissions...)

	var records []any
	extrinsics := make([]common.Bytes, len(all))
	hashes := make([]common.Hash, len(all))
	for i, sub := range all {
		events, err := n.apply(st, uint32(i), sub.extrinsic)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", sub.extrinsic.Call, err)
		}
		records = append(records, events...)
		extrinsics[i] = sub.raw
		hashes[i] = common.Blake2b256(sub.raw)
	}

	writes := []struct {
		value  any
		item   string
		params []any
	}{
		{uint32(number), "Number", nil},
		{parent.hash, "ParentHash", nil},
		{parent.hash, "BlockHash", []any{uint32(parent.number())}},
		{records, "Events", nil},
		{uint32(len(records)), "EventCount", nil},
		{uint32(len(all)), "ExtrinsicCount", nil},
	}
	for _, w := range writes {
		err = st.write(w.value, "System", w.item, w.params...)
		if err != nil {
			return nil, err
		}
	}

	header := rpc.Header{
		ParentHash:     parent.hash,
		Number:         rpc.BlockNumber(number),
		StateRoot:      st.state.root(),
		ExtrinsicsRoot: extrinsicsRoot(extrinsics),
		Digest:         rpc.Digest{Logs: []common.Bytes{}},
	}
	b := &block{
		header:     header,
		hash:       header.Hash(),
		extrinsics: extrinsics,
		hashes:     hashes,
		state:      st.state,
	}
	n.blocks = append(n.blocks, b)
	n.byHash[b.hash] = b
	logger.Debugf("sealed block #%d %s with %d extrinsics", number, b.hash.Short(), len(all))

	n.notifyHeads(newHeads, b)
	n.notifyIncluded(b)
	n.finalize()
	return b, nil
}

// finalize moves finality up to the configured lag behind the best block.
func (n *Node) finalize() {
	best := n.best().number()
	if best < n.settings.finalityLag {
		return
	}
	for target := best - n.settings.finalityLag; n.finalized < target; {
		n.finalized++
		b := n.blocks[n.finalized]
		n.notifyHeads(finalizedHeads, b)
		n.notifyFinalized(b)
	}
}
