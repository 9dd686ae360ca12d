// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package client is the high level chain client: metadata introspection,
// storage queries, blocks, extrinsic signing and submission.
package client

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ChainSafe/subclient/config"
	"github.com/ChainSafe/subclient/internal/database"
	"github.com/ChainSafe/subclient/internal/database/badger"
	"github.com/ChainSafe/subclient/internal/database/memory"
	"github.com/ChainSafe/subclient/internal/log"
	"github.com/ChainSafe/subclient/lib/author"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/rpc"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "client"))

const defaultSS58Format uint16 = 42

// Runtime is the chain context shared by the client operations, read
// once when connecting.
type Runtime struct {
	Metadata    *metadata.Metadata
	GenesisHash common.Hash
	Version     rpc.RuntimeVersion
	// SS58Format is the address format of 32-byte accounts.
	SS58Format uint16
	Crypto     crypto.Context
}

// Client is a chain client. It is safe for concurrent use.
type Client struct {
	cfg     config.Config
	rpc     *rpc.Client
	author  *author.Author
	runtime Runtime

	cache   *metadata.Cache
	db      database.Database
	closeDB bool
}

// New connects to the configured node and reads its runtime: genesis
// hash, runtime version, chain properties and metadata.
func New(ctx context.Context, cfg config.Config, options ...Option) (c *Client, err error) {
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	s := settings{crypto: crypto.DefaultContext()}
	for _, option := range options {
		option(&s)
	}

	c = &Client{cfg: cfg, db: s.database}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if c.db == nil {
		c.db, err = openDatabase(cfg.Chain.Cache)
		if err != nil {
			return nil, err
		}
		c.closeDB = true
	}
	c.cache, err = metadata.NewCache(c.db)
	if err != nil {
		return nil, err
	}

	rpcOptions := []rpc.Option{rpc.Timeout(cfg.RPC.Timeout), rpc.ReadLimit(cfg.RPC.ReadLimit)}
	if s.registerer != nil {
		rpcOptions = append(rpcOptions, rpc.Metrics(s.registerer))
	}
	c.rpc, err = rpc.Dial(ctx, cfg.RPC.URL, rpcOptions...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.RPC.URL, err)
	}

	c.runtime, err = c.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	c.runtime.Crypto = s.crypto.WithDefaults()
	c.author = author.New(author.NewNode(c.rpc), c.runtime.Metadata)

	logger.Infof("connected to %s, %s spec version %d, metadata v%d",
		cfg.RPC.URL, c.runtime.Version.SpecName, c.runtime.Version.SpecVersion, c.runtime.Metadata.Version())
	return c, nil
}

func openDatabase(path string) (database.Database, error) {
	if path == "" {
		return memory.New(), nil
	}
	db, err := badger.New(badger.Settings{Path: path})
	if err != nil {
		return nil, fmt.Errorf("opening metadata cache: %w", err)
	}
	return db, nil
}

// bootstrap fetches the chain context concurrently, then the metadata
// unless it is cached for the genesis hash and spec version.
func (c *Client) bootstrap(ctx context.Context) (runtime Runtime, err error) {
	var properties map[string]any
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		runtime.GenesisHash, err = c.rpc.GetGenesisHash(groupCtx)
		if err != nil {
			return fmt.Errorf("getting genesis hash: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		version, err := c.rpc.GetRuntimeVersion(groupCtx, nil)
		if err != nil {
			return fmt.Errorf("getting runtime version: %w", err)
		}
		runtime.Version = *version
		return nil
	})
	group.Go(func() (err error) {
		properties, err = c.rpc.SystemProperties(groupCtx)
		if err != nil {
			return fmt.Errorf("getting chain properties: %w", err)
		}
		return nil
	})
	err = group.Wait()
	if err != nil {
		return runtime, err
	}

	runtime.Metadata, err = c.loadMetadata(ctx, runtime.GenesisHash, runtime.Version.SpecVersion)
	if err != nil {
		return runtime, err
	}
	runtime.SS58Format = ss58Format(c.cfg.Chain.SS58Format, properties, runtime.Metadata)
	return runtime, nil
}

func (c *Client) loadMetadata(ctx context.Context, genesis common.Hash, specVersion uint32) (*metadata.Metadata, error) {
	raw, ok, err := c.cache.Get(genesis, specVersion)
	if err != nil {
		logger.Warnf("reading metadata cache: %s", err)
	}
	if ok {
		m, err := metadata.Load(raw)
		if err == nil {
			logger.Debugf("using cached metadata for spec version %d", specVersion)
			return m, nil
		}
		logger.Warnf("discarding cached metadata: %s", err)
	}

	raw, err = c.rpc.GetMetadata(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("getting metadata: %w", err)
	}
	m, err := metadata.Load(raw)
	if err != nil {
		return nil, err
	}
	err = c.cache.Put(genesis, specVersion, raw)
	if err != nil {
		logger.Warnf("caching metadata: %s", err)
		return m, nil
	}
	removed, err := c.cache.Prune(genesis, specVersion)
	if err != nil {
		logger.Warnf("pruning metadata cache: %s", err)
	} else if removed > 0 {
		logger.Debugf("pruned metadata of %d previous spec versions", removed)
	}
	return m, nil
}

// ss58Format picks the configured format, then the chain property,
// then the System.SS58Prefix constant.
func ss58Format(configured int, properties map[string]any, m *metadata.Metadata) uint16 {
	if configured != config.AutoSS58Format {
		return uint16(configured)
	}
	if format, ok := properties["ss58Format"].(float64); ok {
		return uint16(format)
	}
	if value, _, err := m.Constant("System", "SS58Prefix"); err == nil {
		if format, ok := value.(uint16); ok {
			return format
		}
	}
	return defaultSS58Format
}

// Runtime returns the chain context read when connecting.
func (c *Client) Runtime() Runtime { return c.runtime }

// Metadata returns the runtime metadata.
func (c *Client) Metadata() *metadata.Metadata { return c.runtime.Metadata }

// RPC returns the underlying JSON-RPC client.
func (c *Client) RPC() *rpc.Client { return c.rpc }

// Close closes the connection and the metadata cache.
func (c *Client) Close() {
	var errs []error
	if c.rpc != nil {
		errs = append(errs, c.rpc.Close())
	}
	if c.cache != nil {
		c.cache.Close()
	}
	if c.closeDB && c.db != nil {
		errs = append(errs, c.db.Close())
	}
	err := errors.Join(errs...)
	if err != nil {
		logger.Debugf("closing client: %s", err)
	}
}
